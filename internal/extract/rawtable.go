package extract

import (
	"context"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// pageSummary is the statement metadata a single page may carry. Most
// pages carry none; the first page usually has everything.
type pageSummary struct {
	AccountHolder   string  `json:"accountHolder"`
	AccountNumber   string  `json:"accountNumber"`
	StatementPeriod string  `json:"statementPeriod"`
	OpeningBalance  float64 `json:"openingBalance"`
	ClosingBalance  float64 `json:"closingBalance"`
	Currency        string  `json:"currency"`
}

func (p *pageSummary) empty() bool {
	return p.AccountHolder == "" && p.AccountNumber == "" && p.StatementPeriod == "" &&
		p.OpeningBalance == 0 && p.ClosingBalance == 0
}

type pageExtraction struct {
	Summary       *pageSummary `json:"summary"`
	MarkdownTable string       `json:"markdownTable"`
}

// ExtractRawTables transcribes each page into a markdown table fragment.
// Pages are processed sequentially with a delay in between to respect
// rate limits. A page whose primary extraction comes back empty gets one
// fallback attempt with a simpler prompt; a page that still yields
// nothing is logged and skipped so the rest of the statement survives.
//
// The first non-empty page summary becomes the baseline; later pages may
// only update the closing balance, which moves as pages progress.
func (s *Service) ExtractRawTables(ctx context.Context, pages []domain.Page, layout *domain.StatementLayout) ([]string, domain.BankStatementSummary, string) {
	var (
		fragments []string
		summary   domain.BankStatementSummary
		currency  string
		seeded    bool
	)

	prompt := rawTablePrompt(layout)

	for i, page := range pages {
		if i > 0 && s.pageDelay > 0 {
			s.sleep(s.pageDelay)
		}

		pe := s.extractPage(ctx, page, prompt)
		if pe == nil || (pe.Summary == nil && strings.TrimSpace(pe.MarkdownTable) == "") {
			s.log.Warn().Str("page", page.Name).Msg("Primary table extraction empty, trying fallback prompt")
			pe = s.extractPage(ctx, page, rawTableFallbackPrompt)
		}
		if pe == nil {
			s.log.Error().Str("page", page.Name).Msg("Page yielded no table evidence, skipping")
			continue
		}

		if table := strings.TrimSpace(pe.MarkdownTable); table != "" {
			fragments = append(fragments, table)
		}

		if pe.Summary == nil {
			continue
		}
		if !seeded && !pe.Summary.empty() {
			summary = domain.BankStatementSummary{
				AccountHolder:   pe.Summary.AccountHolder,
				AccountNumber:   pe.Summary.AccountNumber,
				StatementPeriod: pe.Summary.StatementPeriod,
				OpeningBalance:  pe.Summary.OpeningBalance,
				ClosingBalance:  pe.Summary.ClosingBalance,
			}
			seeded = true
		} else if seeded && pe.Summary.ClosingBalance != 0 {
			summary.ClosingBalance = pe.Summary.ClosingBalance
		}
		if currency == "" {
			currency = strings.TrimSpace(pe.Summary.Currency)
		}
	}

	return fragments, summary, currency
}

func (s *Service) extractPage(ctx context.Context, page domain.Page, prompt string) *pageExtraction {
	raw, err := s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, prompt, page)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("page", page.Name).Msg("Page extraction call failed")
		return nil
	}

	var pe pageExtraction
	if !Decode(raw, &pe) {
		s.log.Warn().Str("page", page.Name).Msg("Page extraction response unparseable")
		return nil
	}
	return &pe
}
