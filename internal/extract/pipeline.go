package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/reconcile"
)

// StatementOptions controls a single statement run. Empty fields mean
// "no filtering" and "keep the detected currency".
type StatementOptions struct {
	StartDate      string
	EndDate        string
	TargetCurrency string
	SourceFile     string
}

// ProcessStatement runs the full statement pipeline over the given pages:
// layout discovery, per-page transcription, harmonization, deduplication,
// date filtering, balance reconstruction and currency scaling.
func (s *Service) ProcessStatement(ctx context.Context, pages []domain.Page, opts StatementOptions) (*domain.StatementResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to process")
	}

	layout := s.DiscoverLayout(ctx, pages[0])

	fragments, summary, currency := s.ExtractRawTables(ctx, pages, layout)
	if layout != nil && layout.Currency != "" {
		currency = layout.Currency
	}
	if len(fragments) == 0 {
		s.log.Warn().Str("source", opts.SourceFile).Msg("No table fragments extracted from any page")
		return &domain.StatementResult{Summary: summary, Currency: currency}, nil
	}

	txs, err := s.Harmonize(ctx, fragments, layout, opts.SourceFile)
	if err != nil {
		return nil, err
	}

	txs = reconcile.Deduplicate(txs)
	txs = reconcile.FilterByDateRange(txs, opts.StartDate, opts.EndDate)
	txs, summary = reconcile.RebuildBalances(txs, summary)

	resultCurrency := currency
	if target := strings.TrimSpace(opts.TargetCurrency); target != "" {
		factor := s.fx.Factor(ctx, currency, target)
		if factor != 1 {
			txs, summary = scaleAmounts(txs, summary, factor)
		}
		resultCurrency = strings.ToUpper(target)
	}

	s.log.Info().
		Str("source", opts.SourceFile).
		Int("pages", len(pages)).
		Int("transactions", len(txs)).
		Str("currency", resultCurrency).
		Msg("Statement processed")

	return &domain.StatementResult{
		Transactions: txs,
		Summary:      summary,
		Currency:     resultCurrency,
	}, nil
}

// scaleAmounts applies a conversion factor to every monetary field,
// rounding to two decimals.
func scaleAmounts(txs []domain.Transaction, summary domain.BankStatementSummary, factor float64) ([]domain.Transaction, domain.BankStatementSummary) {
	for i := range txs {
		txs[i].Debit = round2(txs[i].Debit * factor)
		txs[i].Credit = round2(txs[i].Credit * factor)
		txs[i].Balance = round2(txs[i].Balance * factor)
	}
	summary.OpeningBalance = round2(summary.OpeningBalance * factor)
	summary.ClosingBalance = round2(summary.ClosingBalance * factor)
	summary.TotalWithdrawals = round2(summary.TotalWithdrawals * factor)
	summary.TotalDeposits = round2(summary.TotalDeposits * factor)
	return txs, summary
}
