package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// flexString decodes either a JSON string or a bare number. The model is
// inconsistent about quoting numeric cells.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}

// rawTransaction is the harmonizer's wire shape. Amounts stay as strings
// until parseAmount normalizes them.
type rawTransaction struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Debit       flexString `json:"debit"`
	Credit      flexString `json:"credit"`
	Balance     flexString `json:"balance"`
	Confidence  flexString `json:"confidence"`
}

// Harmonize consolidates all page fragments in one model call and returns
// the structured transaction rows. No fragments means no call and no rows.
func (s *Service) Harmonize(ctx context.Context, fragments []string, layout *domain.StatementLayout, sourceFile string) ([]domain.Transaction, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	prompt := harmonizePrompt(layout) + strings.Join(fragments, pageSeparator)

	raw, err := s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("harmonize transactions: %w", err)
	}

	var rows []rawTransaction
	if !Decode(raw, &rows) {
		s.log.Error().Int("fragments", len(fragments)).Msg("Harmonizer response unparseable even after repair")
		return nil, &PipelineError{Kind: KindMalformed, Err: fmt.Errorf("harmonizer returned unparseable JSON")}
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, domain.Transaction{
			Date:        strings.TrimSpace(r.Date),
			Description: strings.TrimSpace(r.Description),
			Debit:       parseAmount(string(r.Debit)),
			Credit:      parseAmount(string(r.Credit)),
			Balance:     parseAmount(string(r.Balance)),
			Confidence:  parseAmount(string(r.Confidence)),
			SourceFile:  sourceFile,
		})
	}
	return txs, nil
}
