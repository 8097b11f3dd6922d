package extract

import (
	"context"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// DiscoverLayout analyzes the first page of a statement and returns the
// table layout, or nil when discovery fails. Later stages treat a nil
// layout as "no hints" and proceed; discovery is best-effort on purpose.
func (s *Service) DiscoverLayout(ctx context.Context, firstPage domain.Page) *domain.StatementLayout {
	raw, err := s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, layoutPrompt, firstPage)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("page", firstPage.Name).Msg("Layout discovery failed, proceeding without hints")
		return nil
	}

	var layout domain.StatementLayout
	if !Decode(raw, &layout) {
		s.log.Warn().Str("page", firstPage.Name).Msg("Layout response unparseable, proceeding without hints")
		return nil
	}

	s.log.Info().
		Str("bank", layout.BankName).
		Str("currency", layout.Currency).
		Str("date_format", layout.DateFormat).
		Bool("separate_debit_credit", layout.HasSeparateDebitCredit).
		Msg("Statement layout discovered")
	return &layout
}
