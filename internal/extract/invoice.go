package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/classify"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

type rawLineItem struct {
	Description string     `json:"description"`
	Quantity    flexString `json:"quantity"`
	UnitPrice   flexString `json:"unitPrice"`
	Subtotal    flexString `json:"subtotal"`
	TaxRate     flexString `json:"taxRate"`
	TaxAmount   flexString `json:"taxAmount"`
	Total       flexString `json:"total"`
}

type rawInvoice struct {
	InvoiceID      string        `json:"invoiceId"`
	VendorName     string        `json:"vendorName"`
	CustomerName   string        `json:"customerName"`
	InvoiceDate    string        `json:"invoiceDate"`
	DueDate        string        `json:"dueDate"`
	Currency       string        `json:"currency"`
	TotalBeforeTax flexString    `json:"totalBeforeTax"`
	TotalAfterTax  flexString    `json:"totalAfterTax"`
	VendorTRN      string        `json:"vendorTrn"`
	CustomerTRN    string        `json:"customerTrn"`
	Confidence     flexString    `json:"confidence"`
	LineItems      []rawLineItem `json:"lineItems"`
}

// InvoiceOptions controls an invoice batch run.
type InvoiceOptions struct {
	Filer          classify.Filer
	TargetCurrency string
}

// ProcessInvoices extracts, classifies and currency-normalizes every
// invoice in the given documents. Documents are processed sequentially
// with the page delay in between. A failing document is logged and
// skipped; if every document fails the last error is returned.
func (s *Service) ProcessInvoices(ctx context.Context, docs []domain.Page, opts InvoiceOptions) (*domain.InvoiceResult, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to process")
	}

	var (
		invoices []domain.Invoice
		lastErr  error
	)

	for i, doc := range docs {
		if i > 0 && s.pageDelay > 0 {
			s.sleep(s.pageDelay)
		}

		extracted, err := s.extractInvoices(ctx, doc, opts)
		if err != nil {
			lastErr = err
			s.log.Error().Err(err).Str("document", doc.Name).Msg("Invoice extraction failed for document, continuing batch")
			continue
		}
		invoices = append(invoices, extracted...)
	}

	if len(invoices) == 0 && lastErr != nil {
		return nil, fmt.Errorf("invoice batch failed: %w", lastErr)
	}

	s.log.Info().
		Int("documents", len(docs)).
		Int("invoices", len(invoices)).
		Msg("Invoice batch processed")

	return &domain.InvoiceResult{Invoices: invoices}, nil
}

func (s *Service) extractInvoices(ctx context.Context, doc domain.Page, opts InvoiceOptions) ([]domain.Invoice, error) {
	raw, err := s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, invoicePrompt, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("extract invoices from %s: %w", doc.Name, err)
	}

	var rows []rawInvoice
	if !Decode(raw, &rows) {
		return nil, &PipelineError{Kind: KindMalformed, Err: fmt.Errorf("invoice response for %s unparseable", doc.Name)}
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, r := range rows {
		inv := domain.Invoice{
			InvoiceID:      strings.TrimSpace(r.InvoiceID),
			VendorName:     strings.TrimSpace(r.VendorName),
			CustomerName:   strings.TrimSpace(r.CustomerName),
			InvoiceDate:    strings.TrimSpace(r.InvoiceDate),
			DueDate:        strings.TrimSpace(r.DueDate),
			Currency:       strings.TrimSpace(r.Currency),
			TotalBeforeTax: parseAmount(string(r.TotalBeforeTax)),
			TotalAfterTax:  parseAmount(string(r.TotalAfterTax)),
			VendorTRN:      strings.TrimSpace(r.VendorTRN),
			CustomerTRN:    strings.TrimSpace(r.CustomerTRN),
			Confidence:     parseAmount(string(r.Confidence)),
			SourceFile:     doc.Name,
		}
		for _, li := range r.LineItems {
			inv.LineItems = append(inv.LineItems, domain.LineItem{
				Description: strings.TrimSpace(li.Description),
				Quantity:    parseAmount(string(li.Quantity)),
				UnitPrice:   parseAmount(string(li.UnitPrice)),
				Subtotal:    parseAmount(string(li.Subtotal)),
				TaxRate:     parseAmount(string(li.TaxRate)),
				TaxAmount:   parseAmount(string(li.TaxAmount)),
				Total:       parseAmount(string(li.Total)),
			})
		}

		factor := s.fx.Factor(ctx, inv.Currency, opts.TargetCurrency)
		inv.NormalizedTotalBeforeTax = round2(inv.TotalBeforeTax * factor)
		inv.NormalizedTotalAfterTax = round2(inv.TotalAfterTax * factor)

		inv.InvoiceType = classify.InvoiceType(inv, opts.Filer)

		invoices = append(invoices, inv)
	}
	return invoices, nil
}
