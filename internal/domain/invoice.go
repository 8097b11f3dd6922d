package domain

// InvoiceType distinguishes invoices issued by the filer from invoices
// received by the filer. It is assigned by classification, never extracted.
type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "sales"
	InvoiceTypePurchase InvoiceType = "purchase"
)

// LineItem is one billed line on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
	TaxRate     float64 `json:"taxRate"`
	TaxAmount   float64 `json:"taxAmount"`
	Total       float64 `json:"total"`
}

// Invoice is one extracted invoice. Totals are carried both in the
// document's original currency and normalized into the batch target
// currency.
type Invoice struct {
	InvoiceID                string      `json:"invoiceId"`
	VendorName               string      `json:"vendorName"`
	CustomerName             string      `json:"customerName"`
	InvoiceDate              string      `json:"invoiceDate"`
	DueDate                  string      `json:"dueDate"`
	TotalBeforeTax           float64     `json:"totalBeforeTax"`
	TotalAfterTax            float64     `json:"totalAfterTax"`
	NormalizedTotalBeforeTax float64     `json:"normalizedTotalBeforeTax"`
	NormalizedTotalAfterTax  float64     `json:"normalizedTotalAfterTax"`
	Currency                 string      `json:"currency"`
	LineItems                []LineItem  `json:"lineItems"`
	InvoiceType              InvoiceType `json:"invoiceType"`
	VendorTRN                string      `json:"vendorTrn"`
	CustomerTRN              string      `json:"customerTrn"`
	Confidence               float64     `json:"confidence"`
	SourceFile               string      `json:"sourceFile,omitempty"`
}

// InvoiceResult is the contract surface for a processed invoice batch.
type InvoiceResult struct {
	Invoices []Invoice `json:"invoices"`
}
