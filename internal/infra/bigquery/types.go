package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// DocumentRow represents an ingested document record.
type DocumentRow struct {
	DocumentID string `bigquery:"document_id"` // REQUIRED
	GCSURI     string `bigquery:"gcs_uri"`     // REQUIRED

	DocumentType string `bigquery:"document_type"` // statement | invoices

	UploadTS    time.Time              `bigquery:"upload_ts"`    // REQUIRED
	ProcessedTS bigquery.NullTimestamp `bigquery:"processed_ts"` // NULLABLE

	OriginalFilename string `bigquery:"original_filename"` // NULLABLE
	FileMimeType     string `bigquery:"file_mime_type"`    // NULLABLE

	ChecksumSHA256 string `bigquery:"checksum_sha256"` // NULLABLE
}

// ExtractionRunRow tracks one pipeline execution over a document.
type ExtractionRunRow struct {
	RunID      string `bigquery:"run_id"`
	DocumentID string `bigquery:"document_id"`

	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`

	ModelName string `bigquery:"model_name"`

	Status       string `bigquery:"status"` // RUNNING | SUCCESS | FAILED
	ErrorMessage string `bigquery:"error_message"`
}

// TransactionRow is one reconciled statement transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"`
	DocumentID    string `bigquery:"document_id"`
	RunID         string `bigquery:"run_id"`

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"`
	RawDate         string            `bigquery:"raw_date"`

	Description string `bigquery:"description"`

	Debit   float64 `bigquery:"debit"`
	Credit  float64 `bigquery:"credit"`
	Balance float64 `bigquery:"balance"`

	Currency string `bigquery:"currency"`

	Confidence bigquery.NullFloat64 `bigquery:"confidence"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

// InvoiceRow is one extracted and classified invoice.
type InvoiceRow struct {
	RecordID   string `bigquery:"record_id"`
	DocumentID string `bigquery:"document_id"`
	RunID      string `bigquery:"run_id"`

	InvoiceID    string `bigquery:"invoice_id"`
	VendorName   string `bigquery:"vendor_name"`
	CustomerName string `bigquery:"customer_name"`

	InvoiceDate bigquery.NullDate `bigquery:"invoice_date"`
	RawDate     string            `bigquery:"raw_date"`
	DueDate     string            `bigquery:"due_date"`

	Currency string `bigquery:"currency"`

	TotalBeforeTax           float64 `bigquery:"total_before_tax"`
	TotalAfterTax            float64 `bigquery:"total_after_tax"`
	NormalizedTotalBeforeTax float64 `bigquery:"normalized_total_before_tax"`
	NormalizedTotalAfterTax  float64 `bigquery:"normalized_total_after_tax"`

	InvoiceType string `bigquery:"invoice_type"` // sales | purchase

	VendorTRN   string `bigquery:"vendor_trn"`
	CustomerTRN string `bigquery:"customer_trn"`

	Confidence bigquery.NullFloat64 `bigquery:"confidence"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

// nullDate wraps a parsed date; unparseable dates stay NULL with the raw
// text kept in raw_date.
func nullDate(t time.Time, ok bool) bigquery.NullDate {
	if !ok {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
}
