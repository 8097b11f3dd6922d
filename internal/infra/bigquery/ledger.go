// Package bigquery persists documents, extraction runs and extracted
// results to the analytics dataset.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/logger"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/reconcile"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

const (
	documentsTable      = "documents"
	extractionRunsTable = "extraction_runs"
	transactionsTable   = "transactions"
	invoicesTable       = "invoices"

	maxErrorMessageLen = 2000
)

// Ledger is the BigQuery-backed result sink.
type Ledger struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewLedger creates a ledger bound to the given project and dataset.
func NewLedger(ctx context.Context, projectID, datasetID string) (*Ledger, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Ledger{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close releases the underlying client.
func (l *Ledger) Close() error {
	return l.client.Close()
}

func (l *Ledger) table(name string) *bigquery.Table {
	return l.client.DatasetInProject(l.projectID, l.datasetID).Table(name)
}

// InsertDocument records an ingested document.
func (l *Ledger) InsertDocument(ctx context.Context, row *DocumentRow) error {
	if row.DocumentID == "" {
		row.DocumentID = uuid.NewString()
	}
	if row.UploadTS.IsZero() {
		row.UploadTS = time.Now()
	}

	if err := l.table(documentsTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDocument: inserting row: %w", err)
	}
	return nil
}

// StartExtractionRun inserts a run with status=RUNNING and returns its ID.
func (l *Ledger) StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error) {
	runID := uuid.NewString()

	q := l.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			document_id,
			started_ts,
			model_name,
			status
		)
		VALUES (
			@run_id,
			@document_id,
			@started_ts,
			@model_name,
			@status
		)
	`, l.datasetID, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "model_name", Value: modelName},
		{Name: "status", Value: "RUNNING"},
	}

	if err := l.runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartExtractionRun: %w", err)
	}
	return runID, nil
}

// MarkExtractionRunFailed sets status=FAILED, finished_ts and a truncated
// error message. Failures here are logged, not propagated; the run row is
// bookkeeping and must never mask the original pipeline error.
func (l *Ledger) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorMessageLen {
			errMsg = errMsg[:maxErrorMessageLen]
		}
	}

	q := l.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, l.datasetID, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := l.runQuery(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkExtractionRunFailed: update query failed")
	}
}

// MarkExtractionRunSucceeded sets status=SUCCESS and finished_ts, clearing
// any earlier error message.
func (l *Ledger) MarkExtractionRunSucceeded(ctx context.Context, runID string) error {
	q := l.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = ""
		WHERE run_id = @run_id
	`, l.datasetID, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	}

	if err := l.runQuery(ctx, q); err != nil {
		return fmt.Errorf("MarkExtractionRunSucceeded: %w", err)
	}
	return nil
}

// InsertStatementResult persists the reconciled transactions of a run.
func (l *Ledger) InsertStatementResult(ctx context.Context, documentID, runID string, result *domain.StatementResult) error {
	if result == nil || len(result.Transactions) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*TransactionRow, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		parsed, ok := reconcile.ParseDate(tx.Date)
		rows = append(rows, &TransactionRow{
			TransactionID:   uuid.NewString(),
			DocumentID:      documentID,
			RunID:           runID,
			TransactionDate: nullDate(parsed, ok),
			RawDate:         tx.Date,
			Description:     tx.Description,
			Debit:           tx.Debit,
			Credit:          tx.Credit,
			Balance:         tx.Balance,
			Currency:        result.Currency,
			Confidence:      bigquery.NullFloat64{Float64: tx.Confidence, Valid: tx.Confidence > 0},
			CreatedTS:       now,
		})
	}

	if err := l.table(transactionsTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertStatementResult: inserting rows: %w", err)
	}
	return nil
}

// InsertInvoiceResult persists the extracted invoices of a run.
func (l *Ledger) InsertInvoiceResult(ctx context.Context, documentID, runID string, result *domain.InvoiceResult) error {
	if result == nil || len(result.Invoices) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*InvoiceRow, 0, len(result.Invoices))
	for _, inv := range result.Invoices {
		parsed, ok := reconcile.ParseDate(inv.InvoiceDate)
		rows = append(rows, &InvoiceRow{
			RecordID:                 uuid.NewString(),
			DocumentID:               documentID,
			RunID:                    runID,
			InvoiceID:                inv.InvoiceID,
			VendorName:               inv.VendorName,
			CustomerName:             inv.CustomerName,
			InvoiceDate:              nullDate(parsed, ok),
			RawDate:                  inv.InvoiceDate,
			DueDate:                  inv.DueDate,
			Currency:                 inv.Currency,
			TotalBeforeTax:           inv.TotalBeforeTax,
			TotalAfterTax:            inv.TotalAfterTax,
			NormalizedTotalBeforeTax: inv.NormalizedTotalBeforeTax,
			NormalizedTotalAfterTax:  inv.NormalizedTotalAfterTax,
			InvoiceType:              string(inv.InvoiceType),
			VendorTRN:                inv.VendorTRN,
			CustomerTRN:              inv.CustomerTRN,
			Confidence:               bigquery.NullFloat64{Float64: inv.Confidence, Valid: inv.Confidence > 0},
			CreatedTS:                now,
		})
	}

	if err := l.table(invoicesTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertInvoiceResult: inserting rows: %w", err)
	}
	return nil
}

func (l *Ledger) runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
