package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/classify"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/extract"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/fx"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs"
)

type fakeStorage struct {
	data map[string][]byte
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, object, path string) error {
	return nil
}

func (f *fakeStorage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	data, ok := f.data[uri]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", uri)
	}
	return data, nil
}

type recordingSink struct {
	started    int
	succeeded  []string
	failed     []string
	statements int
	invoices   int
}

func (s *recordingSink) StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error) {
	s.started++
	return fmt.Sprintf("run-%d", s.started), nil
}

func (s *recordingSink) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	s.failed = append(s.failed, runID)
}

func (s *recordingSink) MarkExtractionRunSucceeded(ctx context.Context, runID string) error {
	s.succeeded = append(s.succeeded, runID)
	return nil
}

func (s *recordingSink) InsertStatementResult(ctx context.Context, documentID, runID string, result *domain.StatementResult) error {
	s.statements += len(result.Transactions)
	return nil
}

func (s *recordingSink) InsertInvoiceResult(ctx context.Context, documentID, runID string, result *domain.InvoiceResult) error {
	s.invoices += len(result.Invoices)
	return nil
}

type cannedGenerator struct {
	responses []string
}

func (g *cannedGenerator) Generate(ctx context.Context, prompt string, pages ...domain.Page) (string, error) {
	if len(g.responses) == 0 {
		return "", fmt.Errorf("no responses left")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

type unitRates struct{}

func (unitRates) Pair(ctx context.Context, base, target string) (float64, error) { return 1, nil }

func newRunner(gen extract.Generator, storage *fakeStorage, sink ResultSink) *Runner {
	svc := extract.NewService(gen, fx.NewNormalizer(unitRates{}, zerolog.Nop()), zerolog.Nop())
	svc.SetPageDelay(0)
	return NewRunner(svc, storage, sink, classify.Filer{CompanyName: "Acme FZE"}, "gemini-2.5-flash", zerolog.Nop())
}

func TestRunner_InvoiceJob(t *testing.T) {
	gen := &cannedGenerator{responses: []string{
		`[{"invoiceId": "INV-9", "vendorName": "Some Vendor", "currency": "AED", "totalBeforeTax": "100", "totalAfterTax": "105", "confidence": 0.9, "lineItems": []}]`,
	}}
	storage := &fakeStorage{data: map[string][]byte{"gs://b/inv.pdf": []byte("%PDF")}}
	sink := &recordingSink{}

	job := &jobs.ExtractionJob{
		JobID:      "j1",
		DocumentID: "doc-1",
		GCSURI:     "gs://b/inv.pdf",
		Kind:       jobs.JobKindInvoices,
	}
	if err := newRunner(gen, storage, sink).Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if sink.started != 1 || len(sink.succeeded) != 1 {
		t.Errorf("sink = %+v, want one started and one succeeded run", sink)
	}
	if sink.invoices != 1 {
		t.Errorf("persisted invoices = %d, want 1", sink.invoices)
	}
	if job.RunID == "" {
		t.Error("job should carry the run ID")
	}
}

func TestRunner_StatementJob(t *testing.T) {
	gen := &cannedGenerator{responses: []string{
		`{"columnMapping": {"date": 0, "description": 1, "debit": 2, "credit": 3, "balance": 4}, "hasSeparateDebitCredit": true, "currency": "AED", "bankName": "B", "dateFormat": "DD/MM/YYYY"}`,
		`{"summary": {"accountHolder": "X", "openingBalance": 100, "closingBalance": 150, "currency": "AED"}, "markdownTable": "| 01/01/2024 | Deposit | | 50.00 | 150.00 |"}`,
		`[{"date": "01/01/2024", "description": "Deposit", "debit": "0", "credit": "50", "balance": "150", "confidence": 0.9}]`,
	}}
	storage := &fakeStorage{data: map[string][]byte{"gs://b/stmt.pdf": []byte("%PDF")}}
	sink := &recordingSink{}

	job := &jobs.ExtractionJob{
		JobID:      "j2",
		DocumentID: "doc-2",
		GCSURI:     "gs://b/stmt.pdf",
		Kind:       jobs.JobKindStatement,
	}
	if err := newRunner(gen, storage, sink).Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if sink.statements != 1 {
		t.Errorf("persisted transactions = %d, want 1", sink.statements)
	}
	if len(sink.succeeded) != 1 {
		t.Errorf("succeeded runs = %d, want 1", len(sink.succeeded))
	}
}

func TestRunner_FetchFailureMarksNothing(t *testing.T) {
	sink := &recordingSink{}
	storage := &fakeStorage{data: map[string][]byte{}}

	job := &jobs.ExtractionJob{JobID: "j3", DocumentID: "doc-3", GCSURI: "gs://b/missing.pdf"}
	err := newRunner(&cannedGenerator{}, storage, sink).Handle(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing object")
	}
	if sink.started != 0 {
		t.Errorf("no run should start before the document is fetched, got %d", sink.started)
	}
}

func TestRunner_PipelineFailureMarksRunFailed(t *testing.T) {
	// Invoice extraction that never parses fails the whole single-document batch.
	gen := &cannedGenerator{responses: []string{"unreadable"}}
	storage := &fakeStorage{data: map[string][]byte{"gs://b/bad.pdf": []byte("%PDF")}}
	sink := &recordingSink{}

	job := &jobs.ExtractionJob{
		JobID:      "j4",
		DocumentID: "doc-4",
		GCSURI:     "gs://b/bad.pdf",
		Kind:       jobs.JobKindInvoices,
	}
	if err := newRunner(gen, storage, sink).Handle(context.Background(), job); err == nil {
		t.Fatal("expected pipeline error")
	}
	if len(sink.failed) != 1 {
		t.Errorf("failed runs = %d, want 1", len(sink.failed))
	}
	if len(sink.succeeded) != 0 {
		t.Errorf("succeeded runs = %d, want 0", len(sink.succeeded))
	}
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"stmt.pdf", "application/pdf"},
		{"scan.PNG", "image/png"},
		{"photo.jpeg", "image/jpeg"},
		{"noext", "application/pdf"},
	}

	for _, tt := range tests {
		if got := mimeTypeFor(tt.name); got != tt.want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
