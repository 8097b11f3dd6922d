// Package worker executes extraction jobs: it fetches the document from
// storage, runs the matching pipeline and persists the results.
package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/classify"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/extract"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/gcs"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs"
)

// ResultSink persists extraction runs and their output. A nil sink
// disables persistence; jobs still run and log their outcome.
type ResultSink interface {
	StartExtractionRun(ctx context.Context, documentID, modelName string) (string, error)
	MarkExtractionRunFailed(ctx context.Context, runID string, runErr error)
	MarkExtractionRunSucceeded(ctx context.Context, runID string) error
	InsertStatementResult(ctx context.Context, documentID, runID string, result *domain.StatementResult) error
	InsertInvoiceResult(ctx context.Context, documentID, runID string, result *domain.InvoiceResult) error
}

// Runner turns queued jobs into pipeline executions.
type Runner struct {
	svc       *extract.Service
	storage   gcs.Storage
	sink      ResultSink
	filer     classify.Filer
	modelName string
	log       zerolog.Logger
}

// NewRunner wires a job runner.
func NewRunner(svc *extract.Service, storage gcs.Storage, sink ResultSink, filer classify.Filer, modelName string, log zerolog.Logger) *Runner {
	return &Runner{
		svc:       svc,
		storage:   storage,
		sink:      sink,
		filer:     filer,
		modelName: modelName,
		log:       log,
	}
}

// Handle processes one extraction job. It satisfies jobs.JobHandler.
func (r *Runner) Handle(ctx context.Context, job *jobs.ExtractionJob) error {
	log := r.log.With().
		Str("job_id", job.JobID).
		Str("document_id", job.DocumentID).
		Str("kind", string(job.Kind)).
		Logger()

	log.Info().Str("gcs_uri", job.GCSURI).Msg("Processing extraction job")

	data, err := r.storage.Fetch(ctx, job.GCSURI)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch document")
		return fmt.Errorf("fetch document: %w", err)
	}

	name := gcs.FilenameFromURI(job.GCSURI)
	page := domain.Page{
		Name:     name,
		MIMEType: mimeTypeFor(name),
		Data:     data,
	}

	var runID string
	if r.sink != nil {
		runID, err = r.sink.StartExtractionRun(ctx, job.DocumentID, r.modelName)
		if err != nil {
			log.Error().Err(err).Msg("Failed to start extraction run")
			return fmt.Errorf("start extraction run: %w", err)
		}
		job.RunID = runID
	}

	switch job.Kind {
	case jobs.JobKindInvoices:
		err = r.runInvoices(ctx, job, page)
	default:
		err = r.runStatement(ctx, job, page)
	}

	if err != nil {
		if r.sink != nil {
			r.sink.MarkExtractionRunFailed(ctx, runID, err)
		}
		log.Error().Err(err).Msg("Extraction failed")
		return err
	}

	if r.sink != nil {
		if err := r.sink.MarkExtractionRunSucceeded(ctx, runID); err != nil {
			log.Error().Err(err).Str("run_id", runID).Msg("Failed to mark run succeeded")
		}
	}

	log.Info().Msg("Extraction job completed")
	return nil
}

func (r *Runner) runStatement(ctx context.Context, job *jobs.ExtractionJob, page domain.Page) error {
	result, err := r.svc.ProcessStatement(ctx, []domain.Page{page}, extract.StatementOptions{
		StartDate:      job.StartDate,
		EndDate:        job.EndDate,
		TargetCurrency: job.TargetCurrency,
		SourceFile:     page.Name,
	})
	if err != nil {
		return err
	}

	if r.sink != nil {
		if err := r.sink.InsertStatementResult(ctx, job.DocumentID, job.RunID, result); err != nil {
			return fmt.Errorf("persist statement result: %w", err)
		}
	}
	return nil
}

func (r *Runner) runInvoices(ctx context.Context, job *jobs.ExtractionJob, page domain.Page) error {
	result, err := r.svc.ProcessInvoices(ctx, []domain.Page{page}, extract.InvoiceOptions{
		Filer:          r.filer,
		TargetCurrency: job.TargetCurrency,
	})
	if err != nil {
		return err
	}

	if r.sink != nil {
		if err := r.sink.InsertInvoiceResult(ctx, job.DocumentID, job.RunID, result); err != nil {
			return fmt.Errorf("persist invoice result: %w", err)
		}
	}
	return nil
}

func mimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/pdf"
	}
}
