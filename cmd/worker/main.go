package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/classify"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/config"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/extract"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/fx"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/gcs"
	infraBQ "github.com/tech6-code/DocuFlow-AI-sub001/internal/infra/bigquery"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs/boltstore"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs/inmemory"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/logger"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/worker"
)

func main() {
	log := logger.New()
	cfg := config.Load(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build extraction service")
	}

	store, closeStore := openJobStore(cfg, log)
	defer closeStore()

	// One worker keeps the model traffic inside free-tier rate limits.
	queue := inmemory.NewQueue(100, 1, store)

	var sink worker.ResultSink
	if cfg.BigQueryProject != "" {
		ledger, err := infraBQ.NewLedger(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery ledger")
		}
		defer ledger.Close()
		sink = ledger
	} else {
		log.Warn().Msg("No BigQuery project configured, results will not be persisted")
	}

	runner := worker.NewRunner(svc, gcs.NewClient(), sink,
		classify.Filer{CompanyName: cfg.FilerCompany, TRN: cfg.FilerTRN},
		cfg.GeminiModel, log)

	log.Info().Msg("Starting worker service")

	if err := queue.Start(ctx, runner.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

func buildService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*extract.Service, error) {
	gen, err := extract.NewGeminiGenerator(ctx, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}

	norm := fx.NewNormalizer(fx.NewHTTPRateClient(cfg.FXBaseURL), log)

	svc := extract.NewService(gen, norm, log)
	svc.SetPageDelay(cfg.PageDelay)
	svc.SetRetryPolicy(cfg.RetryBaseDelay, cfg.RetryMaxAttempts)
	return svc, nil
}

func openJobStore(cfg *config.Config, log zerolog.Logger) (jobs.JobStore, func()) {
	if cfg.JobStorePath == "" {
		return inmemory.NewStore(), func() {}
	}

	store, err := boltstore.Open(cfg.JobStorePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.JobStorePath).Msg("Failed to open job store")
	}
	log.Info().Str("path", cfg.JobStorePath).Msg("Using persistent job store")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close job store")
		}
	}
}
