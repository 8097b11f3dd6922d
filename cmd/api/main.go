package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/api/handlers"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/api/middleware"
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

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured, document uploads will fail")
	}

	ctx := logger.WithContext(context.Background(), log)

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build extraction service")
	}

	store, closeStore := openJobStore(cfg, log)
	defer closeStore()

	queue := inmemory.NewQueue(100, 1, store)

	var (
		ledger  *infraBQ.Ledger
		sink    worker.ResultSink
		docSink handlers.DocumentSink
	)
	if cfg.BigQueryProject != "" {
		ledger, err = infraBQ.NewLedger(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery ledger")
		}
		defer ledger.Close()
		sink = ledger
		docSink = ledger
	} else {
		log.Warn().Msg("No BigQuery project configured, results will not be persisted")
	}

	runner := worker.NewRunner(svc, gcs.NewClient(), sink,
		classify.Filer{CompanyName: cfg.FilerCompany, TRN: cfg.FilerTRN},
		cfg.GeminiModel, log)

	// Process jobs in the same process; a standalone worker can take over
	// by pointing at the same job store.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting embedded job worker")
		if err := queue.Start(workerCtx, runner.Handle); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	documentsHandler := handlers.NewDocumentsHandler(docSink, queue, cfg.GCSBucket, log)
	jobsHandler := handlers.NewJobsHandler(store, log)

	r := mux.NewRouter()
	r.HandleFunc("/api/documents", documentsHandler.UploadDocument).Methods(http.MethodPost)
	r.HandleFunc("/api/extractions", documentsHandler.EnqueueExtraction).Methods(http.MethodPost)
	r.HandleFunc("/api/extractions", jobsHandler.ListJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/extractions/{id}", jobsHandler.GetJob).Methods(http.MethodGet)
	r.HandleFunc("/api/health", handlers.Health).Methods(http.MethodGet)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(r),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
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
