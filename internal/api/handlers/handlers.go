package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/api/middleware"
	bq "github.com/tech6-code/DocuFlow-AI-sub001/internal/infra/bigquery"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs"
)

// DocumentSink records ingested documents.
type DocumentSink interface {
	InsertDocument(ctx context.Context, row *bq.DocumentRow) error
}

// DocumentsHandler handles document ingestion endpoints.
type DocumentsHandler struct {
	sink      DocumentSink
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(sink DocumentSink, publisher jobs.Publisher, bucket string, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		sink:      sink,
		publisher: publisher,
		bucket:    bucket,
		log:       log,
	}
}

// UploadDocument handles POST /api/documents.
// The request body is the raw document; filename, content type and kind
// come from query parameters and headers.
func (h *DocumentsHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}
	filename = filepath.Base(filename)

	docType := r.URL.Query().Get("kind")
	if docType == "" {
		docType = string(jobs.JobKindStatement)
	}
	if docType != string(jobs.JobKindStatement) && docType != string(jobs.JobKindInvoices) {
		middleware.WriteError(w, http.StatusBadRequest, "kind must be statement or invoices")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	documentID := uuid.NewString()
	objectName := fmt.Sprintf("uploads/%s/%s-%s", time.Now().Format("2006/01/02"), documentID, filename)
	gcsURI := fmt.Sprintf("gs://%s/%s", h.bucket, objectName)

	client, err := storage.NewClient(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create storage client")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	defer client.Close()

	wc := client.Bucket(h.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	// Checksum the stream while uploading.
	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(wc, hasher), r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to write to GCS")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	if err := wc.Close(); err != nil {
		h.log.Error().Err(err).Msg("Failed to close GCS writer")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))

	h.log.Info().
		Str("document_id", documentID).
		Str("gcs_uri", gcsURI).
		Int64("bytes", written).
		Str("checksum", checksum).
		Msg("Document uploaded")

	doc := &bq.DocumentRow{
		DocumentID:       documentID,
		GCSURI:           gcsURI,
		DocumentType:     docType,
		UploadTS:         time.Now(),
		OriginalFilename: filename,
		FileMimeType:     contentType,
		ChecksumSHA256:   checksum,
	}
	if h.sink != nil {
		if err := h.sink.InsertDocument(ctx, doc); err != nil {
			h.log.Error().Err(err).Msg("Failed to insert document metadata")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to save document metadata")
			return
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"document_id": documentID,
		"gcs_uri":     gcsURI,
		"kind":        docType,
		"status":      "uploaded",
	})
}

// EnqueueExtraction handles POST /api/extractions.
func (h *DocumentsHandler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID     string `json:"document_id"`
		GCSURI         string `json:"gcs_uri"`
		Kind           string `json:"kind"`
		TargetCurrency string `json:"target_currency"`
		StartDate      string `json:"start_date"`
		EndDate        string `json:"end_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DocumentID == "" || req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "document_id and gcs_uri are required")
		return
	}

	kind := jobs.JobKind(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = jobs.JobKindStatement
	}
	if kind != jobs.JobKindStatement && kind != jobs.JobKindInvoices {
		middleware.WriteError(w, http.StatusBadRequest, "kind must be statement or invoices")
		return
	}

	ctx := r.Context()

	job := &jobs.ExtractionJob{
		DocumentID:     req.DocumentID,
		GCSURI:         req.GCSURI,
		Kind:           kind,
		TargetCurrency: req.TargetCurrency,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}

	if err := h.publisher.PublishExtraction(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("document_id", req.DocumentID).
		Str("kind", string(kind)).
		Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"document_id": req.DocumentID,
		"status":      string(job.Status),
	})
}

// JobsHandler handles extraction job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/extractions/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/extractions.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		DocumentID: query.Get("document_id"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
