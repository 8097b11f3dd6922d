package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/jobs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job := &jobs.ExtractionJob{
		JobID:      "job-1",
		DocumentID: "doc-1",
		GCSURI:     "gs://bucket/stmt.pdf",
		Kind:       jobs.JobKindStatement,
		Status:     jobs.JobStatusPending,
	}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.DocumentID != "doc-1" || got.Kind != jobs.JobKindStatement {
		t.Errorf("got %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetJob(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveJob(context.Background(), &jobs.ExtractionJob{}); err == nil {
		t.Error("expected error for job without ID")
	}
}

func TestStore_ListJobsFiltering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := []*jobs.ExtractionJob{
		{JobID: "a", DocumentID: "doc-1", Status: jobs.JobStatusPending},
		{JobID: "b", DocumentID: "doc-1", Status: jobs.JobStatusCompleted},
		{JobID: "c", DocumentID: "doc-2", Status: jobs.JobStatusPending},
	}
	for _, j := range seed {
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) failed: %v", j.JobID, err)
		}
	}

	byDoc, err := s.ListJobs(ctx, jobs.JobFilter{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(byDoc) != 2 {
		t.Errorf("by document = %d jobs, want 2", len(byDoc))
	}

	pending, err := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusPending})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d jobs, want 2", len(pending))
	}

	limited, err := s.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited = %d jobs, want 1", len(limited))
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveJob(ctx, &jobs.ExtractionJob{JobID: "x", Status: jobs.JobStatusRunning}); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	if err := s.UpdateJobStatus(ctx, "x", jobs.JobStatusFailed, "model unavailable"); err != nil {
		t.Fatalf("UpdateJobStatus failed: %v", err)
	}

	got, err := s.GetJob(ctx, "x")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusFailed || got.Error != "model unavailable" {
		t.Errorf("got %+v", got)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveJob(ctx, &jobs.ExtractionJob{JobID: "persist", Status: jobs.JobStatusCompleted}); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetJob(ctx, "persist")
	if err != nil {
		t.Fatalf("GetJob after reopen failed: %v", err)
	}
	if got.Status != jobs.JobStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}
