// Package usecase contains the application services: submitting ingest jobs
// and running the reconciliation pipeline for queued jobs.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// SubmitRequest is the input for one ingest submission.
type SubmitRequest struct {
	FileKey string `validate:"required,max=512"`
	RawID   string `validate:"omitempty,max=128"`
	IdemKey string `validate:"omitempty,max=128"`
}

// IngestService accepts ingest submissions and tracks their jobs.
type IngestService struct {
	jobs     domain.JobRepository
	records  domain.CleanedResumeRepository
	queue    domain.Queue
	validate *validator.Validate
}

// NewIngestService constructs an IngestService.
func NewIngestService(jobs domain.JobRepository, records domain.CleanedResumeRepository, queue domain.Queue) *IngestService {
	return &IngestService{
		jobs:     jobs,
		records:  records,
		queue:    queue,
		validate: validator.New(),
	}
}

// Submit validates the request, creates a queued job and enqueues its task.
// A repeated idempotency key returns the original job without enqueueing
// again.
func (s *IngestService) Submit(ctx domain.Context, req SubmitRequest) (domain.IngestJob, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.IngestJob{}, fmt.Errorf("op=ingest.submit: %v: %w", err, domain.ErrInvalidArgument)
	}

	if req.IdemKey != "" {
		existing, err := s.jobs.FindByIdempotencyKey(ctx, req.IdemKey)
		if err == nil {
			slog.Info("idempotent submit replayed", slog.String("job_id", existing.ID))
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.IngestJob{}, fmt.Errorf("op=ingest.submit: %w", err)
		}
	}

	job := domain.IngestJob{
		Status:  domain.JobQueued,
		FileKey: req.FileKey,
	}
	if req.IdemKey != "" {
		job.IdemKey = &req.IdemKey
	}
	id, err := s.jobs.Create(ctx, job)
	if err != nil {
		return domain.IngestJob{}, fmt.Errorf("op=ingest.submit: %w", err)
	}
	job.ID = id

	if _, err := s.queue.EnqueueIngest(ctx, domain.IngestTaskPayload{
		JobID:   id,
		FileKey: req.FileKey,
		RawID:   req.RawID,
	}); err != nil {
		msg := "enqueue failed"
		if uerr := s.jobs.UpdateStatus(ctx, id, domain.JobFailed, &msg); uerr != nil {
			slog.Error("failed to mark job failed", slog.String("job_id", id), slog.Any("error", uerr))
		}
		return domain.IngestJob{}, fmt.Errorf("op=ingest.submit: %w", err)
	}
	return job, nil
}

// JobView is a job joined with its cleaned record once available.
type JobView struct {
	Job    domain.IngestJob
	Record *domain.CleanedResume
}

// Get returns a job and, when completed, the record it produced.
func (s *IngestService) Get(ctx domain.Context, id string) (JobView, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return JobView{}, fmt.Errorf("op=ingest.get: %w", err)
	}
	view := JobView{Job: job}
	if job.Status == domain.JobCompleted && job.RecordID != "" {
		rec, err := s.records.Get(ctx, job.RecordID)
		if err != nil {
			return JobView{}, fmt.Errorf("op=ingest.get: %w", err)
		}
		view.Record = &rec
	}
	return view, nil
}
