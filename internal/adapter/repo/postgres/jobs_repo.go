// Package postgres provides PostgreSQL database adapters.
//
// It implements the repository interfaces of the ingest pipeline on top of a
// pgx connection pool, with one table per aggregate and JSONB columns for the
// document-shaped payloads.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// JobRepo persists ingest job lifecycle state.
type JobRepo struct{ Pool PgxPool }

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

// Create stores a new job and returns its id (generates one if empty).
func (r *JobRepo) Create(ctx domain.Context, j domain.IngestJob) (string, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "ingest_jobs"),
	)
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO ingest_jobs (id, status, error, file_key, source_hash, record_id, idempotency_key, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)`
	_, err := r.Pool.Exec(ctx, q, id, j.Status, j.Error, j.FileKey, j.SourceHash, j.RecordID, j.IdemKey, now)
	if err != nil {
		return "", fmt.Errorf("op=job.create: %w", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.IngestJob, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "ingest_jobs"),
	)
	q := `SELECT id, status, error, file_key, source_hash, record_id, idempotency_key, created_at, updated_at
	      FROM ingest_jobs WHERE id=$1`
	var j domain.IngestJob
	err := r.Pool.QueryRow(ctx, q, id).Scan(&j.ID, &j.Status, &j.Error, &j.FileKey, &j.SourceHash, &j.RecordID, &j.IdemKey, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IngestJob{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.IngestJob{}, fmt.Errorf("op=job.get: %w", err)
	}
	return j, nil
}

// UpdateStatus transitions a job, optionally recording an error message.
func (r *JobRepo) UpdateStatus(ctx domain.Context, id string, status domain.JobStatus, errMsg *string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "ingest_jobs"),
	)
	msg := ""
	if errMsg != nil {
		msg = *errMsg
	}
	q := `UPDATE ingest_jobs SET status=$2, error=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, status, msg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=job.update_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.update_status: %w", domain.ErrNotFound)
	}
	return nil
}

// SetRecord links a job to the cleaned record it produced.
func (r *JobRepo) SetRecord(ctx domain.Context, id, recordID string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.SetRecord")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "ingest_jobs"),
	)
	q := `UPDATE ingest_jobs SET record_id=$2, updated_at=$3 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, recordID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=job.set_record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.set_record: %w", domain.ErrNotFound)
	}
	return nil
}

// FindByIdempotencyKey returns the job previously created with the given key.
func (r *JobRepo) FindByIdempotencyKey(ctx domain.Context, key string) (domain.IngestJob, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.FindByIdempotencyKey")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "ingest_jobs"),
	)
	q := `SELECT id, status, error, file_key, source_hash, record_id, idempotency_key, created_at, updated_at
	      FROM ingest_jobs WHERE idempotency_key=$1 ORDER BY created_at DESC LIMIT 1`
	var j domain.IngestJob
	err := r.Pool.QueryRow(ctx, q, key).Scan(&j.ID, &j.Status, &j.Error, &j.FileKey, &j.SourceHash, &j.RecordID, &j.IdemKey, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IngestJob{}, fmt.Errorf("op=job.find_by_idem: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.IngestJob{}, fmt.Errorf("op=job.find_by_idem: %w", err)
	}
	return j, nil
}
