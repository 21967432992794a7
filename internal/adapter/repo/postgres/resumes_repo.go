package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// RawResumeRepo reads upstream candidate records. The upstream ingestion
// process owns the raw_resumes table; this service only selects from it.
type RawResumeRepo struct{ Pool PgxPool }

// NewRawResumeRepo constructs a RawResumeRepo with the given pool.
func NewRawResumeRepo(p PgxPool) *RawResumeRepo { return &RawResumeRepo{Pool: p} }

// FindOne loads one raw record by id.
func (r *RawResumeRepo) FindOne(ctx domain.Context, id string) (domain.RawResume, error) {
	tracer := otel.Tracer("repo.raw_resumes")
	ctx, span := tracer.Start(ctx, "raw_resumes.FindOne")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "raw_resumes"),
	)
	q := `SELECT id, doc FROM raw_resumes WHERE id=$1`
	var doc []byte
	var rowID string
	err := r.Pool.QueryRow(ctx, q, id).Scan(&rowID, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RawResume{}, fmt.Errorf("op=raw_resume.find_one: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.RawResume{}, fmt.Errorf("op=raw_resume.find_one: %w", err)
	}
	var raw domain.RawResume
	if err := json.Unmarshal(doc, &raw); err != nil {
		return domain.RawResume{}, fmt.Errorf("op=raw_resume.find_one: %w: %v", domain.ErrSchemaInvalid, err)
	}
	raw.ID = rowID
	return raw, nil
}

// CleanedResumeRepo persists reconciliation output as JSONB documents.
type CleanedResumeRepo struct{ Pool PgxPool }

// NewCleanedResumeRepo constructs a CleanedResumeRepo with the given pool.
func NewCleanedResumeRepo(p PgxPool) *CleanedResumeRepo { return &CleanedResumeRepo{Pool: p} }

// Put upserts a cleaned record keyed by its source hash and returns the
// record id. Reprocessing the same source document overwrites the previous
// document under the same id instead of inserting a duplicate.
func (r *CleanedResumeRepo) Put(ctx domain.Context, c domain.CleanedResume) (string, error) {
	tracer := otel.Tracer("repo.cleaned_resumes")
	ctx, span := tracer.Start(ctx, "cleaned_resumes.Put")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "cleaned_resumes"),
	)
	if c.SourceHash == "" {
		return "", fmt.Errorf("op=cleaned_resume.put: empty source hash: %w", domain.ErrInvalidArgument)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("op=cleaned_resume.put: %w", err)
	}
	q := `INSERT INTO cleaned_resumes (id, source_hash, doc, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$4)
	      ON CONFLICT (source_hash) DO UPDATE SET doc=EXCLUDED.doc, updated_at=EXCLUDED.updated_at
	      RETURNING id`
	var id string
	if err := r.Pool.QueryRow(ctx, q, uuid.New().String(), c.SourceHash, doc, time.Now().UTC()).Scan(&id); err != nil {
		return "", fmt.Errorf("op=cleaned_resume.put: %w", err)
	}
	return id, nil
}

// Get loads a cleaned record by id.
func (r *CleanedResumeRepo) Get(ctx domain.Context, id string) (domain.CleanedResume, error) {
	tracer := otel.Tracer("repo.cleaned_resumes")
	ctx, span := tracer.Start(ctx, "cleaned_resumes.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "cleaned_resumes"),
	)
	return r.getBy(ctx, `SELECT doc FROM cleaned_resumes WHERE id=$1`, id)
}

// GetBySourceHash loads a cleaned record by the hash of its source document.
func (r *CleanedResumeRepo) GetBySourceHash(ctx domain.Context, hash string) (domain.CleanedResume, error) {
	tracer := otel.Tracer("repo.cleaned_resumes")
	ctx, span := tracer.Start(ctx, "cleaned_resumes.GetBySourceHash")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "cleaned_resumes"),
	)
	return r.getBy(ctx, `SELECT doc FROM cleaned_resumes WHERE source_hash=$1`, hash)
}

func (r *CleanedResumeRepo) getBy(ctx domain.Context, q string, arg any) (domain.CleanedResume, error) {
	var doc []byte
	err := r.Pool.QueryRow(ctx, q, arg).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CleanedResume{}, fmt.Errorf("op=cleaned_resume.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.CleanedResume{}, fmt.Errorf("op=cleaned_resume.get: %w", err)
	}
	var c domain.CleanedResume
	if err := json.Unmarshal(doc, &c); err != nil {
		return domain.CleanedResume{}, fmt.Errorf("op=cleaned_resume.get: %w: %v", domain.ErrSchemaInvalid, err)
	}
	return c, nil
}
