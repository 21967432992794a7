package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// CompanyProfileRepo persists employer enrichment output per cleaned record.
type CompanyProfileRepo struct{ Pool PgxPool }

// NewCompanyProfileRepo constructs a CompanyProfileRepo with the given pool.
func NewCompanyProfileRepo(p PgxPool) *CompanyProfileRepo { return &CompanyProfileRepo{Pool: p} }

// Put upserts one employer profile for a record, keyed by (record, company).
// Re-enrichment replaces the previous profile.
func (r *CompanyProfileRepo) Put(ctx domain.Context, recordID string, p domain.CompanyProfile) error {
	tracer := otel.Tracer("repo.company_profiles")
	ctx, span := tracer.Start(ctx, "company_profiles.Put")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "company_profiles"),
	)
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("op=company_profile.put: %w", err)
	}
	q := `INSERT INTO company_profiles (id, record_id, company_name, doc, created_at)
	      VALUES ($1,$2,$3,$4,$5)
	      ON CONFLICT (record_id, company_name) DO UPDATE SET doc=EXCLUDED.doc`
	_, err = r.Pool.Exec(ctx, q, uuid.New().String(), recordID, p.CompanyName, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=company_profile.put: %w", err)
	}
	return nil
}

// ListByRecord returns all employer profiles stored for a record.
func (r *CompanyProfileRepo) ListByRecord(ctx domain.Context, recordID string) ([]domain.CompanyProfile, error) {
	tracer := otel.Tracer("repo.company_profiles")
	ctx, span := tracer.Start(ctx, "company_profiles.ListByRecord")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "company_profiles"),
	)
	q := `SELECT doc FROM company_profiles WHERE record_id=$1 ORDER BY company_name`
	rows, err := r.Pool.Query(ctx, q, recordID)
	if err != nil {
		return nil, fmt.Errorf("op=company_profile.list: %w", err)
	}
	defer rows.Close()

	var out []domain.CompanyProfile
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("op=company_profile.list: %w", err)
		}
		var p domain.CompanyProfile
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("op=company_profile.list: %w: %v", domain.ErrSchemaInvalid, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=company_profile.list: %w", err)
	}
	return out, nil
}
