package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/clean"
	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/enrich"
	"github.com/hiresight/resume-ingest/internal/extract"
	"github.com/hiresight/resume-ingest/internal/location"
)

var allowedMIMEs = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

// ProcessService runs the full pipeline for one queued ingest job: download,
// text extraction, heuristic extraction, reconciliation, location resolution,
// persistence and company enrichment.
type ProcessService struct {
	jobs      domain.JobRepository
	raws      domain.RawResumeRepository
	records   domain.CleanedResumeRepository
	companies domain.CompanyProfileRepository
	store     domain.ObjectStore
	texts     domain.TextExtractor
	extractor *extract.Extractor
	cleaner   *clean.Cleaner
	resolver  *location.Resolver
	enricher  *enrich.Enricher
}

// NewProcessService constructs a ProcessService.
func NewProcessService(
	jobs domain.JobRepository,
	raws domain.RawResumeRepository,
	records domain.CleanedResumeRepository,
	companies domain.CompanyProfileRepository,
	store domain.ObjectStore,
	texts domain.TextExtractor,
	extractor *extract.Extractor,
	cleaner *clean.Cleaner,
	resolver *location.Resolver,
	enricher *enrich.Enricher,
) *ProcessService {
	return &ProcessService{
		jobs:      jobs,
		raws:      raws,
		records:   records,
		companies: companies,
		store:     store,
		texts:     texts,
		extractor: extractor,
		cleaner:   cleaner,
		resolver:  resolver,
		enricher:  enricher,
	}
}

// Process handles one ingest task. Extraction failures halt the job with
// nothing persisted; completion-service failures inside reconciliation only
// degrade individual fields.
func (s *ProcessService) Process(ctx domain.Context, payload domain.IngestTaskPayload) error {
	observability.JobsProcessing.WithLabelValues("ingest").Inc()
	defer observability.JobsProcessing.WithLabelValues("ingest").Dec()

	if err := s.jobs.UpdateStatus(ctx, payload.JobID, domain.JobProcessing, nil); err != nil {
		return fmt.Errorf("op=process: %w", err)
	}

	if err := s.run(ctx, payload); err != nil {
		msg := err.Error()
		if uerr := s.jobs.UpdateStatus(ctx, payload.JobID, domain.JobFailed, &msg); uerr != nil {
			slog.Error("failed to mark job failed", slog.String("job_id", payload.JobID), slog.Any("error", uerr))
		}
		observability.JobsFailedTotal.WithLabelValues("ingest").Inc()
		return err
	}

	if err := s.jobs.UpdateStatus(ctx, payload.JobID, domain.JobCompleted, nil); err != nil {
		return fmt.Errorf("op=process: %w", err)
	}
	observability.JobsCompletedTotal.WithLabelValues("ingest").Inc()
	return nil
}

func (s *ProcessService) run(ctx domain.Context, payload domain.IngestTaskPayload) error {
	data, err := s.store.Download(ctx, payload.FileKey)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if mt := mimetype.Detect(data); !isAllowedMIME(mt.String()) {
		return fmt.Errorf("detected %s: %w", mt.String(), domain.ErrUnsupportedFormat)
	}

	text, err := s.extractText(ctx, payload.FileKey, data)
	if err != nil {
		return err
	}

	heuristic := s.extractor.Extract(text)

	var raw domain.RawResume
	if payload.RawID != "" {
		raw, err = s.raws.FindOne(ctx, payload.RawID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("raw lookup: %w", err)
		}
	}

	parsed, parseText := domain.DecodeParseData(raw.ResumeParseData)
	if parseText == "" {
		parseText = text
	}

	cleaned := s.cleaner.Clean(ctx, clean.Source{
		Raw:       raw,
		Parsed:    parsed,
		Heuristic: heuristic,
		Text:      parseText,
	})
	cleaned.SourceHash = sourceHash(data)

	loc := s.resolver.Resolve(ctx, cleaned.City, cleaned.State, cleaned.CountryCode)
	cleaned.ResolvedLocation = &loc

	recordID, err := s.records.Put(ctx, cleaned)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := s.jobs.SetRecord(ctx, payload.JobID, recordID); err != nil {
		return fmt.Errorf("link record: %w", err)
	}

	// enrichment is downstream of persistence; its failures never fail the job
	for _, profile := range s.enricher.Profiles(ctx, cleaned.Employment) {
		if err := s.companies.Put(ctx, recordID, profile); err != nil {
			slog.Warn("company profile not stored",
				slog.String("record_id", recordID),
				slog.String("company", profile.CompanyName),
				slog.Any("error", err))
		}
	}
	return nil
}

// extractText writes the document to a temp file and hands it to the text
// extractor.
func (s *ProcessService) extractText(ctx domain.Context, fileKey string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*"+strings.ToLower(filepath.Ext(fileKey)))
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}

	text, err := s.texts.ExtractPath(ctx, filepath.Base(fileKey), tmp.Name())
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	return text, nil
}

func isAllowedMIME(mime string) bool {
	// mimetype may append parameters such as "; charset=utf-8"
	if i := strings.IndexByte(mime, ';'); i != -1 {
		mime = mime[:i]
	}
	_, ok := allowedMIMEs[strings.TrimSpace(mime)]
	return ok
}

func sourceHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
