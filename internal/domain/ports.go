package domain

// Repositories (ports)

// JobRepository persists ingest job lifecycle state.
type JobRepository interface {
	Create(ctx Context, j IngestJob) (string, error)
	Get(ctx Context, id string) (IngestJob, error)
	UpdateStatus(ctx Context, id string, status JobStatus, errMsg *string) error
	SetRecord(ctx Context, id, recordID string) error
	FindByIdempotencyKey(ctx Context, key string) (IngestJob, error)
}

// RawResumeRepository reads upstream candidate records. The upstream store
// owns these documents; this service never writes them.
type RawResumeRepository interface {
	FindOne(ctx Context, id string) (RawResume, error)
}

// CleanedResumeRepository persists reconciliation output. Put upserts by
// source hash so reprocessing the same document never duplicates a record.
type CleanedResumeRepository interface {
	Put(ctx Context, r CleanedResume) (string, error)
	Get(ctx Context, id string) (CleanedResume, error)
	GetBySourceHash(ctx Context, hash string) (CleanedResume, error)
}

// CompanyProfileRepository persists employer enrichment output.
type CompanyProfileRepository interface {
	Put(ctx Context, recordID string, p CompanyProfile) error
	ListByRecord(ctx Context, recordID string) ([]CompanyProfile, error)
}

// Queue (port)

// Queue hands ingest tasks to the worker pool.
type Queue interface {
	EnqueueIngest(ctx Context, payload IngestTaskPayload) (string, error)
}

// CompletionProvider (port)

// CompletionProvider is the external LLM capability: one best-effort text
// generation per prompt, no structured-output guarantee.
type CompletionProvider interface {
	Generate(ctx Context, prompt string) (string, error)
}

// TextExtractor (port)
// ExtractPath extracts plain text from a document on disk. Unsupported
// formats yield ErrUnsupportedFormat, empty documents ErrNoData.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// ObjectStore (port)

// ObjectStore fetches resume files from object storage by key.
type ObjectStore interface {
	Download(ctx Context, key string) ([]byte, error)
}

// Geocoder (port)

// Geocoder resolves a location triple to coordinates, nil when unknown.
type Geocoder interface {
	Coordinates(ctx Context, city, state, country string) (*Coordinates, error)
}
