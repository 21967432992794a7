package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/adapter/httpserver"
	"github.com/hiresight/resume-ingest/internal/app"
	"github.com/hiresight/resume-ingest/internal/config"
	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/usecase"
)

type memJobs struct {
	jobs map[string]domain.IngestJob
	n    int
}

func (m *memJobs) Create(_ domain.Context, j domain.IngestJob) (string, error) {
	if m.jobs == nil {
		m.jobs = map[string]domain.IngestJob{}
	}
	m.n++
	if j.ID == "" {
		j.ID = "job-" + string(rune('0'+m.n))
	}
	m.jobs[j.ID] = j
	return j.ID, nil
}

func (m *memJobs) Get(_ domain.Context, id string) (domain.IngestJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return domain.IngestJob{}, domain.ErrNotFound
	}
	return j, nil
}

func (m *memJobs) UpdateStatus(_ domain.Context, id string, status domain.JobStatus, _ *string) error {
	j := m.jobs[id]
	j.Status = status
	m.jobs[id] = j
	return nil
}

func (m *memJobs) SetRecord(_ domain.Context, id, recordID string) error {
	j := m.jobs[id]
	j.RecordID = recordID
	m.jobs[id] = j
	return nil
}

func (m *memJobs) FindByIdempotencyKey(_ domain.Context, key string) (domain.IngestJob, error) {
	for _, j := range m.jobs {
		if j.IdemKey != nil && *j.IdemKey == key {
			return j, nil
		}
	}
	return domain.IngestJob{}, domain.ErrNotFound
}

type memRecords struct {
	recs map[string]domain.CleanedResume
}

func (m *memRecords) Put(_ domain.Context, c domain.CleanedResume) (string, error) {
	if m.recs == nil {
		m.recs = map[string]domain.CleanedResume{}
	}
	id := "rec-1"
	m.recs[id] = c
	return id, nil
}

func (m *memRecords) Get(_ domain.Context, id string) (domain.CleanedResume, error) {
	c, ok := m.recs[id]
	if !ok {
		return domain.CleanedResume{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *memRecords) GetBySourceHash(_ domain.Context, _ string) (domain.CleanedResume, error) {
	return domain.CleanedResume{}, domain.ErrNotFound
}

type memQueue struct{ payloads []domain.IngestTaskPayload }

func (m *memQueue) EnqueueIngest(_ domain.Context, p domain.IngestTaskPayload) (string, error) {
	m.payloads = append(m.payloads, p)
	return p.JobID, nil
}

func newTestRouter(jobs *memJobs, records *memRecords, queue *memQueue) http.Handler {
	svc := usecase.NewIngestService(jobs, records, queue)
	cfg := config.Config{CORSAllowOrigins: "*", RateLimitPerMin: 100}
	return app.BuildRouter(cfg, httpserver.NewServer(svc), nil, nil)
}

func TestSubmitAccepted(t *testing.T) {
	t.Parallel()
	queue := &memQueue{}
	h := newTestRouter(&memJobs{}, &memRecords{}, queue)

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", strings.NewReader(`{"file_key":"resumes/jane.pdf","raw_id":"raw-1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "queued", resp.Status)
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, "raw-1", queue.payloads[0].RawID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSubmitMissingFileKey(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&memJobs{}, &memRecords{}, &memQueue{})

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestSubmitMalformedBody(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&memJobs{}, &memRecords{}, &memQueue{})

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitIdempotencyHeader(t *testing.T) {
	t.Parallel()
	queue := &memQueue{}
	h := newTestRouter(&memJobs{}, &memRecords{}, queue)

	body := `{"file_key":"k"}`
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/v1/resumes", strings.NewReader(body))
		req.Header.Set("X-Idempotency-Key", "idem-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
	assert.Len(t, queue.payloads, 1, "second submit replays the first job")
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&memJobs{}, &memRecords{}, &memQueue{})

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestGetCompletedIncludesRecord(t *testing.T) {
	t.Parallel()
	jobs := &memJobs{}
	records := &memRecords{}
	_, err := records.Put(context.Background(), domain.CleanedResume{SourceHash: "h", FullName: "Jane Doe"})
	require.NoError(t, err)
	_, err = jobs.Create(context.Background(), domain.IngestJob{ID: "job-1", Status: domain.JobCompleted, RecordID: "rec-1"})
	require.NoError(t, err)
	h := newTestRouter(jobs, records, &memQueue{})

	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/job-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string                `json:"status"`
		Record *domain.CleanedResume `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Record)
	assert.Equal(t, "Jane Doe", resp.Record.FullName)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&memJobs{}, &memRecords{}, &memQueue{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzWithoutBackends(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&memJobs{}, &memRecords{}, &memQueue{})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
