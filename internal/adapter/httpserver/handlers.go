package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/usecase"
)

// Server carries the handlers' dependencies.
type Server struct {
	Ingest *usecase.IngestService
}

// NewServer constructs a Server.
func NewServer(ingest *usecase.IngestService) *Server {
	return &Server{Ingest: ingest}
}

type submitRequest struct {
	FileKey string `json:"file_key"`
	RawID   string `json:"raw_id,omitempty"`
}

type jobResponse struct {
	ID        string                `json:"id"`
	Status    domain.JobStatus      `json:"status"`
	Error     string                `json:"error,omitempty"`
	FileKey   string                `json:"file_key"`
	RecordID  string                `json:"record_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Record    *domain.CleanedResume `json:"record,omitempty"`
}

func toJobResponse(job domain.IngestJob, record *domain.CleanedResume) jobResponse {
	return jobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Error:     job.Error,
		FileKey:   job.FileKey,
		RecordID:  job.RecordID,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
		Record:    record,
	}
}

// SubmitHandler accepts POST /v1/resumes: it queues an ingest job for an
// uploaded file and responds 202 with the job.
func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, r, domain.ErrInvalidArgument, "body must be a JSON object")
			return
		}
		idemKey := r.Header.Get("X-Idempotency-Key")

		job, err := s.Ingest.Submit(r.Context(), usecase.SubmitRequest{
			FileKey: req.FileKey,
			RawID:   req.RawID,
			IdemKey: idemKey,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("ingest job submitted", "job_id", job.ID, "file_key", job.FileKey)
		writeJSON(w, http.StatusAccepted, toJobResponse(job, nil))
	}
}

// GetHandler serves GET /v1/resumes/{id}: job status plus the cleaned record
// once the job completed.
func (s *Server) GetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, domain.ErrInvalidArgument, "missing id")
			return
		}
		view, err := s.Ingest.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobResponse(view.Job, view.Record))
	}
}
