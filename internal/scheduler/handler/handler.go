package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/scheduler/models"
	"storefront/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Status() []models.JobStatus
	Start(name string) (*models.JobStatus, error)
	Stop(name string) (*models.JobStatus, error)
	RunNow(ctx context.Context, name string) (*models.JobStatus, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/scheduler/jobs", h.HandleList)
	r.Post("/scheduler/jobs/{name}/start", h.HandleStart)
	r.Post("/scheduler/jobs/{name}/stop", h.HandleStop)
	r.Post("/scheduler/jobs/{name}/run", h.HandleRun)
}

type JobResponse struct {
	Name           string     `json:"name"`
	Schedule       string     `json:"schedule"`
	Active         bool       `json:"active"`
	Running        bool       `json:"running"`
	Runs           int        `json:"runs"`
	Failures       int        `json:"failures"`
	LastRunAt      *time.Time `json:"lastRunAt,omitempty"`
	LastDurationMs int64      `json:"lastDurationMs"`
	LastError      string     `json:"lastError,omitempty"`
	NextRunAt      *time.Time `json:"nextRunAt,omitempty"`
}

func toJobResponse(s *models.JobStatus) JobResponse {
	return JobResponse{
		Name:           s.Name,
		Schedule:       s.Schedule,
		Active:         s.Active,
		Running:        s.Running,
		Runs:           s.Runs,
		Failures:       s.Failures,
		LastRunAt:      s.LastRunAt,
		LastDurationMs: s.LastDuration.Milliseconds(),
		LastError:      s.LastError,
		NextRunAt:      s.NextRunAt,
	}
}

// HandleList handles GET /scheduler/jobs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs := h.service.Status()
	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = toJobResponse(&jobs[i])
	}
	httputil.WriteList(w, r, out, len(out), nil)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Start(chi.URLParam(r, "name")))
}

func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Stop(chi.URLParam(r, "name")))
}

// HandleRun handles POST /scheduler/jobs/{name}/run. The job runs before
// the response is written; its failure is reported in lastError.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.RunNow(r.Context(), chi.URLParam(r, "name")))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(*models.JobStatus, error) {
	return func(status *models.JobStatus, err error) {
		if err != nil {
			httputil.WriteError(w, r, h.logger, err)
			return
		}
		httputil.WriteSuccess(w, r, http.StatusOK, toJobResponse(status))
	}
}
