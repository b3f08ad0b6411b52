package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/abtest/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
	"storefront/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the A/B test operations the handler depends on.
type Service interface {
	List(ctx context.Context, filter models.ListFilter) (*models.TestPage, error)
	Create(ctx context.Context, in models.CreateTest) (*models.Test, error)
	Get(ctx context.Context, testID id.ObjectID) (*models.Test, error)
	Start(ctx context.Context, testID id.ObjectID) (*models.Test, error)
	Pause(ctx context.Context, testID id.ObjectID) (*models.Test, error)
	Complete(ctx context.Context, testID id.ObjectID) (*models.Test, error)
	Results(ctx context.Context, testID id.ObjectID) (*models.Results, error)
	Track(ctx context.Context, testID id.ObjectID, event models.TrackEvent) (*models.Variant, error)
	Assign(ctx context.Context, testID id.ObjectID, userID id.UserID) (*models.Assignment, error)
}

// Handler serves /ab-tests.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes. Tracking and assignment are mounted
// separately by RegisterParticipant since any signed-in user may call them.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ab-tests", h.HandleList)
	r.Post("/ab-tests", h.HandleCreate)
	r.Get("/ab-tests/{id}", h.HandleGet)
	r.Patch("/ab-tests/{id}/start", h.HandleStart)
	r.Patch("/ab-tests/{id}/pause", h.HandlePause)
	r.Patch("/ab-tests/{id}/complete", h.HandleComplete)
	r.Get("/ab-tests/{id}/results", h.HandleResults)
}

// RegisterParticipant mounts the routes used by storefront clients.
func (h *Handler) RegisterParticipant(r chi.Router) {
	r.Post("/ab-tests/{id}/track", h.HandleTrack)
	r.Get("/ab-tests/{id}/assignment", h.HandleAssignment)
}

// HandleList handles GET /ab-tests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, page, limit, err := parseListFilter(query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteList(w, r, toTestResponses(result.Items), len(result.Items),
		httputil.NewPagination(page, limit, result.Total))
}

// HandleCreate handles POST /ab-tests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateTestRequest](w, r, h.logger)
	if !ok {
		return
	}
	test, err := h.service.Create(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toTestResponse(test))
}

// HandleGet handles GET /ab-tests/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.withTest(w, r, h.service.Get)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.withTest(w, r, h.service.Start)
}

func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.withTest(w, r, h.service.Pause)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.withTest(w, r, h.service.Complete)
}

// HandleResults handles GET /ab-tests/{id}/results.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	testID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	results, err := h.service.Results(r.Context(), testID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toResultsResponse(results))
}

// HandleTrack handles POST /ab-tests/{id}/track.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	testID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TrackEventRequest](w, r, h.logger)
	if !ok {
		return
	}
	variant, err := h.service.Track(r.Context(), testID, req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toVariantResponse(*variant))
}

// HandleAssignment handles GET /ab-tests/{id}/assignment.
func (h *Handler) HandleAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
		return
	}
	testID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Assign(ctx, testID, userID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, AssignmentResponse{
		TestID:     a.TestID.String(),
		UserID:     a.UserID.String(),
		VariantKey: a.VariantKey,
		Bucket:     a.Bucket,
	})
}

func (h *Handler) withTest(w http.ResponseWriter, r *http.Request, call func(context.Context, id.ObjectID) (*models.Test, error)) {
	testID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	test, err := call(r.Context(), testID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toTestResponse(test))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	var v validation.Violations
	if !v.ObjectID("id", raw, "A/B test ID") {
		httputil.WriteError(w, r, h.logger, v.Err())
		return "", false
	}
	testID, _ := id.ParseObjectID(raw)
	return testID, true
}
