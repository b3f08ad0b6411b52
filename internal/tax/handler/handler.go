package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/tax/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Calculate(ctx context.Context, in models.CalculateInput) (*models.Calculation, error)
	Rates(ctx context.Context, country string, offset, limit int) (*models.RatePage, error)
	CreateRate(ctx context.Context, in models.CreateRate) (*models.TaxRate, error)
	DeleteRate(ctx context.Context, rateID id.ObjectID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/taxes/calculate", h.HandleCalculate)
	r.Get("/taxes/rates", h.HandleRates)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/taxes/rates", h.HandleCreateRate)
	r.Delete("/taxes/rates/{id}", h.HandleDeleteRate)
}

// HandleCalculate handles GET /taxes/calculate.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	in, err := parseCalculate(query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	calc, err := h.service.Calculate(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toCalculationResponse(calc))
}

// HandleRates handles GET /taxes/rates.
func (h *Handler) HandleRates(w http.ResponseWriter, r *http.Request) {
	p := query.New(r)
	page := p.Pagination(models.DefaultListLimit, query.MaxPageLimit)
	country := parseCountryFilter(p)
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.Rates(r.Context(), country, page.Offset(), page.Limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]RateResponse, len(result.Items))
	for i, rate := range result.Items {
		out[i] = toRateResponse(rate)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// HandleCreateRate handles POST /taxes/rates.
func (h *Handler) HandleCreateRate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateRateRequest](w, r, h.logger)
	if !ok {
		return
	}
	rate, err := h.service.CreateRate(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toRateResponse(rate))
}

// HandleDeleteRate handles DELETE /taxes/rates/{id}.
func (h *Handler) HandleDeleteRate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	var v validation.Violations
	if !v.ObjectID("id", raw, "tax rate ID") {
		httputil.WriteError(w, r, h.logger, v.Err())
		return
	}
	if err := h.service.DeleteRate(r.Context(), id.ObjectID(strings.ToLower(raw))); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteNoContent(w)
}
