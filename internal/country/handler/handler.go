package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/country/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, q string, offset, limit int) (*models.CountryPage, error)
	Get(ctx context.Context, code string) (*models.Country, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/countries", h.HandleList)
	r.Get("/countries/{code}", h.HandleGet)
}

type CountryResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
	Region   string `json:"region,omitempty"`
}

func toCountryResponse(c models.Country) CountryResponse {
	return CountryResponse{Code: c.Code, Name: c.Name, Currency: c.Currency, Region: c.Region}
}

// HandleList handles GET /countries.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := query.New(r)
	page := p.Pagination(models.DefaultListLimit, query.MaxPageLimit)
	q := p.String("q", "")
	p.Violations().MaxLength("q", q, models.MaxQueryLength, "Search query")
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.List(r.Context(), q, page.Offset(), page.Limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]CountryResponse, len(result.Items))
	for i, c := range result.Items {
		out[i] = toCountryResponse(c)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// HandleGet handles GET /countries/{code}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !isAlpha2(code) {
		var v validation.Violations
		v.Add("code", "Country code must be 2 letters")
		httputil.WriteError(w, r, h.logger, v.Err())
		return
	}
	c, err := h.service.Get(r.Context(), strings.ToUpper(code))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toCountryResponse(*c))
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
