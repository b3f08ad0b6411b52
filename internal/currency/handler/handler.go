package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/currency/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Currency, error)
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
	Upsert(ctx context.Context, code string, in models.UpdateCurrency) (*models.Currency, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/currencies", h.HandleList)
	r.Get("/currencies/convert", h.HandleConvert)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/currencies/{code}", h.HandleUpsert)
}

// HandleList handles GET /currencies.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := query.New(r)
	active := p.Bool("active", "Active")
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	currencies, err := h.service.List(r.Context(), models.ListFilter{Active: active})
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]CurrencyResponse, len(currencies))
	for i, c := range currencies {
		out[i] = toCurrencyResponse(c)
	}
	httputil.WriteList(w, r, out, len(out), nil)
}

// HandleConvert handles GET /currencies/convert.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	q, err := parseConvert(query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	converted, err := h.service.Convert(r.Context(), q.amount, q.from, q.to)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, ConversionResponse{
		Amount:          q.amount,
		FromCurrency:    q.from,
		ToCurrency:      q.to,
		ConvertedAmount: converted,
	})
}

// HandleUpsert handles PUT /currencies/{code}.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	var v validation.Violations
	if !v.CurrencyCode("code", code, "Currency code") {
		httputil.WriteError(w, r, h.logger, v.Err())
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateCurrencyRequest](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.service.Upsert(r.Context(), code, req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toCurrencyResponse(c))
}
