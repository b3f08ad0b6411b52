package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/order/models"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Place(ctx context.Context, in models.PlaceOrder) (*models.Placed, error)
	List(ctx context.Context, filter models.ListFilter) (*models.OrderPage, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routes for authenticated customers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.HandlePlace)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.HandleList)
}

// HandlePlace handles POST /orders.
func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	ident, ok := requestcontext.User(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[PlaceOrderRequest](w, r, h.logger)
	if !ok {
		return
	}
	placed, err := h.service.Place(r.Context(), req.ToModel(ident.ID))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, PlacedOrderResponse{
		OrderResponse: toOrderResponse(placed.Order),
		PointsEarned:  placed.PointsEarned,
	})
}

// HandleList handles GET /orders.
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
	out := make([]OrderResponse, len(result.Items))
	for i, o := range result.Items {
		out[i] = toOrderResponse(o)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page, limit, result.Total))
}
