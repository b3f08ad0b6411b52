package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
	"storefront/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the vendor operations the handler depends on.
type Service interface {
	List(ctx context.Context, filter models.ListFilter) (*models.VendorPage, error)
	Create(ctx context.Context, in models.CreateVendor) (*models.Vendor, error)
	Get(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	UpdateStatus(ctx context.Context, vendorID id.VendorID, status models.Status) (*models.Vendor, error)
	Metrics(ctx context.Context, vendorID id.VendorID, from, to *time.Time) (*models.Metrics, error)
	CreatePayout(ctx context.Context, in models.CreatePayout) (*models.Payout, error)
	Payouts(ctx context.Context, vendorID id.VendorID, offset, limit int) (*models.PayoutPage, error)
}

// Handler serves /vendors.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/vendors", h.HandleList)
	r.Post("/vendors", h.HandleCreate)
	r.Post("/vendors/payouts", h.HandleCreatePayout)
	r.Get("/vendors/{id}", h.HandleGet)
	r.Patch("/vendors/{id}/status", h.HandleUpdateStatus)
}

// RegisterSelfService mounts the routes a vendor may call for itself.
// Admins may call them for any vendor.
func (h *Handler) RegisterSelfService(r chi.Router) {
	r.Get("/vendors/{id}/metrics", h.HandleMetrics)
	r.Get("/vendors/{id}/payouts", h.HandlePayouts)
}

// HandleList handles GET /vendors.
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
	out := make([]VendorResponse, len(result.Items))
	for i, v := range result.Items {
		out[i] = toVendorResponse(v)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page, limit, result.Total))
}

// HandleCreate handles POST /vendors.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateVendorRequest](w, r, h.logger)
	if !ok {
		return
	}
	vendor, err := h.service.Create(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toVendorResponse(vendor))
}

// HandleGet handles GET /vendors/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	vendor, err := h.service.Get(r.Context(), vendorID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toVendorResponse(vendor))
}

// HandleUpdateStatus handles PATCH /vendors/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger)
	if !ok {
		return
	}
	vendor, err := h.service.UpdateStatus(r.Context(), vendorID, models.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toVendorResponse(vendor))
}

// HandleMetrics handles GET /vendors/{id}/metrics.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	p := query.New(r)
	from := p.Date("startDate", "Start date")
	to := p.Date("endDate", "End date")
	p.Violations().DateRange("startDate", from, to, "Start date must be before end date")
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	m, err := h.service.Metrics(r.Context(), vendorID, from, to)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toMetricsResponse(m))
}

// HandleCreatePayout handles POST /vendors/payouts.
func (h *Handler) HandleCreatePayout(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreatePayoutRequest](w, r, h.logger)
	if !ok {
		return
	}
	payout, err := h.service.CreatePayout(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toPayoutResponse(payout))
}

// HandlePayouts handles GET /vendors/{id}/payouts.
func (h *Handler) HandlePayouts(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	p := query.New(r)
	page := p.Pagination(models.DefaultPayoutLimit, query.MaxPageLimit)
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.Payouts(r.Context(), vendorID, page.Offset(), page.Limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]PayoutResponse, len(result.Items))
	for i, p := range result.Items {
		out[i] = toPayoutResponse(p)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// selfOrAdmin resolves the path vendor and allows admins or that vendor.
func (h *Handler) selfOrAdmin(w http.ResponseWriter, r *http.Request) (id.VendorID, bool) {
	ident, ok := requestcontext.User(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
		return id.VendorID{}, false
	}
	vendorID, ok := h.pathID(w, r)
	if !ok {
		return id.VendorID{}, false
	}
	if ident.HasRole(id.RoleAdmin) {
		return vendorID, true
	}
	if ident.HasRole(id.RoleVendor) && ident.VendorID == vendorID {
		return vendorID, true
	}
	httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeForbidden, "You do not have permission to access this vendor"))
	return id.VendorID{}, false
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.VendorID, bool) {
	raw := chi.URLParam(r, "id")
	var v validation.Violations
	if !v.UUID("id", raw, "vendor ID") {
		httputil.WriteError(w, r, h.logger, v.Err())
		return id.VendorID{}, false
	}
	vendorID, _ := id.ParseVendorID(raw)
	return vendorID, true
}
