package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/export/models"
	"storefront/internal/export/service"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Export(ctx context.Context, req service.Request) (*models.File, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/export/{dataset}", h.HandleExport)
}

// HandleExport handles GET /export/{dataset}. The body is the file itself,
// not an envelope; errors still use the error envelope.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(chi.URLParam(r, "dataset"), query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	file, err := h.service.Export(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+file.Name)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func parseRequest(dataset string, p *query.Parser) (service.Request, error) {
	v := p.Violations()
	v.OneOf("dataset", dataset, models.Datasets, "Dataset")
	format := p.Enum("format", "Format", string(models.FormatCSV), models.Formats...)
	var req service.Request
	if dataset == string(models.DatasetOrders) {
		req.From = p.Date("startDate", "Start date")
		req.To = p.Date("endDate", "End date")
		v.DateRange("startDate", req.From, req.To, "Start date must be before end date")
	}
	if err := p.Err(); err != nil {
		return service.Request{}, err
	}
	req.Dataset = models.Dataset(dataset)
	req.Format = models.Format(format)
	return req, nil
}
