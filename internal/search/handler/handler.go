package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/search/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the search operations the handler depends on.
type Service interface {
	Search(ctx context.Context, q models.Query) (*models.ResultPage, error)
	Suggest(ctx context.Context, prefix string, limit int) (*models.Suggestions, error)
	Popular(ctx context.Context, limit int) ([]models.PopularQuery, error)
	Index(ctx context.Context, product models.Product) (*models.Product, error)
}

// Handler serves /search.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public search routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/search", h.HandleSearch)
	r.Get("/search/advanced", h.HandleAdvanced)
	r.Get("/search/suggestions", h.HandleSuggestions)
	r.Get("/search/popular", h.HandlePopular)
}

// RegisterAdmin mounts catalog indexing.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/search/products", h.HandleIndex)
}

// HandleSearch handles GET /search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q, page, err := parseSearch(query.New(r))
	h.search(w, r, q, page, err)
}

// HandleAdvanced handles GET /search/advanced.
func (h *Handler) HandleAdvanced(w http.ResponseWriter, r *http.Request) {
	q, page, err := parseAdvanced(query.New(r))
	h.search(w, r, q, page, err)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, q models.Query, page httputil.PageRequest, err error) {
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteList(w, r, toHitResponses(result.Items), len(result.Items),
		httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// HandleSuggestions handles GET /search/suggestions.
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	prefix, limit, err := parseSuggest(query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	s, err := h.service.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, SuggestionsResponse{
		Query:    prefix,
		Products: s.Products,
		Queries:  s.Queries,
	})
}

// HandlePopular handles GET /search/popular.
func (h *Handler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	p := query.New(r)
	limit := parseLimit(p, models.DefaultPopularLimit, models.MaxPopularLimit)
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	popular, err := h.service.Popular(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]PopularQueryResponse, len(popular))
	for i, pq := range popular {
		out[i] = PopularQueryResponse{Query: pq.Query, Count: pq.Count}
	}
	httputil.WriteList(w, r, out, len(out), nil)
}

// HandleIndex handles POST /search/products.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[IndexProductRequest](w, r, h.logger)
	if !ok {
		return
	}
	product, err := h.service.Index(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toProductResponse(*product))
}
