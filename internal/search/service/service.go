// Package service implements catalog search, suggestions and popular queries.
package service

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/search/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// suggestionScan bounds how many popular queries are scanned for a prefix.
const suggestionScan = 200

// Catalog reads and indexes products.
type Catalog interface {
	All(ctx context.Context) ([]models.Product, error)
	Put(ctx context.Context, product models.Product) error
}

// QueryTracker counts searched queries.
type QueryTracker interface {
	Record(ctx context.Context, query string) error
	Popular(ctx context.Context, limit int) ([]models.PopularQuery, error)
}

type Service struct {
	catalog Catalog
	tracker QueryTracker
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(catalog Catalog, tracker QueryTracker, opts ...Option) *Service {
	s := &Service{catalog: catalog, tracker: tracker, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search ranks the catalog against q and records the query text.
func (s *Service) Search(ctx context.Context, q models.Query) (*models.ResultPage, error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read catalog")
	}
	hits := rank(products, q)
	s.record(ctx, q.Text)

	total := len(hits)
	start := min(max(q.Offset, 0), total)
	end := min(start+max(q.Limit, 0), total)
	return &models.ResultPage{Items: hits[start:end], Total: total}, nil
}

// Suggest returns product names and popular queries starting with prefix.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) (*models.Suggestions, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	products, err := s.catalog.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read catalog")
	}
	out := &models.Suggestions{Products: []string{}, Queries: []string{}}
	hits := rank(products, models.Query{Sort: models.SortRating})
	for _, h := range hits {
		if len(out.Products) == limit {
			break
		}
		if namePrefixed(h.Product.Name, prefix) {
			out.Products = append(out.Products, h.Product.Name)
		}
	}

	popular, err := s.tracker.Popular(ctx, suggestionScan)
	if err != nil {
		s.logger.WarnContext(ctx, "popular queries unavailable for suggestions",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return out, nil
	}
	for _, pq := range popular {
		if len(out.Queries) == limit {
			break
		}
		if strings.HasPrefix(pq.Query, prefix) {
			out.Queries = append(out.Queries, pq.Query)
		}
	}
	return out, nil
}

// Popular returns the most searched queries.
func (s *Service) Popular(ctx context.Context, limit int) ([]models.PopularQuery, error) {
	popular, err := s.tracker.Popular(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read popular searches")
	}
	return popular, nil
}

// Index adds or replaces a product in the catalog.
func (s *Service) Index(ctx context.Context, product models.Product) (*models.Product, error) {
	if product.ID == "" {
		product.ID = id.NewObjectIDAt(requestcontext.Now(ctx))
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = requestcontext.Now(ctx)
	}
	if err := s.catalog.Put(ctx, product); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to index product")
	}
	s.logger.InfoContext(ctx, "product indexed",
		"request_id", requestcontext.RequestID(ctx),
		"product_id", product.ID.String(),
	)
	return &product, nil
}

// Products returns the whole catalog ordered by name. Used by exports.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read catalog")
	}
	hits := rank(products, models.Query{})
	out := make([]models.Product, len(hits))
	for i, h := range hits {
		out[i] = h.Product
	}
	return out, nil
}

// record stores the normalized query. Tracking failures never fail a search.
func (s *Service) record(ctx context.Context, text string) {
	normalized := strings.Join(terms(text), " ")
	if normalized == "" {
		return
	}
	if err := s.tracker.Record(ctx, normalized); err != nil {
		s.logger.WarnContext(ctx, "failed to record search query",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func namePrefixed(name, prefix string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, prefix) {
		return true
	}
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, prefix) {
			return true
		}
	}
	return false
}
