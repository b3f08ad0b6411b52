// Package middleware enforces per-client request budgets.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/platform/metrics"
	"storefront/internal/ratelimit/models"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

const exceededMessage = "Too many requests, please try again later"

// Store checks and records one request against a bucket.
type Store interface {
	Allow(ctx context.Context, key string, p models.Policy) (*models.Result, error)
}

type Middleware struct {
	store    Store
	policies map[models.Class]models.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New builds the limiter. A class without a policy is not limited.
func New(store Store, policies map[models.Class]models.Policy, opts ...Option) *Middleware {
	m := &Middleware{store: store, policies: policies, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler limits by client IP, which the metadata middleware must have set.
// Store failures let the request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := models.ClassOf(r.Method)
		policy, ok := m.policies[class]
		if !ok || policy.Limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		result, err := m.store.Allow(ctx, models.Key(class, ip), policy)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"class", string(class),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		setHeaders(w, result)
		if !result.Allowed {
			m.metrics.IncrementRateLimited(string(class))
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteError(w, r, m.logger, dErrors.New(dErrors.CodeTooManyRequests, exceededMessage))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
