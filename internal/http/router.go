// Package httpapi assembles the chi router: the shared middleware chain,
// route groups per access level and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	abtesthandler "storefront/internal/abtest/handler"
	countryhandler "storefront/internal/country/handler"
	currencyhandler "storefront/internal/currency/handler"
	exporthandler "storefront/internal/export/handler"
	loyaltyhandler "storefront/internal/loyalty/handler"
	notificationhandler "storefront/internal/notification/handler"
	orderhandler "storefront/internal/order/handler"
	"storefront/internal/platform/metrics"
	ratelimitmw "storefront/internal/ratelimit/middleware"
	schedulerhandler "storefront/internal/scheduler/handler"
	searchhandler "storefront/internal/search/handler"
	taxhandler "storefront/internal/tax/handler"
	vendorhandler "storefront/internal/vendors/handler"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/platform/middleware/language"
	"storefront/pkg/platform/middleware/metadata"
	metricsmw "storefront/pkg/platform/middleware/metrics"
	"storefront/pkg/platform/middleware/request"
	"storefront/pkg/platform/middleware/requesttime"
)

// Handlers groups every resource handler the router mounts.
type Handlers struct {
	ABTests       *abtesthandler.Handler
	Search        *searchhandler.Handler
	Loyalty       *loyaltyhandler.Handler
	Vendors       *vendorhandler.Handler
	Taxes         *taxhandler.Handler
	Currencies    *currencyhandler.Handler
	Countries     *countryhandler.Handler
	Orders        *orderhandler.Handler
	Export        *exporthandler.Handler
	Notifications *notificationhandler.Handler
	Scheduler     *schedulerhandler.Handler
}

// HealthCheck probes one dependency. A nil Check means the dependency is not
// configured and an in-memory adapter is in use.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Tokens         authmw.TokenValidator
	Limiter        *ratelimitmw.Middleware
	AllowedOrigins []string
	RequestTimeout time.Duration
	HealthChecks   []HealthCheck
}

const healthTimeout = 2 * time.Second

// New builds the application router.
func New(cfg Config, h Handlers) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(request.Tracing)
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(metadata.ClientMetadata)
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Handler)
	}
	r.Use(language.Negotiate)
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(metricsmw.Middleware(cfg.Metrics))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, nil, dErrors.New(dErrors.CodeNotFound, "Route "+r.Method+" "+r.URL.Path+" not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, nil, dErrors.New(dErrors.CodeMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path))
	})

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Public
	r.Group(func(r chi.Router) {
		mount(r, h.Search, (*searchhandler.Handler).Register)
		mount(r, h.Taxes, (*taxhandler.Handler).Register)
		mount(r, h.Currencies, (*currencyhandler.Handler).Register)
		mount(r, h.Countries, (*countryhandler.Handler).Register)
	})

	// Any signed-in user
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens, logger))
		mount(r, h.ABTests, (*abtesthandler.Handler).RegisterParticipant)
		mount(r, h.Loyalty, (*loyaltyhandler.Handler).Register)
		mount(r, h.Orders, (*orderhandler.Handler).Register)
		mount(r, h.Notifications, (*notificationhandler.Handler).Register)
	})

	// Vendors acting on their own account, and admins
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens, logger))
		r.Use(authmw.RequireRole(logger, id.RoleVendor, id.RoleAdmin))
		mount(r, h.Vendors, (*vendorhandler.Handler).RegisterSelfService)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens, logger))
		r.Use(authmw.RequireRole(logger, id.RoleAdmin))
		mount(r, h.ABTests, (*abtesthandler.Handler).Register)
		mount(r, h.Search, (*searchhandler.Handler).RegisterAdmin)
		mount(r, h.Loyalty, (*loyaltyhandler.Handler).RegisterAdmin)
		mount(r, h.Vendors, (*vendorhandler.Handler).Register)
		mount(r, h.Taxes, (*taxhandler.Handler).RegisterAdmin)
		mount(r, h.Currencies, (*currencyhandler.Handler).RegisterAdmin)
		mount(r, h.Orders, (*orderhandler.Handler).RegisterAdmin)
		mount(r, h.Export, (*exporthandler.Handler).Register)
		mount(r, h.Notifications, (*notificationhandler.Handler).RegisterAdmin)
		mount(r, h.Scheduler, (*schedulerhandler.Handler).Register)
	})

	return r
}

// mount skips handlers that were not wired, which lets tests build a router
// with only the resources they exercise.
func mount[H any](r chi.Router, h *H, register func(*H, chi.Router)) {
	if h != nil {
		register(h, r)
	}
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		resp := HealthResponse{Status: "ok", Dependencies: make(map[string]string, len(checks))}
		for _, c := range checks {
			switch {
			case c.Check == nil:
				resp.Dependencies[c.Name] = "in-memory"
			case c.Check(ctx) != nil:
				resp.Dependencies[c.Name] = "down"
				resp.Status = "degraded"
			default:
				resp.Dependencies[c.Name] = "up"
			}
		}
		httputil.WriteSuccess(w, r, http.StatusOK, resp)
	}
}
