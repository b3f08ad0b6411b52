package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	countryhandler "storefront/internal/country/handler"
	countryservice "storefront/internal/country/service"
	loyaltyhandler "storefront/internal/loyalty/handler"
	loyaltyservice "storefront/internal/loyalty/service"
	loyaltystore "storefront/internal/loyalty/store"
	"storefront/internal/platform/metrics"
	ratelimitmw "storefront/internal/ratelimit/middleware"
	ratelimitmodels "storefront/internal/ratelimit/models"
	ratelimitstore "storefront/internal/ratelimit/store"
	id "storefront/pkg/domain"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/platform/middleware/request"
	"storefront/pkg/testutil"
)

type staticTokens map[string]*authmw.Claims

func (s staticTokens) ValidateToken(token string) (*authmw.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("unknown token")
}

type RouterSuite struct {
	suite.Suite
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	tokens := staticTokens{
		"customer": {UserID: id.NewUserID().String(), Role: "customer"},
		"admin":    {UserID: id.NewUserID().String(), Role: "admin"},
	}
	s.router = New(Config{
		Logger:         logger,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Tokens:         tokens,
		AllowedOrigins: []string{"https://shop.example.com"},
		HealthChecks: []HealthCheck{
			{Name: "postgres"},
			{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
			{Name: "kafka", Check: func(context.Context) error { return nil }},
		},
	}, Handlers{
		Loyalty:   loyaltyhandler.New(loyaltyservice.New(loyaltystore.NewInMemory()), logger),
		Countries: countryhandler.New(countryservice.New(), logger),
	})
}

func (s *RouterSuite) do(method, path, token string) *http.Request {
	req := testutil.NewRequest(s.T(), method, path)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *RouterSuite) TestHealthReportsDependencies() {
	rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/health", ""))
	env := testutil.AssertSuccess[HealthResponse](s.T(), rr, http.StatusOK)

	s.Equal("degraded", env.Data.Status)
	s.Equal(map[string]string{"postgres": "in-memory", "redis": "down", "kafka": "up"}, env.Data.Dependencies)
}

func (s *RouterSuite) TestUnknownRouteAndMethod() {
	rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/nope", ""))
	testutil.AssertError(s.T(), rr, http.StatusNotFound, "Route GET /nope not found")

	rr = testutil.DoRequest(s.router, s.do(http.MethodDelete, "/health", ""))
	testutil.AssertError(s.T(), rr, http.StatusMethodNotAllowed, "Method DELETE not allowed on /health")
	s.Equal("method_not_allowed", testutil.DecodeMap(s.T(), rr)["code"])
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("loyalty program requires a token", func() {
		rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/loyalty/program", ""))
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "Authentication required")
	})

	s.Run("bad token", func() {
		rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/loyalty/program", "forged"))
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("customer reaches user routes", func() {
		rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/loyalty/program", "customer"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("customer cannot reach admin routes", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/loyalty/points/adjust", map[string]any{})
		req.Header.Set("Authorization", "Bearer customer")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusForbidden, "You do not have permission to perform this action")
	})
}

func (s *RouterSuite) TestPublicRouteNeedsNoToken() {
	req := s.do(http.MethodGet, "/countries/DE", "")
	req.Header.Set(request.HeaderRequestID, "trace-abc")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("trace-abc", rr.Header().Get(request.HeaderRequestID))
	s.Equal("trace-abc", testutil.DecodeMap(s.T(), rr)["requestId"])
}

func (s *RouterSuite) TestCORSPreflight() {
	req := s.do(http.MethodOptions, "/countries", "")
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := testutil.DoRequest(s.router, req)

	s.Equal("https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	testutil.DoRequest(s.router, s.do(http.MethodGet, "/countries/DE", ""))
	rr := testutil.DoRequest(s.router, s.do(http.MethodGet, "/metrics", ""))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(strings.Contains(rr.Body.String(), `storefront_http_request_duration_seconds_count{method="GET",route="/countries/{code}",status="200"}`))
}

func TestRouter_RateLimitRunsBeforeRouting(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimitmw.New(ratelimitstore.NewInMemory(), map[ratelimitmodels.Class]ratelimitmodels.Policy{
		ratelimitmodels.ClassRead: {Limit: 1, Window: time.Minute},
	}, ratelimitmw.WithLogger(logger))
	router := New(Config{Logger: logger, Limiter: limiter}, Handlers{
		Countries: countryhandler.New(countryservice.New(), logger),
	})

	first := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/countries/DE"))
	testutil.AssertStatus(t, first, http.StatusOK)
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/countries/FR"))
	testutil.AssertError(t, second, http.StatusTooManyRequests, "Too many requests, please try again later")
}
