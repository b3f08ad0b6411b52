package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"storefront/internal/currency/models"
	"storefront/internal/currency/store"
	"storefront/internal/platform/metrics"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// =============================================================================
// Currency Service Suite
// =============================================================================
// Justification: conversions read through a cache; the suite checks that the
// cache is filled, evicted on writes and shared by concurrent misses.

// countingStore counts Get calls and can hold them until released.
type countingStore struct {
	*store.InMemoryStore
	gets    atomic.Int32
	release chan struct{}
}

func (c *countingStore) Get(ctx context.Context, code string) (*models.Currency, error) {
	c.gets.Add(1)
	if c.release != nil {
		<-c.release
	}
	return c.InMemoryStore.Get(ctx, code)
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *countingStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	s.store = &countingStore{InMemoryStore: store.NewInMemory()}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, store.NewMemoryRateCache(time.Hour),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	_, err := s.service.Upsert(s.ctx, "EUR", models.UpdateCurrency{Name: "Euro", Symbol: "€", Rate: 0.85, Active: true})
	s.Require().NoError(err)
	_, err = s.service.Upsert(s.ctx, "GBP", models.UpdateCurrency{Name: "Pound Sterling", Symbol: "£", Rate: 0.8, Active: true})
	s.Require().NoError(err)
}

func (s *ServiceSuite) lookups(result string) float64 {
	return promtest.ToFloat64(s.metrics.CurrencyCacheLookups.WithLabelValues(result))
}

func (s *ServiceSuite) TestConvert() {
	got, err := s.service.Convert(s.ctx, 10, "USD", "EUR")
	s.Require().NoError(err)
	s.Equal(8.5, got)

	got, err = s.service.Convert(s.ctx, 100, "EUR", "GBP")
	s.Require().NoError(err)
	s.Equal(94.12, got)

	s.Equal(int32(3), s.store.gets.Load(), "USD, EUR and GBP each read once")
	s.Equal(3.0, s.lookups("miss"))
	s.Equal(1.0, s.lookups("hit"))
}

func (s *ServiceSuite) TestConvertRejectsUnknownAndInactive() {
	_, err := s.service.Convert(s.ctx, 1, "USD", "CHF")
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal(dErrors.CodeNotFound, de.Code)
	s.Equal("Currency CHF not found", de.Message)

	_, err = s.service.Upsert(s.ctx, "GBP", models.UpdateCurrency{Name: "Pound Sterling", Symbol: "£", Rate: 0.8, Active: false})
	s.Require().NoError(err)
	_, err = s.service.Convert(s.ctx, 1, "GBP", "USD")
	de, ok = dErrors.As(err)
	s.Require().True(ok)
	s.Equal(dErrors.CodeBusinessRule, de.Code)
	s.Equal("Currency GBP is not active", de.Message)
}

func (s *ServiceSuite) TestUpsertEvictsCachedRate() {
	_, err := s.service.Convert(s.ctx, 10, "USD", "EUR")
	s.Require().NoError(err)

	_, err = s.service.Upsert(s.ctx, "EUR", models.UpdateCurrency{Name: "Euro", Symbol: "€", Rate: 0.9, Active: true})
	s.Require().NoError(err)

	got, err := s.service.Convert(s.ctx, 10, "USD", "EUR")
	s.Require().NoError(err)
	s.Equal(9.0, got)
}

func (s *ServiceSuite) TestUpsertRules() {
	cases := []struct {
		code string
		in   models.UpdateCurrency
		want string
	}{
		{"ZZZ", models.UpdateCurrency{Name: "Nope", Symbol: "?", Rate: 1, Active: true}, "Unknown ISO 4217 currency ZZZ"},
		{"USD", models.UpdateCurrency{Name: "US Dollar", Symbol: "$", Rate: 1.1, Active: true}, "Base currency rate must be 1"},
		{"USD", models.UpdateCurrency{Name: "US Dollar", Symbol: "$", Rate: 1, Active: false}, "Base currency cannot be deactivated"},
	}
	for _, tc := range cases {
		_, err := s.service.Upsert(s.ctx, tc.code, tc.in)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(tc.want, de.Message)
	}
}

func (s *ServiceSuite) TestConcurrentMissesShareOneRead() {
	s.store.release = make(chan struct{})
	var wg sync.WaitGroup
	results := make([]float64, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.service.rate(s.ctx, "GBP")
		}()
	}
	s.Eventually(func() bool { return s.store.gets.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(s.store.release)
	wg.Wait()

	for i := range results {
		s.NoError(errs[i])
		s.Equal(0.8, results[i])
	}
	s.Equal(int32(1), s.store.gets.Load())
}

func (s *ServiceSuite) TestRefreshRatesWarmsCache() {
	s.Require().NoError(s.service.RefreshRates(s.ctx))
	_, err := s.service.Convert(s.ctx, 1, "EUR", "GBP")
	s.Require().NoError(err)
	s.Zero(s.store.gets.Load())
}

type failingCache struct{ *store.MemoryRateCache }

func (failingCache) Get(context.Context, string) (float64, bool, error) {
	return 0, false, errors.New("cache offline")
}

func (s *ServiceSuite) TestCacheFailureFallsBackToStore() {
	svc := New(s.store, failingCache{store.NewMemoryRateCache(time.Minute)},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	got, err := svc.Convert(s.ctx, 10, "USD", "EUR")
	s.Require().NoError(err)
	s.Equal(8.5, got)
}
