// Package service converts amounts between currencies. Rates are read
// through a cache; concurrent misses for the same code share one store read.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"

	"storefront/internal/currency/models"
	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type Store interface {
	Get(ctx context.Context, code string) (*models.Currency, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Currency, error)
	Upsert(ctx context.Context, c *models.Currency) error
}

// RateCache holds rates of active currencies only.
type RateCache interface {
	Get(ctx context.Context, code string) (float64, bool, error)
	Put(ctx context.Context, rates map[string]float64) error
	Delete(ctx context.Context, code string) error
	Clear(ctx context.Context) error
}

type Service struct {
	store   Store
	cache   RateCache
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, cache RateCache, opts ...Option) *Service {
	s := &Service{store: store, cache: cache, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Currency, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list currencies")
	}
	return out, nil
}

// Convert returns amount in from expressed in to, rounded to cents.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	fromRate, err := s.rate(ctx, from)
	if err != nil {
		return 0, err
	}
	toRate, err := s.rate(ctx, to)
	if err != nil {
		return 0, err
	}
	return id.RoundMoney(amount / fromRate * toRate), nil
}

func (s *Service) rate(ctx context.Context, code string) (float64, error) {
	rate, ok, err := s.cache.Get(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "currency cache read failed",
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err,
		)
	}
	s.metrics.IncrementCacheLookup(ok)
	if ok {
		return rate, nil
	}

	v, err, _ := s.group.Do(code, func() (any, error) {
		c, err := s.store.Get(ctx, code)
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0.0, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Currency %s not found", code))
		}
		if err != nil {
			return 0.0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load currency")
		}
		if !c.Active {
			return 0.0, dErrors.New(dErrors.CodeBusinessRule, fmt.Sprintf("Currency %s is not active", code))
		}
		if err := s.cache.Put(ctx, map[string]float64{code: c.Rate}); err != nil {
			s.logger.WarnContext(ctx, "currency cache write failed", "code", code, "error", err)
		}
		return c.Rate, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Upsert creates or replaces a currency. The base currency keeps a rate of 1
// and cannot be deactivated.
func (s *Service) Upsert(ctx context.Context, code string, in models.UpdateCurrency) (*models.Currency, error) {
	if _, err := currency.ParseISO(code); err != nil {
		return nil, dErrors.New(dErrors.CodeBusinessRule, fmt.Sprintf("Unknown ISO 4217 currency %s", code))
	}
	if code == models.BaseCurrency {
		if in.Rate != 1 {
			return nil, dErrors.New(dErrors.CodeBusinessRule, "Base currency rate must be 1")
		}
		if !in.Active {
			return nil, dErrors.New(dErrors.CodeBusinessRule, "Base currency cannot be deactivated")
		}
	}
	c := &models.Currency{
		Code:      code,
		Name:      in.Name,
		Symbol:    in.Symbol,
		Rate:      in.Rate,
		Active:    in.Active,
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save currency")
	}
	if err := s.cache.Delete(ctx, code); err != nil {
		s.logger.WarnContext(ctx, "currency cache evict failed", "code", code, "error", err)
	}
	s.logger.InfoContext(ctx, "currency updated",
		"request_id", requestcontext.RequestID(ctx),
		"code", code,
		"rate", c.Rate,
		"active", c.Active,
	)
	return c, nil
}

// RefreshRates drops every cached rate and reloads the active ones.
func (s *Service) RefreshRates(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear rate cache: %w", err)
	}
	active := true
	currencies, err := s.store.List(ctx, models.ListFilter{Active: &active})
	if err != nil {
		return fmt.Errorf("list active currencies: %w", err)
	}
	rates := make(map[string]float64, len(currencies))
	for _, c := range currencies {
		rates[c.Code] = c.Rate
	}
	if err := s.cache.Put(ctx, rates); err != nil {
		return fmt.Errorf("warm rate cache: %w", err)
	}
	s.logger.InfoContext(ctx, "currency rates refreshed", "count", len(rates))
	return nil
}
