package service

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/tax/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, rate *models.TaxRate) error
	Delete(ctx context.Context, rateID id.ObjectID) error
	ListByCountry(ctx context.Context, country string) ([]*models.TaxRate, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate applies the most specific active rate for the location and
// category. Ties go to the rate listed first.
func (s *Service) Calculate(ctx context.Context, in models.CalculateInput) (*models.Calculation, error) {
	rate, err := s.match(ctx, in.Lookup)
	if err != nil {
		return nil, err
	}
	return Apply(in.Amount, rate, in.Inclusive), nil
}

func (s *Service) match(ctx context.Context, l models.Lookup) (*models.TaxRate, error) {
	rates, err := s.store.ListByCountry(ctx, l.Country)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tax rates")
	}
	var best *models.TaxRate
	for _, r := range rates {
		if !r.Applies(l) {
			continue
		}
		if best == nil || r.Specificity() > best.Specificity() {
			best = r
		}
	}
	if best == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "No tax rate found for "+l.Country)
	}
	return best, nil
}

// Apply computes the split for a single rate.
func Apply(amount float64, rate *models.TaxRate, inclusive bool) *models.Calculation {
	pct := rate.Rate / 100
	c := &models.Calculation{Amount: amount, Inclusive: inclusive, Rate: rate}
	if inclusive {
		net := amount / (1 + pct)
		c.Net = id.RoundMoney(net)
		c.Tax = id.RoundMoney(amount - net)
		c.Total = id.RoundMoney(amount)
		return c
	}
	tax := amount * pct
	c.Net = id.RoundMoney(amount)
	c.Tax = id.RoundMoney(tax)
	c.Total = id.RoundMoney(amount + tax)
	return c
}

// Rates lists rates, optionally for one country.
func (s *Service) Rates(ctx context.Context, country string, offset, limit int) (*models.RatePage, error) {
	rates, err := s.store.ListByCountry(ctx, country)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tax rates")
	}
	total := len(rates)
	start := min(max(offset, 0), total)
	end := min(start+max(limit, 0), total)
	return &models.RatePage{Items: rates[start:end], Total: total}, nil
}

func (s *Service) CreateRate(ctx context.Context, in models.CreateRate) (*models.TaxRate, error) {
	now := requestcontext.Now(ctx)
	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}
	rate := &models.TaxRate{
		ID:        id.NewObjectIDAt(now),
		Country:   in.Country,
		Region:    in.Region,
		Category:  category,
		Rate:      in.Rate,
		Name:      in.Name,
		Active:    in.Active,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, rate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tax rate")
	}
	s.logger.InfoContext(ctx, "tax rate created",
		"request_id", requestcontext.RequestID(ctx),
		"rate_id", rate.ID.String(),
		"country", rate.Country,
	)
	return rate, nil
}

func (s *Service) DeleteRate(ctx context.Context, rateID id.ObjectID) error {
	if err := s.store.Delete(ctx, rateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Tax rate not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete tax rate")
	}
	s.logger.InfoContext(ctx, "tax rate deleted",
		"request_id", requestcontext.RequestID(ctx),
		"rate_id", rateID.String(),
	)
	return nil
}
