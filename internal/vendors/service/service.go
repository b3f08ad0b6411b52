// Package service manages vendors, their payouts and sales metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// Store persists vendors and payouts. Create returns sentinel.ErrConflict
// when the email is already registered.
type Store interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	UpdateStatus(ctx context.Context, vendorID id.VendorID, status models.Status, at time.Time) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, int, error)
	CreatePayout(ctx context.Context, payout *models.Payout) error
	ListPayouts(ctx context.Context, vendorID id.VendorID, offset, limit int) ([]*models.Payout, int, error)
}

// SalesSource aggregates orders for vendor metrics.
type SalesSource interface {
	VendorTotals(ctx context.Context, vendorID id.VendorID, from, to *time.Time) (models.SalesTotals, error)
}

type Service struct {
	store  Store
	sales  SalesSource
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, sales SalesSource, opts ...Option) *Service {
	s := &Service{store: store, sales: sales, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.VendorPage, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vendors")
	}
	return &models.VendorPage{Items: items, Total: total}, nil
}

// Create registers a vendor in pending status.
func (s *Service) Create(ctx context.Context, in models.CreateVendor) (*models.Vendor, error) {
	now := requestcontext.Now(ctx)
	vendor := &models.Vendor{
		ID:             id.NewVendorID(),
		Name:           in.Name,
		Email:          in.Email,
		Status:         models.StatusPending,
		CommissionRate: in.CommissionRate,
		Country:        in.Country,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, vendor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "Vendor email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create vendor")
	}
	s.logger.InfoContext(ctx, "vendor created",
		"request_id", requestcontext.RequestID(ctx),
		"vendor_id", vendor.ID.String(),
	)
	return vendor, nil
}

func (s *Service) Get(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	vendor, err := s.store.FindByID(ctx, vendorID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load vendor")
	}
	return vendor, nil
}

func (s *Service) UpdateStatus(ctx context.Context, vendorID id.VendorID, status models.Status) (*models.Vendor, error) {
	vendor, err := s.Get(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.Status.CanTransitionTo(status) {
		return nil, dErrors.New(dErrors.CodeBusinessRule,
			"Cannot change vendor status from "+string(vendor.Status)+" to "+string(status))
	}
	if vendor.Status == status {
		return vendor, nil
	}
	now := requestcontext.Now(ctx)
	if err := s.store.UpdateStatus(ctx, vendorID, status, now); err != nil {
		return nil, translateStoreErr(err, "failed to update vendor status")
	}
	s.logger.InfoContext(ctx, "vendor status changed",
		"request_id", requestcontext.RequestID(ctx),
		"vendor_id", vendorID.String(),
		"from", string(vendor.Status),
		"to", string(status),
	)
	vendor.Status = status
	vendor.UpdatedAt = now
	return vendor, nil
}

// Metrics computes sales, commission and earnings from orders.
func (s *Service) Metrics(ctx context.Context, vendorID id.VendorID, from, to *time.Time) (*models.Metrics, error) {
	vendor, err := s.Get(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	totals, err := s.sales.VendorTotals(ctx, vendorID, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate vendor orders")
	}
	commission := totals.Gross * vendor.CommissionRate
	m := &models.Metrics{
		VendorID:       vendorID,
		From:           from,
		To:             to,
		TotalOrders:    totals.Orders,
		GrossRevenue:   id.RoundMoney(totals.Gross),
		CommissionRate: vendor.CommissionRate,
		Commission:     id.RoundMoney(commission),
		NetEarnings:    id.RoundMoney(totals.Gross - commission),
	}
	if totals.Orders > 0 {
		m.AverageOrderValue = id.RoundMoney(totals.Gross / float64(totals.Orders))
	}
	return m, nil
}

// CreatePayout records a pending payout for an active vendor.
func (s *Service) CreatePayout(ctx context.Context, in models.CreatePayout) (*models.Payout, error) {
	vendor, err := s.Get(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status != models.StatusActive {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "Payouts can only be created for active vendors")
	}
	payout := &models.Payout{
		ID:          id.NewPayoutID(),
		VendorID:    in.VendorID,
		Amount:      id.RoundMoney(in.Amount),
		Currency:    in.Currency,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Status:      models.PayoutPending,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.CreatePayout(ctx, payout); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create payout")
	}
	s.logger.InfoContext(ctx, "payout created",
		"request_id", requestcontext.RequestID(ctx),
		"vendor_id", in.VendorID.String(),
		"payout_id", payout.ID.String(),
	)
	return payout, nil
}

func (s *Service) Payouts(ctx context.Context, vendorID id.VendorID, offset, limit int) (*models.PayoutPage, error) {
	if _, err := s.Get(ctx, vendorID); err != nil {
		return nil, err
	}
	items, total, err := s.store.ListPayouts(ctx, vendorID, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payouts")
	}
	return &models.PayoutPage{Items: items, Total: total}, nil
}

func translateStoreErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Vendor not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
