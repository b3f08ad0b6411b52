// Package service places and lists orders. Placing an order earns loyalty
// points for the customer and notifies them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	loyaltymodels "storefront/internal/loyalty/models"
	"storefront/internal/order/models"
	"storefront/internal/platform/metrics"
	vendormodels "storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Order, int, error)
}

// VendorLookup resolves the vendor an order is placed with. Errors are
// returned to the caller unchanged.
type VendorLookup interface {
	Get(ctx context.Context, vendorID id.VendorID) (*vendormodels.Vendor, error)
}

type PointsEarner interface {
	Earn(ctx context.Context, userID id.UserID, orderID id.OrderID, amount float64) (*loyaltymodels.Transaction, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID id.UserID, title, message string) error
}

type Service struct {
	store    Store
	vendors  VendorLookup
	points   PointsEarner
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

// WithPoints enables loyalty earning on placed orders.
func WithPoints(earner PointsEarner) Option {
	return func(s *Service) {
		s.points = earner
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func New(store Store, vendors VendorLookup, opts ...Option) *Service {
	s := &Service{store: store, vendors: vendors, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place stores an order with an active vendor. Loyalty and notification
// failures are logged; the order stands.
func (s *Service) Place(ctx context.Context, in models.PlaceOrder) (*models.Placed, error) {
	vendor, err := s.vendors.Get(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status != vendormodels.StatusActive {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "Orders can only be placed with active vendors")
	}

	order := &models.Order{
		ID:         id.NewOrderID(),
		CustomerID: in.CustomerID,
		VendorID:   in.VendorID,
		Total:      id.RoundMoney(in.Total),
		Currency:   in.Currency,
		Status:     models.StatusPlaced,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store order")
	}
	s.metrics.IncrementOrderPlaced(order.Currency)
	s.logger.InfoContext(ctx, "order placed",
		"request_id", requestcontext.RequestID(ctx),
		"order_id", order.ID.String(),
		"vendor_id", order.VendorID.String(),
	)

	placed := &models.Placed{Order: order}
	if s.points != nil {
		tx, err := s.points.Earn(ctx, order.CustomerID, order.ID, order.Total)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to earn loyalty points",
				"request_id", requestcontext.RequestID(ctx),
				"order_id", order.ID.String(),
				"error", err,
			)
		} else {
			placed.PointsEarned = tx.Points
		}
	}
	if s.notifier != nil {
		msg := fmt.Sprintf("Your order of %.2f %s has been placed.", order.Total, order.Currency)
		if placed.PointsEarned > 0 {
			msg += fmt.Sprintf(" You earned %d points.", placed.PointsEarned)
		}
		if err := s.notifier.Notify(ctx, order.CustomerID, "Order placed", msg); err != nil {
			s.logger.WarnContext(ctx, "failed to notify customer",
				"request_id", requestcontext.RequestID(ctx),
				"order_id", order.ID.String(),
				"error", err,
			)
		}
	}
	return placed, nil
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.OrderPage, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return &models.OrderPage{Items: items, Total: total}, nil
}

// Export returns every order created within the range, newest first.
func (s *Service) Export(ctx context.Context, from, to *time.Time) ([]*models.Order, error) {
	items, _, err := s.store.List(ctx, models.ListFilter{From: from, To: to})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load orders for export")
	}
	return items, nil
}
