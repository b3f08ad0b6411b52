package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	loyaltyservice "storefront/internal/loyalty/service"
	loyaltystore "storefront/internal/loyalty/store"
	"storefront/internal/order/models"
	"storefront/internal/order/store"
	vendormodels "storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// =============================================================================
// Order Service Suite
// =============================================================================
// Justification: placing an order crosses into loyalty and notifications;
// those side effects must never undo a stored order.

type fakeVendors map[id.VendorID]vendormodels.Status

func (f fakeVendors) Get(_ context.Context, vendorID id.VendorID) (*vendormodels.Vendor, error) {
	status, ok := f[vendorID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "Vendor not found")
	}
	return &vendormodels.Vendor{ID: vendorID, Status: status}, nil
}

type recordedNote struct {
	userID         id.UserID
	title, message string
}

type fakeNotifier struct {
	sent []recordedNote
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, userID id.UserID, title, message string) error {
	f.sent = append(f.sent, recordedNote{userID, title, message})
	return f.err
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemoryStore
	loyalty  *loyaltyservice.Service
	notifier *fakeNotifier
	service  *Service
	active   id.VendorID
	pending  id.VendorID
	customer id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.loyalty = loyaltyservice.New(loyaltystore.NewInMemory(), loyaltyservice.WithLogger(logger))
	s.notifier = &fakeNotifier{}
	s.active, s.pending = id.NewVendorID(), id.NewVendorID()
	s.customer = id.NewUserID()
	vendors := fakeVendors{s.active: vendormodels.StatusActive, s.pending: vendormodels.StatusPending}
	s.service = New(s.store, vendors,
		WithLogger(logger),
		WithPoints(s.loyalty),
		WithNotifier(s.notifier),
	)
}

func (s *ServiceSuite) TestPlaceEarnsPointsAndNotifies() {
	placed, err := s.service.Place(s.ctx, models.PlaceOrder{CustomerID: s.customer, VendorID: s.active, Total: 120.456, Currency: "USD"})
	s.Require().NoError(err)
	s.Equal(120.46, placed.Order.Total)
	s.Equal(models.StatusPlaced, placed.Order.Status)
	s.Equal(int64(120), placed.PointsEarned)

	summary, err := s.loyalty.Account(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Equal(int64(120), summary.Account.Balance)

	s.Require().Len(s.notifier.sent, 1)
	s.Equal(s.customer, s.notifier.sent[0].userID)
	s.Equal("Your order of 120.46 USD has been placed. You earned 120 points.", s.notifier.sent[0].message)
}

func (s *ServiceSuite) TestPlaceRejectsUnknownAndInactiveVendors() {
	_, err := s.service.Place(s.ctx, models.PlaceOrder{CustomerID: s.customer, VendorID: id.NewVendorID(), Total: 10, Currency: "USD"})
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal(dErrors.CodeNotFound, de.Code)

	_, err = s.service.Place(s.ctx, models.PlaceOrder{CustomerID: s.customer, VendorID: s.pending, Total: 10, Currency: "USD"})
	de, ok = dErrors.As(err)
	s.Require().True(ok)
	s.Equal(dErrors.CodeBusinessRule, de.Code)

	page, err := s.service.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Zero(page.Total)
}

func (s *ServiceSuite) TestNotifierFailureKeepsOrder() {
	s.notifier.err = errors.New("broker down")
	placed, err := s.service.Place(s.ctx, models.PlaceOrder{CustomerID: s.customer, VendorID: s.active, Total: 0.5, Currency: "USD"})
	s.Require().NoError(err)
	s.Zero(placed.PointsEarned)
	s.Equal("Your order of 0.50 USD has been placed.", s.notifier.sent[0].message)

	orders, err := s.service.Export(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Len(orders, 1)
}

func (s *ServiceSuite) TestWithoutOptionalCollaborators() {
	svc := New(s.store, fakeVendors{s.active: vendormodels.StatusActive})
	placed, err := svc.Place(s.ctx, models.PlaceOrder{CustomerID: s.customer, VendorID: s.active, Total: 99, Currency: "GBP"})
	s.Require().NoError(err)
	s.Zero(placed.PointsEarned)
}
