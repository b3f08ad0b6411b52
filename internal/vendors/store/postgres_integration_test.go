//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/vendors/models"
	"storefront/internal/vendors/store"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payouts", "vendors"))
}

func (s *PostgresStoreSuite) vendor(name, email string) *models.Vendor {
	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	return &models.Vendor{
		ID: id.NewVendorID(), Name: name, Email: email, Status: models.StatusPending,
		CommissionRate: 0.2, Country: "NL", CreatedAt: at, UpdatedAt: at,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	v := s.vendor("Acme", "ops@acme.test")
	s.Require().NoError(s.store.Create(ctx, v))

	got, err := s.store.FindByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.Email, got.Email)
	s.Equal(v.CreatedAt, got.CreatedAt.UTC())

	err = s.store.Create(ctx, s.vendor("Copy", "OPS@acme.test"))
	s.True(errors.Is(err, sentinel.ErrConflict))

	_, err = s.store.FindByID(ctx, id.NewVendorID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListFiltersAndEscapesLike() {
	ctx := context.Background()
	a := s.vendor("Alpha 100%", "alpha@shop.test")
	b := s.vendor("Beta", "beta@shop.test")
	c := s.vendor("Alphabet", "c@shop.test")
	for _, v := range []*models.Vendor{a, b, c} {
		s.Require().NoError(s.store.Create(ctx, v))
	}
	s.Require().NoError(s.store.UpdateStatus(ctx, b.ID, models.StatusActive, time.Now()))

	items, total, err := s.store.List(ctx, models.ListFilter{Query: "alpha", Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal("Alpha 100%", items[0].Name)

	_, total, err = s.store.List(ctx, models.ListFilter{Query: "100%", Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)

	items, total, err = s.store.List(ctx, models.ListFilter{Status: models.StatusActive, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(b.ID, items[0].ID)
}

func (s *PostgresStoreSuite) TestPayouts() {
	ctx := context.Background()
	v := s.vendor("Acme", "pay@acme.test")
	s.Require().NoError(s.store.Create(ctx, v))

	for i := range 3 {
		s.Require().NoError(s.store.CreatePayout(ctx, &models.Payout{
			ID: id.NewPayoutID(), VendorID: v.ID, Amount: 10.5 * float64(i+1), Currency: "EUR",
			PeriodStart: time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2026, time.Month(i+1), 28, 0, 0, 0, 0, time.UTC),
			Status:      models.PayoutPending,
			CreatedAt:   time.Date(2026, time.Month(i+2), 1, 0, 0, 0, 0, time.UTC),
		}))
	}

	items, total, err := s.store.ListPayouts(ctx, v.ID, 0, 2)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(items, 2)
	s.Equal(31.5, items[0].Amount)
}
