package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"storefront/internal/loyalty/models"
	"storefront/internal/loyalty/store"
	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// =============================================================================
// Loyalty Service Suite
// =============================================================================
// Justification: balances must never go negative and earning depends on the
// caller's tier, which only the service computes.

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	service *Service
	userID  id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.userID = id.NewUserID()
}

func (s *ServiceSuite) earn(amount float64) *models.Transaction {
	tx, err := s.service.Earn(s.ctx, s.userID, id.NewOrderID(), amount)
	s.Require().NoError(err)
	return tx
}

func (s *ServiceSuite) reward(cost int64, stock *int, active bool) *models.Reward {
	r, err := s.service.CreateReward(s.ctx, models.CreateReward{Name: "Reward", PointsCost: cost, Stock: stock, Active: active})
	s.Require().NoError(err)
	return r
}

func (s *ServiceSuite) TestAccountWithoutActivity() {
	summary, err := s.service.Account(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(0), summary.Account.Balance)
	s.Equal("Bronze", summary.Tier.Name)
	s.Require().NotNil(summary.NextTier)
	s.Equal(int64(1000), summary.PointsToNextTier)
}

func (s *ServiceSuite) TestEarnAppliesTierMultiplier() {
	s.Equal(int64(999), s.earn(999.99).Points, "bronze earns floor(amount)")
	s.Equal(int64(1), s.earn(1).Points)

	// 1000 lifetime points reaches silver (x1.25).
	s.Equal(int64(125), s.earn(100).Points)

	tx := s.earn(0.5)
	s.Equal(int64(0), tx.Points, "sub-point orders earn nothing")

	summary, err := s.service.Account(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(1125), summary.Account.Balance)
	s.Equal("Silver", summary.Tier.Name)
	s.Equal(int64(5000-1125), summary.PointsToNextTier)
	s.Equal(1125.0, testutil.ToFloat64(s.metrics.LoyaltyPointsEarned))

	history, err := s.service.History(s.ctx, s.userID, models.HistoryFilter{Limit: 10})
	s.Require().NoError(err)
	s.Equal(3, history.Total)
	s.Equal(int64(125), history.Items[0].Points, "newest first")
}

func (s *ServiceSuite) TestRedeem() {
	s.earn(600)

	s.Run("unknown reward", func() {
		_, err := s.service.Redeem(s.ctx, s.userID, id.NewObjectID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("inactive reward", func() {
		r := s.reward(100, nil, false)
		_, err := s.service.Redeem(s.ctx, s.userID, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("insufficient points", func() {
		r := s.reward(1000, nil, true)
		_, err := s.service.Redeem(s.ctx, s.userID, r.ID)
		s.Require().Error(err)
		de, _ := dErrors.As(err)
		s.Equal("Insufficient points", de.Message)
	})

	s.Run("stock runs out", func() {
		one := 1
		r := s.reward(100, &one, true)
		redemption, err := s.service.Redeem(s.ctx, s.userID, r.ID)
		s.Require().NoError(err)
		s.Equal(int64(500), redemption.Balance)

		_, err = s.service.Redeem(s.ctx, s.userID, r.ID)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal("Reward is out of stock", de.Message)
	})

	s.Equal(100.0, testutil.ToFloat64(s.metrics.LoyaltyPointsRedeemed))
}

func (s *ServiceSuite) TestConcurrentRedemptionsNeverOverdraw() {
	s.earn(500)
	r := s.reward(100, nil, true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.Redeem(s.ctx, s.userID, r.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(5, succeeded)
	summary, err := s.service.Account(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(0), summary.Account.Balance)
}

func (s *ServiceSuite) TestAdjust() {
	s.earn(50)

	_, err := s.service.Adjust(s.ctx, s.userID, -51, "chargeback")
	s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))

	tx, err := s.service.Adjust(s.ctx, s.userID, -50, "chargeback")
	s.Require().NoError(err)
	s.Equal(int64(0), tx.BalanceAfter)
	s.Equal(models.TransactionAdjust, tx.Type)

	summary, err := s.service.Account(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(50), summary.Account.LifetimePoints, "negative adjustments keep lifetime points")
}

func (s *ServiceSuite) TestCustomers() {
	s.earn(10)
	other := id.NewUserID()
	_, err := s.service.Earn(s.ctx, other, id.NewOrderID(), 2000)
	s.Require().NoError(err)

	customers, err := s.service.Customers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(customers, 2)
	s.Equal(other, customers[0].Account.UserID)
	s.Equal("Silver", customers[0].Tier.Name)
}

func (s *ServiceSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.service.Adjust(ctx, s.userID, 10, "late")
	s.Error(err)
}

// failingRedemptions stores everything except the redemption record.
type failingRedemptions struct {
	*store.InMemoryStore
}

func (failingRedemptions) SaveRedemption(context.Context, models.Redemption) error {
	return errors.New("disk full")
}

func (s *ServiceSuite) TestRedeemFailureKeepsStockAndBalance() {
	backing := failingRedemptions{InMemoryStore: store.NewInMemory()}
	svc := New(backing, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := svc.Earn(s.ctx, s.userID, id.NewOrderID(), 600)
	s.Require().NoError(err)

	two := 2
	reward, err := svc.CreateReward(s.ctx, models.CreateReward{Name: "Mug", PointsCost: 100, Stock: &two, Active: true})
	s.Require().NoError(err)

	_, err = svc.Redeem(s.ctx, s.userID, reward.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := backing.FindReward(s.ctx, reward.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Stock)
	s.Equal(2, *stored.Stock)

	account, err := backing.FindAccount(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(600), account.Balance)
}

func TestShardedTx_CallbackSeesDeadline(t *testing.T) {
	tx := NewShardedTx(store.NewInMemory())
	err := tx.RunInTx(context.Background(), "user-1", func(ctx context.Context, _ Store) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("callback context has no deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
