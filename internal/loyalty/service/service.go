// Package service implements the loyalty program: balances, tiers, earning,
// adjustments and reward redemption.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"storefront/internal/loyalty/models"
	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// Store persists loyalty data. ReserveReward must decrement stock atomically
// and return sentinel.ErrInvalidState when none is left; ReleaseReward puts
// one unit back.
type Store interface {
	FindAccount(ctx context.Context, userID id.UserID) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	AppendTransaction(ctx context.Context, tx models.Transaction) error
	ListTransactions(ctx context.Context, userID id.UserID, filter models.HistoryFilter) ([]models.Transaction, int, error)
	CreateReward(ctx context.Context, reward *models.Reward) error
	FindReward(ctx context.Context, rewardID id.ObjectID) (*models.Reward, error)
	ListRewards(ctx context.Context, activeOnly bool, offset, limit int) ([]models.Reward, int, error)
	ReserveReward(ctx context.Context, rewardID id.ObjectID) error
	ReleaseReward(ctx context.Context, rewardID id.ObjectID) error
	SaveRedemption(ctx context.Context, r models.Redemption) error
}

type Service struct {
	store   Store
	tx      StoreTx
	program models.Program
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

// WithProgram replaces the default program.
func WithProgram(p models.Program) Option {
	return func(s *Service) {
		s.program = p
	}
}

// WithTx sets the transactional boundary. Defaults to a sharded lock over store.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, program: models.DefaultProgram(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(store)
	}
	return s
}

func (s *Service) Program(_ context.Context) models.Program {
	return s.program
}

// Account returns the caller's balance and tier. Users without activity get
// an empty account at the lowest tier.
func (s *Service) Account(ctx context.Context, userID id.UserID) (*models.AccountSummary, error) {
	account, err := s.loadAccount(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	summary := s.summarize(*account)
	return &summary, nil
}

func (s *Service) History(ctx context.Context, userID id.UserID, filter models.HistoryFilter) (*models.TransactionPage, error) {
	items, total, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load points history")
	}
	return &models.TransactionPage{Items: items, Total: total}, nil
}

// Rewards lists active rewards.
func (s *Service) Rewards(ctx context.Context, offset, limit int) (*models.RewardPage, error) {
	items, total, err := s.store.ListRewards(ctx, true, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rewards")
	}
	return &models.RewardPage{Items: items, Total: total}, nil
}

func (s *Service) CreateReward(ctx context.Context, in models.CreateReward) (*models.Reward, error) {
	now := requestcontext.Now(ctx)
	reward := &models.Reward{
		ID:          id.NewObjectIDAt(now),
		Name:        in.Name,
		Description: in.Description,
		PointsCost:  in.PointsCost,
		Stock:       in.Stock,
		Active:      in.Active,
		CreatedAt:   now,
	}
	if err := s.store.CreateReward(ctx, reward); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reward")
	}
	return reward, nil
}

// Redeem spends points on a reward.
func (s *Service) Redeem(ctx context.Context, userID id.UserID, rewardID id.ObjectID) (*models.Redemption, error) {
	now := requestcontext.Now(ctx)
	var redemption models.Redemption
	err := s.tx.RunInTx(ctx, userID.String(), func(ctx context.Context, store Store) error {
		reward, err := store.FindReward(ctx, rewardID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Reward not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reward")
		}
		if !reward.Active {
			return dErrors.New(dErrors.CodeBusinessRule, "Reward is not available")
		}
		account, err := s.loadAccount(ctx, store, userID)
		if err != nil {
			return err
		}
		if account.Balance < reward.PointsCost {
			return dErrors.New(dErrors.CodeBusinessRule, "Insufficient points")
		}
		if err := store.ReserveReward(ctx, rewardID); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeBusinessRule, "Reward is out of stock")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve reward")
		}
		before := *account
		committed := false
		defer func() {
			if !committed {
				s.undoRedemption(ctx, store, rewardID, &before)
			}
		}()

		rid := reward.ID
		tx, err := s.apply(ctx, store, account, -reward.PointsCost, models.Transaction{
			Type:        models.TransactionRedeem,
			Description: "Redeemed " + reward.Name,
			RewardID:    &rid,
		})
		if err != nil {
			return err
		}
		redemption = models.Redemption{
			ID:          id.NewObjectIDAt(now),
			UserID:      userID,
			RewardID:    reward.ID,
			RewardName:  reward.Name,
			PointsSpent: reward.PointsCost,
			Balance:     tx.BalanceAfter,
			CreatedAt:   now,
		}
		if err := store.SaveRedemption(ctx, redemption); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save redemption")
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddPointsRedeemed(int(redemption.PointsSpent))
	s.logger.InfoContext(ctx, "reward redeemed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"reward_id", rewardID.String(),
		"points", redemption.PointsSpent,
	)
	return &redemption, nil
}

// undoRedemption puts reserved stock back and restores the balance after a
// failed redemption. The caller's error is what the client sees, so failures
// here are logged.
func (s *Service) undoRedemption(ctx context.Context, store Store, rewardID id.ObjectID, before *models.Account) {
	ctx = context.WithoutCancel(ctx)
	if err := store.ReleaseReward(ctx, rewardID); err != nil {
		s.logger.ErrorContext(ctx, "failed to release reward stock",
			"request_id", requestcontext.RequestID(ctx),
			"reward_id", rewardID.String(),
			"error", err,
		)
	}
	if err := store.SaveAccount(ctx, before); err != nil {
		s.logger.ErrorContext(ctx, "failed to restore loyalty balance",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", before.UserID.String(),
			"error", err,
		)
	}
}

// Adjust applies an admin correction. The balance may not go negative.
func (s *Service) Adjust(ctx context.Context, userID id.UserID, points int64, reason string) (*models.Transaction, error) {
	var out models.Transaction
	err := s.tx.RunInTx(ctx, userID.String(), func(ctx context.Context, store Store) error {
		account, err := s.loadAccount(ctx, store, userID)
		if err != nil {
			return err
		}
		if account.Balance+points < 0 {
			return dErrors.New(dErrors.CodeBusinessRule, "Adjustment would make the balance negative")
		}
		tx, err := s.apply(ctx, store, account, points, models.Transaction{
			Type:        models.TransactionAdjust,
			Description: reason,
		})
		if err != nil {
			return err
		}
		out = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "points adjusted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"points", points,
	)
	return &out, nil
}

// Earn credits floor(amount x pointsPerUnit x tier multiplier) for an order.
// Orders worth less than one point record nothing.
func (s *Service) Earn(ctx context.Context, userID id.UserID, orderID id.OrderID, amount float64) (*models.Transaction, error) {
	var out models.Transaction
	err := s.tx.RunInTx(ctx, userID.String(), func(ctx context.Context, store Store) error {
		account, err := s.loadAccount(ctx, store, userID)
		if err != nil {
			return err
		}
		tier, _ := s.program.TierFor(account.LifetimePoints)
		points := int64(math.Floor(amount * s.program.PointsPerUnit * tier.Multiplier))
		if points <= 0 {
			out = models.Transaction{UserID: userID, Type: models.TransactionEarn, BalanceAfter: account.Balance}
			return nil
		}
		oid := orderID
		tx, err := s.apply(ctx, store, account, points, models.Transaction{
			Type:        models.TransactionEarn,
			Description: fmt.Sprintf("Order %s (%s tier)", orderID.String(), tier.Name),
			OrderID:     &oid,
		})
		if err != nil {
			return err
		}
		out = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddPointsEarned(int(out.Points))
	return &out, nil
}

// Customers returns every account with its tier, for exports.
func (s *Service) Customers(ctx context.Context) ([]models.AccountSummary, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list loyalty accounts")
	}
	out := make([]models.AccountSummary, len(accounts))
	for i, a := range accounts {
		out[i] = s.summarize(a)
	}
	return out, nil
}

// apply changes the balance and appends the transaction. Positive changes
// also raise lifetime points.
func (s *Service) apply(ctx context.Context, store Store, account *models.Account, delta int64, tx models.Transaction) (*models.Transaction, error) {
	now := requestcontext.Now(ctx)
	account.Balance += delta
	if delta > 0 {
		account.LifetimePoints += delta
	}
	account.UpdatedAt = now
	if err := store.SaveAccount(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save loyalty account")
	}
	tx.ID = id.NewObjectIDAt(now)
	tx.UserID = account.UserID
	tx.Points = delta
	tx.BalanceAfter = account.Balance
	tx.CreatedAt = now
	if err := store.AppendTransaction(ctx, tx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record points transaction")
	}
	return &tx, nil
}

func (s *Service) loadAccount(ctx context.Context, store Store, userID id.UserID) (*models.Account, error) {
	account, err := store.FindAccount(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		now := requestcontext.Now(ctx)
		return &models.Account{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loyalty account")
	}
	return account, nil
}

func (s *Service) summarize(a models.Account) models.AccountSummary {
	tier, next := s.program.TierFor(a.LifetimePoints)
	summary := models.AccountSummary{Account: a, Tier: tier, NextTier: next}
	if next != nil {
		summary.PointsToNextTier = next.MinPoints - a.LifetimePoints
	}
	return summary
}
