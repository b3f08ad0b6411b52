package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/abtest/models"
	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// Store persists tests. RecordEvent must apply the increment atomically.
type Store interface {
	Create(ctx context.Context, test *models.Test) error
	FindByID(ctx context.Context, testID id.ObjectID) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Test, int, error)
	RecordEvent(ctx context.Context, testID id.ObjectID, event models.TrackEvent) (*models.Test, error)
}

// Service manages the A/B test lifecycle, event tracking and results.
type Service struct {
	store   Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.TestPage, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list A/B tests")
	}
	return &models.TestPage{Items: items, Total: total}, nil
}

func (s *Service) Create(ctx context.Context, in models.CreateTest) (*models.Test, error) {
	now := requestcontext.Now(ctx)
	test := &models.Test{
		ID:          id.NewObjectIDAt(now),
		Name:        in.Name,
		Description: in.Description,
		Status:      models.StatusDraft,
		Goal:        in.Goal,
		Variants:    append([]models.Variant(nil), in.Variants...),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, test); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create A/B test")
	}
	s.logger.InfoContext(ctx, "ab test created",
		"request_id", requestcontext.RequestID(ctx),
		"test_id", test.ID.String(),
		"variants", len(test.Variants),
	)
	return test, nil
}

func (s *Service) Get(ctx context.Context, testID id.ObjectID) (*models.Test, error) {
	test, err := s.store.FindByID(ctx, testID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load A/B test")
	}
	return test, nil
}

func (s *Service) Start(ctx context.Context, testID id.ObjectID) (*models.Test, error) {
	return s.transition(ctx, testID, models.StatusRunning)
}

func (s *Service) Pause(ctx context.Context, testID id.ObjectID) (*models.Test, error) {
	return s.transition(ctx, testID, models.StatusPaused)
}

// Complete ends the test and records the best performing variant as winner.
func (s *Service) Complete(ctx context.Context, testID id.ObjectID) (*models.Test, error) {
	return s.transition(ctx, testID, models.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, testID id.ObjectID, next models.Status) (*models.Test, error) {
	test, err := s.store.FindByID(ctx, testID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load A/B test")
	}
	if !test.Status.CanTransitionTo(next) {
		return nil, dErrors.New(dErrors.CodeBusinessRule,
			fmt.Sprintf("Cannot move A/B test from %s to %s", test.Status, next))
	}

	now := requestcontext.Now(ctx)
	prev := test.Status
	test.Status = next
	test.UpdatedAt = now
	switch next {
	case models.StatusRunning:
		if test.StartedAt == nil {
			test.StartedAt = &now
		}
	case models.StatusCompleted:
		test.CompletedAt = &now
		test.Winner = winnerCandidate(test)
	}

	if err := s.store.Update(ctx, test); err != nil {
		return nil, translateStoreErr(err, "failed to update A/B test")
	}
	s.logger.InfoContext(ctx, "ab test status changed",
		"request_id", requestcontext.RequestID(ctx),
		"test_id", test.ID.String(),
		"from", string(prev),
		"to", string(next),
	)
	return test, nil
}

func (s *Service) Results(ctx context.Context, testID id.ObjectID) (*models.Results, error) {
	test, err := s.store.FindByID(ctx, testID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load A/B test")
	}
	var total int64
	for _, v := range test.Variants {
		total += v.Impressions
	}
	return &models.Results{
		TestID:               test.ID.String(),
		Name:                 test.Name,
		Status:               test.Status,
		Goal:                 test.Goal,
		Variants:             computeResults(test),
		WinnerCandidate:      winnerCandidate(test),
		SampleSizeSufficient: sampleSizeSufficient(test),
		TotalImpressions:     total,
		GeneratedAt:          requestcontext.Now(ctx),
	}, nil
}

// Track records one event against a running test.
func (s *Service) Track(ctx context.Context, testID id.ObjectID, event models.TrackEvent) (*models.Variant, error) {
	test, err := s.store.FindByID(ctx, testID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load A/B test")
	}
	if test.Status != models.StatusRunning {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "Events can only be tracked for running A/B tests")
	}
	if _, ok := test.Variant(event.VariantKey); !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Unknown variant: "+event.VariantKey)
	}

	updated, err := s.store.RecordEvent(ctx, testID, event)
	if err != nil {
		return nil, translateStoreErr(err, "failed to record A/B test event")
	}
	s.metrics.IncrementABEvent(string(event.Type))

	variant, _ := updated.Variant(event.VariantKey)
	return variant, nil
}

// Assign returns the caller's deterministic variant for a running test.
func (s *Service) Assign(ctx context.Context, testID id.ObjectID, userID id.UserID) (*models.Assignment, error) {
	test, err := s.store.FindByID(ctx, testID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load A/B test")
	}
	if test.Status != models.StatusRunning {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "Variants are only assigned for running A/B tests")
	}
	bucket := bucketFor(test.ID, userID)
	return &models.Assignment{
		TestID:     test.ID,
		UserID:     userID,
		VariantKey: variantForBucket(test.Variants, bucket),
		Bucket:     bucket,
	}, nil
}

func translateStoreErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "A/B test not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
