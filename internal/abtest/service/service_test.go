package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"storefront/internal/abtest/models"
	"storefront/internal/abtest/store"
	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// =============================================================================
// A/B Test Service Suite
// =============================================================================
// Justification: the lifecycle state machine, event counting and the
// statistics are domain rules that no handler test exercises.

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) create(goal models.Goal) *models.Test {
	test, err := s.service.Create(s.ctx, models.CreateTest{
		Name: "Free shipping banner",
		Goal: goal,
		Variants: []models.Variant{
			{Key: "control", Name: "Control", Weight: 50},
			{Key: "banner", Name: "Banner", Weight: 50},
		},
	})
	s.Require().NoError(err)
	return test
}

func (s *ServiceSuite) track(testID id.ObjectID, key string, typ models.EventType, n int, amount float64) {
	for range n {
		_, err := s.service.Track(s.ctx, testID, models.TrackEvent{VariantKey: key, Type: typ, Amount: amount})
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestLifecycle() {
	test := s.create(models.GoalConversion)
	s.Equal(models.StatusDraft, test.Status)
	s.True(id.IsObjectID(test.ID.String()))

	s.Run("draft cannot pause", func() {
		_, err := s.service.Pause(s.ctx, test.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("draft -> running -> paused -> running -> completed", func() {
		running, err := s.service.Start(s.ctx, test.ID)
		s.Require().NoError(err)
		s.Require().NotNil(running.StartedAt)

		_, err = s.service.Pause(s.ctx, test.ID)
		s.Require().NoError(err)
		_, err = s.service.Start(s.ctx, test.ID)
		s.Require().NoError(err)

		s.track(test.ID, "control", models.EventImpression, 10, 0)
		s.track(test.ID, "banner", models.EventImpression, 10, 0)
		s.track(test.ID, "banner", models.EventConversion, 3, 0)

		done, err := s.service.Complete(s.ctx, test.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, done.Status)
		s.Equal("banner", done.Winner)
		s.NotNil(done.CompletedAt)
	})

	s.Run("completed is terminal", func() {
		_, err := s.service.Start(s.ctx, test.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})
}

func (s *ServiceSuite) TestTrack() {
	test := s.create(models.GoalRevenue)

	s.Run("not running is a business error", func() {
		_, err := s.service.Track(s.ctx, test.ID, models.TrackEvent{VariantKey: "control", Type: models.EventImpression})
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	_, err := s.service.Start(s.ctx, test.ID)
	s.Require().NoError(err)

	s.Run("unknown variant is a validation error", func() {
		_, err := s.service.Track(s.ctx, test.ID, models.TrackEvent{VariantKey: "nope", Type: models.EventImpression})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("revenue adds amount and a conversion", func() {
		v, err := s.service.Track(s.ctx, test.ID, models.TrackEvent{VariantKey: "banner", Type: models.EventRevenue, Amount: 42.5})
		s.Require().NoError(err)
		s.Equal(int64(1), v.Conversions)
		s.Equal(42.5, v.Revenue)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ABEventsTracked.WithLabelValues("revenue")))
	})

	s.Run("missing test is not found", func() {
		_, err := s.service.Track(s.ctx, id.NewObjectID(), models.TrackEvent{VariantKey: "control", Type: models.EventImpression})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestResults() {
	test := s.create(models.GoalConversion)
	_, err := s.service.Start(s.ctx, test.ID)
	s.Require().NoError(err)

	s.track(test.ID, "control", models.EventImpression, 200, 0)
	s.track(test.ID, "control", models.EventConversion, 20, 0)
	s.track(test.ID, "banner", models.EventImpression, 200, 0)
	s.track(test.ID, "banner", models.EventConversion, 40, 0)

	res, err := s.service.Results(s.ctx, test.ID)
	s.Require().NoError(err)

	s.True(res.SampleSizeSufficient)
	s.Equal(int64(400), res.TotalImpressions)
	s.Equal("banner", res.WinnerCandidate)

	control, banner := res.Variants[0], res.Variants[1]
	s.True(control.IsControl)
	s.Equal(0.1, control.ConversionRate)
	s.Equal(0.2, banner.ConversionRate)
	s.Equal(100.0, banner.Lift)
	// pooled p = 0.15, se = sqrt(0.15*0.85*(2/200)) = 0.0357, z = 2.80
	s.InDelta(2.80, banner.ZScore, 0.01)
	s.Less(banner.PValue, 0.01)
	s.True(banner.Significant)
	s.False(control.Significant)
}

func (s *ServiceSuite) TestResults_ConversionsAheadOfImpressions() {
	test := s.create(models.GoalConversion)
	_, err := s.service.Start(s.ctx, test.ID)
	s.Require().NoError(err)

	s.track(test.ID, "control", models.EventImpression, 1, 0)
	s.track(test.ID, "banner", models.EventImpression, 1, 0)
	s.track(test.ID, "control", models.EventConversion, 3, 0)

	res, err := s.service.Results(s.ctx, test.ID)
	s.Require().NoError(err)

	control, banner := res.Variants[0], res.Variants[1]
	s.Equal(int64(3), control.Conversions)
	s.Equal(1.0, control.ConversionRate)
	s.Equal(-100.0, banner.Lift)
	s.False(math.IsNaN(banner.ZScore))
	s.False(math.IsNaN(banner.PValue))
	s.InDelta(-1.414, banner.ZScore, 0.001)

	_, err = json.Marshal(res)
	s.NoError(err)
}

func (s *ServiceSuite) TestAssign() {
	test := s.create(models.GoalConversion)

	_, err := s.service.Assign(s.ctx, test.ID, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))

	_, err = s.service.Start(s.ctx, test.ID)
	s.Require().NoError(err)

	user := id.NewUserID()
	first, err := s.service.Assign(s.ctx, test.ID, user)
	s.Require().NoError(err)
	second, err := s.service.Assign(s.ctx, test.ID, user)
	s.Require().NoError(err)
	s.Equal(first.VariantKey, second.VariantKey)
	s.GreaterOrEqual(first.Bucket, 0)
	s.Less(first.Bucket, 100)
}

func (s *ServiceSuite) TestList() {
	for range 3 {
		s.create(models.GoalConversion)
	}
	page, err := s.service.List(s.ctx, models.ListFilter{Offset: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Len(page.Items, 1)

	page, err = s.service.List(s.ctx, models.ListFilter{Offset: math.MaxInt, Limit: 100})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Empty(page.Items)
}

func TestVariantForBucket(t *testing.T) {
	variants := []models.Variant{{Key: "a", Weight: 20}, {Key: "b", Weight: 30}, {Key: "c", Weight: 50}}
	cases := map[int]string{0: "a", 19: "a", 20: "b", 49: "b", 50: "c", 99: "c"}
	for bucket, want := range cases {
		if got := variantForBucket(variants, bucket); got != want {
			t.Errorf("bucket %d: got %s, want %s", bucket, got, want)
		}
	}
}

func TestTwoProportionZTest_Degenerate(t *testing.T) {
	z, p := twoProportionZTest(0, 0, 5, 10)
	if z != 0 || p != 1 {
		t.Fatalf("expected (0,1) for empty control, got (%v,%v)", z, p)
	}
	z, p = twoProportionZTest(0, 10, 0, 10)
	if z != 0 || p != 1 {
		t.Fatalf("expected (0,1) for zero variance, got (%v,%v)", z, p)
	}
	z, p = twoProportionZTest(3, 1, 1, 1)
	if z != 0 || p != 1 {
		t.Fatalf("expected (0,1) when both rates cap at 1, got (%v,%v)", z, p)
	}
	z, p = twoProportionZTest(30, 10, 0, 10)
	if math.IsNaN(z) || math.IsNaN(p) {
		t.Fatalf("expected finite statistics, got (%v,%v)", z, p)
	}
}
