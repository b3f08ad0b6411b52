//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"storefront/internal/search/models"
	"storefront/internal/search/store"
	"storefront/pkg/testutil/containers"
)

type RedisTrackerSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	tracker *store.RedisTracker
}

func TestRedisTrackerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisTrackerSuite))
}

func (s *RedisTrackerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.tracker = store.NewRedisTracker(s.redis.Client, store.WithKey("test:search:popular"))
}

func (s *RedisTrackerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisTrackerSuite) TestPopularMatchesMemoryOrdering() {
	ctx := context.Background()
	memory := store.NewMemoryTracker()
	for _, q := range []string{"lamp", "desk", "chair", "desk", "lamp", "sofa"} {
		s.Require().NoError(s.tracker.Record(ctx, q))
		s.Require().NoError(memory.Record(ctx, q))
	}

	fromRedis, err := s.tracker.Popular(ctx, 3)
	s.Require().NoError(err)
	fromMemory, err := memory.Popular(ctx, 3)
	s.Require().NoError(err)

	s.Equal([]models.PopularQuery{{Query: "desk", Count: 2}, {Query: "lamp", Count: 2}, {Query: "chair", Count: 1}}, fromRedis)
	s.Equal(fromMemory, fromRedis)
}

func (s *RedisTrackerSuite) TestEmptySet() {
	popular, err := s.tracker.Popular(context.Background(), 5)
	s.Require().NoError(err)
	s.Empty(popular)
}
