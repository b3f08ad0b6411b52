//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/internal/currency/store"
	"storefront/pkg/testutil/containers"
)

type RedisRateCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisRateCache
}

func TestRedisRateCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRateCacheSuite))
}

func (s *RedisRateCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = store.NewRedisRateCache(s.redis.Client, time.Minute, store.WithRateKey("test:currency:rates"))
}

func (s *RedisRateCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRateCacheSuite) TestRoundTripAndTTL() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Put(ctx, map[string]float64{"EUR": 0.8525, "JPY": 151.2}))

	rate, ok, err := s.cache.Get(ctx, "JPY")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(151.2, rate)

	ttl, err := s.redis.Client.TTL(ctx, "test:currency:rates").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.cache.Delete(ctx, "JPY"))
	_, ok, err = s.cache.Get(ctx, "JPY")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Clear(ctx))
	_, ok, err = s.cache.Get(ctx, "EUR")
	s.Require().NoError(err)
	s.False(ok)
}
