package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"storefront/internal/search/models"
)

// popularKey is the sorted set holding query counts.
const popularKey = "search:popular"

// RedisTracker keeps query counts in a Redis sorted set so every instance
// shares the same ranking.
type RedisTracker struct {
	client *redis.Client
	key    string
}

type RedisTrackerOption func(*RedisTracker)

// WithKey overrides the sorted set key.
func WithKey(key string) RedisTrackerOption {
	return func(t *RedisTracker) {
		t.key = key
	}
}

func NewRedisTracker(client *redis.Client, opts ...RedisTrackerOption) *RedisTracker {
	t := &RedisTracker{client: client, key: popularKey}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *RedisTracker) Record(ctx context.Context, query string) error {
	if err := t.client.ZIncrBy(ctx, t.key, 1, query).Err(); err != nil {
		return fmt.Errorf("record search query: %w", err)
	}
	return nil
}

// Popular reads the top members by score. Redis orders equal scores by
// member descending, so ties are re-sorted by query ascending.
func (t *RedisTracker) Popular(ctx context.Context, limit int) ([]models.PopularQuery, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	entries, err := t.client.ZRevRangeWithScores(ctx, t.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read popular queries: %w", err)
	}
	out := make([]models.PopularQuery, 0, len(entries))
	for _, z := range entries {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, models.PopularQuery{Query: member, Count: int64(z.Score)})
	}
	slices.SortStableFunc(out, comparePopular)
	return out, nil
}
