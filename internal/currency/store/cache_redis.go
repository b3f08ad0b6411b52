package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateKey = "currency:rates"

// RedisRateCache keeps every rate in one hash. The TTL applies to the hash
// as a whole and is set when the first field is written.
type RedisRateCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type RedisCacheOption func(*RedisRateCache)

func WithRateKey(key string) RedisCacheOption {
	return func(c *RedisRateCache) {
		c.key = key
	}
}

func NewRedisRateCache(client *redis.Client, ttl time.Duration, opts ...RedisCacheOption) *RedisRateCache {
	c := &RedisRateCache{client: client, key: defaultRateKey, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisRateCache) Get(ctx context.Context, code string) (float64, bool, error) {
	raw, err := c.client.HGet(ctx, c.key, code).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read cached rate: %w", err)
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached rate %q: %w", raw, err)
	}
	return rate, true, nil
}

func (c *RedisRateCache) Put(ctx context.Context, rates map[string]float64) error {
	if len(rates) == 0 {
		return nil
	}
	fields := make(map[string]any, len(rates))
	for code, rate := range rates {
		fields[code] = strconv.FormatFloat(rate, 'f', -1, 64)
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, c.key, fields)
		pipe.ExpireNX(ctx, c.key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache rates: %w", err)
	}
	return nil
}

func (c *RedisRateCache) Delete(ctx context.Context, code string) error {
	if err := c.client.HDel(ctx, c.key, code).Err(); err != nil {
		return fmt.Errorf("evict cached rate: %w", err)
	}
	return nil
}

func (c *RedisRateCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("clear cached rates: %w", err)
	}
	return nil
}
