package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryRateCache(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, map[string]float64{"EUR": 0.85}))
	rate, ok, err := c.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.85, rate)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "EUR")
	assert.False(t, ok)
}

func TestMemoryRateCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRateCache(time.Hour)
	require.NoError(t, c.Put(ctx, map[string]float64{"EUR": 0.85, "GBP": 0.8}))

	require.NoError(t, c.Delete(ctx, "EUR"))
	_, ok, _ := c.Get(ctx, "EUR")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "GBP")
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok, _ = c.Get(ctx, "GBP")
	assert.False(t, ok)
}
