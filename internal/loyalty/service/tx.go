package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "storefront/pkg/domain-errors"
)

// StoreTx provides a transactional boundary for balance mutations.
// Implementations may wrap a database transaction or, in-memory, a lock.
// fn receives the transaction's context, which carries its deadline.
type StoreTx interface {
	RunInTx(ctx context.Context, userKey string, fn func(ctx context.Context, store Store) error) error
}

const numAccountShards = 64

const defaultTxTimeout = 5 * time.Second

// shardedTx serializes mutations per account using sharded mutexes keyed by
// user, so concurrent redemptions for one user cannot overdraw the balance.
type shardedTx struct {
	shards  [numAccountShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewShardedTx wraps an in-memory store.
func NewShardedTx(store Store) StoreTx {
	return &shardedTx{store: store, timeout: defaultTxTimeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, userKey string, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := shardFor(userKey)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.store)
}

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % numAccountShards
}
