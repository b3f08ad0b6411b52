package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/platform/metrics"
	"storefront/pkg/platform/circuit"
)

const (
	sinkPrimary = "kafka"
	sinkOutbox  = "outbox"
)

// Resilient publishes to the primary until the breaker opens, then parks
// messages in the outbox. Once the breaker closes again the outbox is
// replayed to the primary.
type Resilient struct {
	primary Publisher
	outbox  *Outbox
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Resilient)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resilient) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resilient) {
		r.metrics = m
	}
}

func NewResilient(primary Publisher, outbox *Outbox, breaker *circuit.Breaker, opts ...Option) *Resilient {
	r := &Resilient{primary: primary, outbox: outbox, breaker: breaker, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resilient) Publish(ctx context.Context, msg Message) error {
	if !r.breaker.Allow() {
		return r.park(ctx, msg)
	}
	if err := r.primary.Publish(ctx, msg); err != nil {
		useFallback, change := r.breaker.RecordFailure()
		if change.Opened {
			r.metrics.SetPublisherFallback(true)
			r.logger.WarnContext(ctx, "publisher circuit opened, buffering to outbox",
				"breaker", r.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return r.park(ctx, msg)
		}
		return fmt.Errorf("publish: %w", err)
	}
	r.metrics.IncrementPublished(msg.Topic, sinkPrimary)
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.metrics.SetPublisherFallback(false)
		r.logger.InfoContext(ctx, "publisher circuit closed, replaying outbox",
			"breaker", r.breaker.Name(),
			"pending", r.outbox.Len(),
		)
		r.replay(ctx)
	}
	return nil
}

func (r *Resilient) park(ctx context.Context, msg Message) error {
	if err := r.outbox.Publish(ctx, msg); err != nil {
		return err
	}
	r.metrics.IncrementPublished(msg.Topic, sinkOutbox)
	return nil
}

func (r *Resilient) replay(ctx context.Context) {
	pending := r.outbox.Drain()
	for i, msg := range pending {
		if err := r.primary.Publish(ctx, msg); err != nil {
			r.outbox.Requeue(pending[i:])
			r.logger.WarnContext(ctx, "outbox replay interrupted",
				"remaining", len(pending)-i,
				"error", err,
			)
			return
		}
		r.metrics.IncrementPublished(msg.Topic, sinkPrimary)
	}
}

// Pending is the number of messages waiting in the outbox.
func (r *Resilient) Pending() int {
	return r.outbox.Len()
}
