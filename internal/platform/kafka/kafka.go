// Package kafka builds the franz-go client used by publishers and makes sure
// the topics they write to exist.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/internal/platform/config"
)

const (
	defaultPartitions  = 3
	defaultReplication = 1
)

// New creates a producer client. Returns nil when no brokers are configured.
func New(cfg config.KafkaConfig, opts ...kgo.Opt) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopics creates missing topics. Topics that already exist are not an error.
func EnsureTopics(ctx context.Context, client *kgo.Client, topics ...string) error {
	if client == nil || len(topics) == 0 {
		return nil
	}
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, defaultPartitions, defaultReplication, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Health pings the seed brokers.
func Health(ctx context.Context, client *kgo.Client) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx)
}
