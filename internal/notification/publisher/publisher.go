// Package publisher delivers notification and email messages to Kafka, with
// an in-memory outbox taking over while the broker is failing.
package publisher

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Message struct {
	Topic string
	Key   string
	Value []byte
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Kafka produces synchronously so the caller learns about broker failures.
type Kafka struct {
	client *kgo.Client
}

func NewKafka(client *kgo.Client) *Kafka {
	return &Kafka{client: client}
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	record := &kgo.Record{Topic: msg.Topic, Value: msg.Value}
	if msg.Key != "" {
		record.Key = []byte(msg.Key)
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}
