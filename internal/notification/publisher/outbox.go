package publisher

import (
	"context"
	"sync"
)

const defaultOutboxCapacity = 10_000

// Outbox buffers messages in memory. When full, the oldest message is dropped.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	capacity int
	dropped  int
}

func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = defaultOutboxCapacity
	}
	return &Outbox{capacity: capacity}
}

func (o *Outbox) Publish(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) >= o.capacity {
		o.messages = o.messages[1:]
		o.dropped++
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Drain removes and returns every buffered message in arrival order.
func (o *Outbox) Drain() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.messages
	o.messages = nil
	return out
}

// Requeue puts undelivered messages back in front of anything buffered since.
func (o *Outbox) Requeue(msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(append([]Message(nil), msgs...), o.messages...)
	if over := len(o.messages) - o.capacity; over > 0 {
		o.messages = o.messages[over:]
		o.dropped += over
	}
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
