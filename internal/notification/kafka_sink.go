package notification

import (
	"context"
	"time"
)

// Publisher is the subset of the Kafka producer used by KafkaSink.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaSink publishes notifications keyed by client session so the
// storefront gateway can push them to the right browser.
type KafkaSink struct {
	publisher Publisher
}

func NewKafkaSink(publisher Publisher) *KafkaSink {
	return &KafkaSink{publisher: publisher}
}

func (s *KafkaSink) Notify(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return s.publisher.Publish(ctx, n.SessionID, n)
}
