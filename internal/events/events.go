package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront-checkout/internal/checkout"
)

const (
	EventCheckoutSessionCreated = "CheckoutSessionCreated"
)

// Event is the envelope written to the checkout events topic.
type Event struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type CheckoutSessionCreated struct {
	OrderID       string              `json:"order_id"`
	SessionID     string              `json:"session_id"`
	URL           string              `json:"url"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	LineItems     []checkout.LineItem `json:"line_items"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewEvent wraps data in an envelope with a fresh ID.
func NewEvent(orderID, eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		EventType: eventType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Producer is the subset of the Kafka producer used by Publisher.
type Producer interface {
	Publish(ctx context.Context, key string, event any) error
}

// Publisher emits checkout events keyed by order ID.
type Publisher struct {
	producer Producer
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) SessionCreated(ctx context.Context, e CheckoutSessionCreated) error {
	event, err := NewEvent(e.OrderID, EventCheckoutSessionCreated, e)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, e.OrderID, event)
}
