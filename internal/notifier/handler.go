package notifier

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/checkout"
	"github.com/example/storefront-checkout/internal/events"
)

// Mailer sends the payment link to a customer
type Mailer interface {
	SendPaymentLink(ctx context.Context, to, orderID, url string, items []checkout.LineItem) error
}

// Retrier runs an operation on the retry policy's schedule
type Retrier interface {
	RunWithRetry(ctx context.Context, sessionID string, op func(context.Context) error) *apperror.AppError
}

// Handler processes checkout events for sending payment link emails
type Handler struct {
	mailer  Mailer
	retrier Retrier
}

func NewHandler(mailer Mailer, retrier Retrier) *Handler {
	return &Handler{
		mailer:  mailer,
		retrier: retrier,
	}
}

// HandleEvent processes an event from Kafka. Only malformed messages
// return an error; delivery failures are surfaced through the retrier.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event events.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if event.EventType == events.EventCheckoutSessionCreated {
		return h.handleSessionCreated(ctx, event)
	}

	return nil
}

func (h *Handler) handleSessionCreated(ctx context.Context, event events.Event) error {
	var e events.CheckoutSessionCreated
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal CheckoutSessionCreated event: %v", err)
		return err
	}

	if e.CustomerEmail == "" {
		log.Printf("[Notifier] Guest checkout for order %s has no email, skipping", e.OrderID)
		return nil
	}

	log.Printf("[Notifier] Sending payment link for order %s to %s", e.OrderID, e.CustomerEmail)

	appErr := h.retrier.RunWithRetry(ctx, "order:"+e.OrderID, func(ctx context.Context) error {
		return h.mailer.SendPaymentLink(ctx, e.CustomerEmail, e.OrderID, e.URL, e.LineItems)
	})
	if appErr != nil {
		log.Printf("[Notifier] Giving up on payment link for order %s after %d retries: %s",
			e.OrderID, appErr.RetryCount, appErr.Message)
		return nil
	}

	log.Printf("[Notifier] Payment link sent to %s for order %s", e.CustomerEmail, e.OrderID)
	return nil
}
