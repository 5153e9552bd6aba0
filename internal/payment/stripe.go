package payment

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/example/storefront-checkout/internal/checkout"
)

// SessionAPI is the part of the Stripe SDK used to create Checkout
// Sessions. *session.Client satisfies it.
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider creates Stripe Checkout Sessions behind a circuit breaker.
type StripeProvider struct {
	api     SessionAPI
	breaker *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

// NewStripeClient returns the SDK session client for secretKey.
func NewStripeClient(secretKey string) *session.Client {
	return &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}

func NewStripeProvider(api SessionAPI, settings BreakerSettings) *StripeProvider {
	return &StripeProvider{
		api:     api,
		breaker: gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](settings.gobreaker()),
	}
}

// BreakerSettings tunes the circuit breaker around Stripe calls.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "stripe-checkout",
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

func (s BreakerSettings) gobreaker() gobreaker.Settings {
	return gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// Client errors say nothing about Stripe's health. Throttling does.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var stripeErr *stripe.Error
			if !errors.As(err, &stripeErr) || stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
				return false
			}
			return stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[Stripe] Circuit breaker %s: %s -> %s", name, from, to)
		},
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, params *checkout.SessionParams) (*checkout.SessionResult, error) {
	stripeParams := toStripeParams(params)
	stripeParams.Context = ctx

	sess, err := p.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return p.api.New(stripeParams)
	})
	if err != nil {
		return nil, err
	}

	return &checkout.SessionResult{ID: sess.ID, URL: sess.URL}, nil
}

func toStripeParams(params *checkout.SessionParams) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.Price),
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sp := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(params.Mode),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(params.AllowedCountries),
		},
	}
	if params.Locale != "" {
		sp.Locale = stripe.String(params.Locale)
	}
	if params.CustomerEmail != "" {
		sp.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if orderID := params.Metadata["orderId"]; orderID != "" {
		sp.ClientReferenceID = stripe.String(orderID)
	}
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}
	return sp
}
