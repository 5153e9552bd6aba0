package checkout

import (
	"context"
	"log"
	"strings"
)

// Provider creates hosted payment sessions. It is injected so tests and
// alternative gateways can replace the Stripe client.
type Provider interface {
	CreateSession(ctx context.Context, params *SessionParams) (*SessionResult, error)
}

// Settings are the fixed, server-side parts of every session. None of
// them is ever taken from the request.
type Settings struct {
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	Locale           string
	MerchantLabel    string
}

var DefaultAllowedCountries = []string{"CZ", "SK", "DE", "AT", "PL", "HU"}

type Service struct {
	provider Provider
	settings Settings
}

func NewService(provider Provider, settings Settings) *Service {
	if len(settings.AllowedCountries) == 0 {
		settings.AllowedCountries = DefaultAllowedCountries
	}
	return &Service{
		provider: provider,
		settings: settings,
	}
}

// Checkout builds line items from the request and creates a session.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	lineItems, err := BuildLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	return s.CreateSession(ctx, req, lineItems)
}

// CreateSession sends one session-creation call to the provider. No
// idempotency key is attached, so a retried call may create a second
// session.
func (s *Service) CreateSession(ctx context.Context, req Request, lineItems []LineItem) (*Result, error) {
	if len(lineItems) == 0 {
		return nil, newValidationError(ErrEmptyOrder, -1, "")
	}

	params := s.sessionParams(req, lineItems)

	session, err := s.provider.CreateSession(ctx, params)
	if err != nil {
		log.Printf("[Checkout] Provider failed for order %s: %v", req.OrderID, err)
		return nil, &ProviderError{Err: err}
	}
	if session == nil || session.URL == "" {
		log.Printf("[Checkout] Provider returned no session for order %s", req.OrderID)
		return nil, &ProviderError{Err: ErrNoSession}
	}

	log.Printf("[Checkout] Session %s created for order %s (%d line items)", session.ID, req.OrderID, len(lineItems))
	return &Result{SessionResult: *session, Status: StatusCreated, LineItems: params.LineItems}, nil
}

func (s *Service) sessionParams(req Request, lineItems []LineItem) *SessionParams {
	items := make([]LineItem, len(lineItems))
	copy(items, lineItems)

	countries := make([]string, len(s.settings.AllowedCountries))
	copy(countries, s.settings.AllowedCountries)

	return &SessionParams{
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		LineItems:     items,
		Mode:          ModePayment,
		SuccessURL:    s.settings.SuccessURL,
		CancelURL:     s.settings.CancelURL,
		Metadata: map[string]string{
			"orderId":  req.OrderID,
			"merchant": s.settings.MerchantLabel,
		},
		AllowedCountries: countries,
		Locale:           s.settings.Locale,
	}
}
