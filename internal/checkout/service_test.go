package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/checkout"
	"github.com/example/storefront-checkout/internal/checkout/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*checkout.Service, *mocks.MockProvider) {
	provider := mocks.NewMockProvider()
	svc := checkout.NewService(provider, checkout.Settings{
		SuccessURL:    "https://shop.example.com/checkout/success",
		CancelURL:     "https://shop.example.com/checkout/cancel",
		Locale:        "cs",
		MerchantLabel: "Example Shop",
	})
	return svc, provider
}

func TestService_Checkout_EndToEnd(t *testing.T) {
	svc, provider := newTestService()

	result, err := svc.Checkout(context.Background(), checkout.Request{
		Items: []checkout.CartItem{{
			ID:       1,
			Variant:  checkout.Variant{ID: 10, StripePriceID: "price_a"},
			Quantity: checkout.QuantityOf(3),
		}},
		OrderID: "ord_1",
	})

	require.NoError(t, err)
	assert.Equal(t, checkout.StatusCreated, result.Status)
	assert.Equal(t, "cs_test_123", result.ID)
	assert.NotEmpty(t, result.URL)

	require.Equal(t, 1, provider.CallCount())
	params := provider.CreateSessionCalls[0]
	assert.Equal(t, []checkout.LineItem{{Price: "price_a", Quantity: 3}}, params.LineItems)
	assert.Equal(t, checkout.ModePayment, params.Mode)
	assert.Equal(t, "https://shop.example.com/checkout/success", params.SuccessURL)
	assert.Equal(t, "https://shop.example.com/checkout/cancel", params.CancelURL)
	assert.Equal(t, []string{"CZ", "SK", "DE", "AT", "PL", "HU"}, params.AllowedCountries)
	assert.Equal(t, "cs", params.Locale)
	assert.Equal(t, "ord_1", params.Metadata["orderId"])
	assert.Equal(t, "Example Shop", params.Metadata["merchant"])
	assert.Empty(t, params.CustomerEmail)
}

func TestService_Checkout_CustomerEmail(t *testing.T) {
	svc, provider := newTestService()

	_, err := svc.Checkout(context.Background(), checkout.Request{
		CustomerEmail: " buyer@example.com ",
		Items: []checkout.CartItem{{
			Variant:  checkout.Variant{StripePriceID: "price_a"},
			Quantity: "1",
		}},
		OrderID: "ord_2",
	})

	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", provider.CreateSessionCalls[0].CustomerEmail)
}

func TestService_Checkout_EmptyCartMakesNoProviderCall(t *testing.T) {
	svc, provider := newTestService()

	result, err := svc.Checkout(context.Background(), checkout.Request{OrderID: "ord_3"})

	assert.ErrorIs(t, err, checkout.ErrEmptyOrder)
	assert.Nil(t, result)
	assert.Zero(t, provider.CallCount())
}

func TestService_CreateSession_EmptyLineItems(t *testing.T) {
	svc, provider := newTestService()

	_, err := svc.CreateSession(context.Background(), checkout.Request{OrderID: "ord_4"}, nil)

	assert.ErrorIs(t, err, checkout.ErrEmptyOrder)
	assert.Equal(t, 400, checkout.HTTPStatus(err))
	assert.Zero(t, provider.CallCount())
}

func TestService_Checkout_InvalidQuantityMakesNoProviderCall(t *testing.T) {
	svc, provider := newTestService()

	_, err := svc.Checkout(context.Background(), checkout.Request{
		Items:   []checkout.CartItem{{Variant: checkout.Variant{StripePriceID: "price_a"}, Quantity: "0"}},
		OrderID: "ord_5",
	})

	assert.ErrorIs(t, err, checkout.ErrInvalidQuantity)
	assert.Zero(t, provider.CallCount())

	appErr := apperror.Classify(err)
	assert.False(t, appErr.Retryable)
	assert.Equal(t, string(checkout.KindInvalidQuantity), appErr.Code)
}

func TestService_Checkout_ProviderFailure(t *testing.T) {
	svc, provider := newTestService()
	provider.Err = errors.New("gateway exploded")

	result, err := svc.Checkout(context.Background(), checkout.Request{
		Items:   []checkout.CartItem{{Variant: checkout.Variant{StripePriceID: "price_a"}, Quantity: "1"}},
		OrderID: "ord_6",
	})

	assert.Nil(t, result)
	var pErr *checkout.ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 500, checkout.HTTPStatus(err))
	assert.Contains(t, err.Error(), "gateway exploded")
}

func TestService_Checkout_ProviderTimeoutIsRetryable(t *testing.T) {
	svc, provider := newTestService()
	provider.Err = context.DeadlineExceeded

	_, err := svc.Checkout(context.Background(), checkout.Request{
		Items:   []checkout.CartItem{{Variant: checkout.Variant{StripePriceID: "price_a"}, Quantity: "1"}},
		OrderID: "ord_7",
	})

	appErr := apperror.Classify(err)
	assert.True(t, appErr.Retryable)
	assert.Equal(t, apperror.SeverityHigh, appErr.Severity)
	assert.Equal(t, apperror.CodeProvider, appErr.Code)
}

func TestService_ParamsAreIsolatedFromSettings(t *testing.T) {
	svc, provider := newTestService()
	req := checkout.Request{
		Items:   []checkout.CartItem{{Variant: checkout.Variant{StripePriceID: "price_a"}, Quantity: "1"}},
		OrderID: "ord_8",
	}

	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	provider.CreateSessionCalls[0].AllowedCountries[0] = "US"

	_, err = svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "CZ", provider.CreateSessionCalls[1].AllowedCountries[0])
}

func TestService_Checkout_ProviderReturnsNoSession(t *testing.T) {
	tests := []struct {
		name   string
		result *checkout.SessionResult
	}{
		{"nil session", nil},
		{"session without url", &checkout.SessionResult{ID: "cs_test_456"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider := newTestService()
			provider.Result = tt.result

			result, err := svc.Checkout(context.Background(), checkout.Request{
				Items:   []checkout.CartItem{{Variant: checkout.Variant{StripePriceID: "price_a"}, Quantity: "1"}},
				OrderID: "ord_8",
			})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, checkout.ErrNoSession)
			var pErr *checkout.ProviderError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, 500, checkout.HTTPStatus(err))
			assert.Equal(t, 1, provider.CallCount())
		})
	}
}

func TestService_Checkout_ResultCarriesLineItems(t *testing.T) {
	svc, provider := newTestService()

	result, err := svc.Checkout(context.Background(), checkout.Request{
		Items: []checkout.CartItem{
			{ID: 1, Variant: checkout.Variant{ID: 10, StripePriceID: "price_a"}, Quantity: "2"},
			{ID: 2, Variant: checkout.Variant{ID: 11, StripePriceID: "price_b"}, Quantity: "1"},
		},
		OrderID: "ord_9",
	})

	require.NoError(t, err)
	assert.Equal(t, []checkout.LineItem{
		{Price: "price_a", Quantity: 2},
		{Price: "price_b", Quantity: 1},
	}, result.LineItems)
	assert.Equal(t, provider.CreateSessionCalls[0].LineItems, result.LineItems)
}
