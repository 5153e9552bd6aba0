package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-checkout/internal/checkout"
)

// MockProvider is a mock implementation of checkout.Provider for testing
type MockProvider struct {
	mu sync.Mutex

	// Result is returned from CreateSession when Err is nil; a nil Result
	// yields (nil, nil)
	Result *checkout.SessionResult
	Err    error

	// For tracking calls in tests
	CreateSessionCalls []*checkout.SessionParams
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Result:             &checkout.SessionResult{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"},
		CreateSessionCalls: make([]*checkout.SessionParams, 0),
	}
}

func (m *MockProvider) CreateSession(ctx context.Context, params *checkout.SessionParams) (*checkout.SessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateSessionCalls = append(m.CreateSessionCalls, params)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return nil, nil
	}
	result := *m.Result
	return &result, nil
}

// CallCount returns how many sessions were requested
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateSessionCalls)
}
