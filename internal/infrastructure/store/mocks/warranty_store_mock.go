package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-checkout/internal/warranty"
)

// MockWarrantyStore is a mock implementation of warranty.Repository for testing
type MockWarrantyStore struct {
	mu       sync.RWMutex
	policies map[int64][]warranty.Policy

	// For tracking calls in tests
	ListCalls []int64
	SaveCalls []warranty.Policy

	// Errors to return
	ListErr error
	SaveErr error
}

func NewMockWarrantyStore() *MockWarrantyStore {
	return &MockWarrantyStore{
		policies:  make(map[int64][]warranty.Policy),
		ListCalls: make([]int64, 0),
		SaveCalls: make([]warranty.Policy, 0),
	}
}

// AddPolicy seeds a policy without recording a call
func (m *MockWarrantyStore) AddPolicy(p warranty.Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.ProductID] = append(m.policies[p.ProductID], p)
	warranty.SortByDuration(m.policies[p.ProductID])
}

func (m *MockWarrantyStore) ListPolicies(ctx context.Context, productID int64) ([]warranty.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls = append(m.ListCalls, productID)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]warranty.Policy, len(m.policies[productID]))
	copy(out, m.policies[productID])
	return out, nil
}

func (m *MockWarrantyStore) SavePolicy(ctx context.Context, p *warranty.Policy) error {
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, *p)
	err := m.SaveErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = "policy-mock"
	}
	m.AddPolicy(*p)
	return nil
}
