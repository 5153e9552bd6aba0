package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/storefront-checkout/internal/warranty"
)

// WarrantyStore is an in-memory warranty policy store
type WarrantyStore struct {
	mu       sync.RWMutex
	policies map[int64]map[int]warranty.Policy // productID -> duration -> policy
}

func NewWarrantyStore() *WarrantyStore {
	return &WarrantyStore{
		policies: make(map[int64]map[int]warranty.Policy),
	}
}

// ListPolicies returns the policies for a product ordered by duration
func (s *WarrantyStore) ListPolicies(ctx context.Context, productID int64) ([]warranty.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policies := make([]warranty.Policy, 0, len(s.policies[productID]))
	for _, p := range s.policies[productID] {
		policies = append(policies, p)
	}
	warranty.SortByDuration(policies)
	return policies, nil
}

// SavePolicy stores a policy, replacing any policy with the same duration
func (s *WarrantyStore) SavePolicy(ctx context.Context, p *warranty.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policies[p.ProductID] == nil {
		s.policies[p.ProductID] = make(map[int]warranty.Policy)
	}
	if existing, ok := s.policies[p.ProductID][p.DurationMonths]; ok {
		p.ID = existing.ID
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.policies[p.ProductID][p.DurationMonths] = *p
	return nil
}
