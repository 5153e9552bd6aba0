package warranty

import (
	"context"
	"log"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache keeps warranty policies per product for the life of the process.
// Concurrent misses for the same product share a single store fetch.
type Cache struct {
	store Store

	mu       sync.RWMutex
	policies map[int64][]Policy
	group    singleflight.Group
}

func NewCache(store Store) *Cache {
	return &Cache{
		store:    store,
		policies: make(map[int64][]Policy),
	}
}

// ListPolicies returns the cached policies for productID, loading them
// from the store on first use.
func (c *Cache) ListPolicies(ctx context.Context, productID int64) ([]Policy, error) {
	c.mu.RLock()
	cached, ok := c.policies[productID]
	c.mu.RUnlock()
	if ok {
		return clonePolicies(cached), nil
	}

	v, err, _ := c.group.Do(strconv.FormatInt(productID, 10), func() (any, error) {
		c.mu.RLock()
		cached, ok := c.policies[productID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		policies, err := c.store.ListPolicies(ctx, productID)
		if err != nil {
			return nil, err
		}
		policies = clonePolicies(policies)
		SortByDuration(policies)

		c.mu.Lock()
		c.policies[productID] = policies
		c.mu.Unlock()
		log.Printf("[Warranty] Cached %d policies for product %d", len(policies), productID)
		return policies, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePolicies(v.([]Policy)), nil
}

// Invalidate drops the cached policies for productID.
func (c *Cache) Invalidate(productID int64) {
	c.mu.Lock()
	delete(c.policies, productID)
	c.mu.Unlock()
}

func clonePolicies(policies []Policy) []Policy {
	out := make([]Policy, len(policies))
	copy(out, policies)
	return out
}
