package warranty

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct    = errors.New("product_id is required")
	ErrInvalidDuration   = errors.New("duration_months must be positive")
	ErrInvalidMultiplier = errors.New("price_multiplier must be positive")
	ErrMissingPrice      = errors.New("stripe_price_id is required")
)

// Policy is an extended-warranty offer for one product. Its price is a
// multiple of the product's base price.
type Policy struct {
	ID              string          `json:"id"`
	ProductID       int64           `json:"productId"`
	DurationMonths  int             `json:"durationMonths"`
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
	StripePriceID   string          `json:"stripePriceId"`
}

// Validate checks the policy before it is stored.
func (p Policy) Validate() error {
	switch {
	case p.ProductID <= 0:
		return ErrInvalidProduct
	case p.DurationMonths <= 0:
		return ErrInvalidDuration
	case !p.PriceMultiplier.IsPositive():
		return ErrInvalidMultiplier
	case strings.TrimSpace(p.StripePriceID) == "":
		return ErrMissingPrice
	}
	return nil
}

// PriceFor returns the warranty price for a product base price, rounded
// to cents.
func (p Policy) PriceFor(basePrice decimal.Decimal) decimal.Decimal {
	return basePrice.Mul(p.PriceMultiplier).Round(2)
}

// Store lists the warranty policies offered for a product, ordered by
// duration ascending.
type Store interface {
	ListPolicies(ctx context.Context, productID int64) ([]Policy, error)
}

// Repository is a Store that can also register policies.
type Repository interface {
	Store
	SavePolicy(ctx context.Context, policy *Policy) error
}

// SortByDuration orders policies by duration ascending.
func SortByDuration(policies []Policy) {
	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].DurationMonths < policies[j].DurationMonths
	})
}
