package checkout

import "strings"

// BuildLineItems validates cart items and flattens them into provider
// line items, preserving input order. A warranty line follows its
// product line and always uses the product quantity.
func BuildLineItems(items []CartItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, newValidationError(ErrEmptyOrder, -1, "")
	}

	lineItems := make([]LineItem, 0, len(items))
	for i, item := range items {
		price := strings.TrimSpace(item.Variant.StripePriceID)
		if price == "" {
			return nil, newValidationError(ErrMissingPriceReference, i, ScopeVariant)
		}

		quantity, err := item.Quantity.Int()
		if err != nil || quantity < 1 {
			return nil, newValidationError(ErrInvalidQuantity, i, "")
		}

		lineItems = append(lineItems, LineItem{Price: price, Quantity: int64(quantity)})

		if item.Warranty == nil {
			continue
		}
		warrantyPrice := strings.TrimSpace(item.Warranty.StripePriceID)
		if warrantyPrice == "" {
			return nil, newValidationError(ErrMissingPriceReference, i, ScopeWarranty)
		}
		lineItems = append(lineItems, LineItem{Price: warrantyPrice, Quantity: int64(quantity)})
	}

	return lineItems, nil
}
