package checkout

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is the raw quantity sent by the client. It accepts a JSON
// number or string and is only parsed when line items are built.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	*q = Quantity(data)
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if n, err := q.Int(); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(q))
}

// Int parses the quantity as a base-10 integer.
func (q Quantity) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(q)))
}

// QuantityOf is a convenience for callers holding a typed quantity.
func QuantityOf(n int) Quantity {
	return Quantity(strconv.Itoa(n))
}

// Variant is the purchasable product variant selected in the cart.
type Variant struct {
	ID            int64  `json:"id"`
	StripePriceID string `json:"stripePriceId"`
}

// WarrantySelection is the warranty add-on chosen for a cart item.
type WarrantySelection struct {
	ID             string `json:"id"`
	ProductID      int64  `json:"productId,omitempty"`
	DurationMonths int    `json:"durationMonths,omitempty"`
	StripePriceID  string `json:"stripePriceId"`
}

// CartItem is one cart entry as received from the storefront.
type CartItem struct {
	ID       int64              `json:"id"`
	Variant  Variant            `json:"variant"`
	Quantity Quantity           `json:"quantity"`
	Warranty *WarrantySelection `json:"warranty,omitempty"`
}

// LineItem is a price reference and quantity sent to the payment provider.
type LineItem struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Request is the caller's checkout input.
type Request struct {
	CustomerEmail string     `json:"customerEmail,omitempty"`
	Items         []CartItem `json:"items"`
	OrderID       string     `json:"orderId"`
}

const (
	ModePayment = "payment"

	StatusCreated = "created"
)

// SessionParams is the complete provider input for one session.
type SessionParams struct {
	CustomerEmail    string
	LineItems        []LineItem
	Mode             string
	SuccessURL       string
	CancelURL        string
	Metadata         map[string]string
	AllowedCountries []string
	Locale           string
}

// SessionResult is what the provider returns for a created session.
type SessionResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Result is returned to the caller once a session exists. It is not
// persisted.
type Result struct {
	SessionResult
	Status    string     `json:"-"`
	LineItems []LineItem `json:"-"` // items the session was created with
}
