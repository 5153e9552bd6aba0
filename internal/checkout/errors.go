package checkout

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationKind string

const (
	KindEmptyOrder            ValidationKind = "EMPTY_ORDER"
	KindMissingPriceReference ValidationKind = "MISSING_PRICE_REFERENCE"
	KindInvalidQuantity       ValidationKind = "INVALID_QUANTITY"
	KindInvalidRequest        ValidationKind = "INVALID_REQUEST"
)

// Scopes for MissingPriceReference.
const (
	ScopeVariant  = "variant"
	ScopeWarranty = "warranty"
)

var (
	ErrEmptyOrder            = &ValidationError{Kind: KindEmptyOrder, Message: "order must contain at least one item", Index: -1}
	ErrMissingPriceReference = &ValidationError{Kind: KindMissingPriceReference, Message: "price reference is missing", Index: -1}
	ErrInvalidQuantity       = &ValidationError{Kind: KindInvalidQuantity, Message: "quantity must be a positive integer", Index: -1}
	ErrInvalidRequest        = &ValidationError{Kind: KindInvalidRequest, Message: "invalid request body", Index: -1}
)

// ValidationError is a bad-request failure. It is never retried.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	// Index of the offending cart item, -1 when not item specific.
	Index int
	Scope string
}

func (e *ValidationError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("item %d: %s %s", e.Index, e.Scope, e.Message)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s", e.Index, e.Message)
	}
	return e.Message
}

// Is matches any ValidationError of the same kind, so callers can write
// errors.Is(err, checkout.ErrInvalidQuantity).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

func (e *ValidationError) Code() string { return string(e.Kind) }

// Validation marks the error as a bad request for the classifier.
func (e *ValidationError) Validation() bool { return true }

func newValidationError(base *ValidationError, index int, scope string) *ValidationError {
	return &ValidationError{
		Kind:    base.Kind,
		Message: base.Message,
		Index:   index,
		Scope:   scope,
	}
}

// InvalidRequest reports a request that could not be decoded.
func InvalidRequest(reason string) *ValidationError {
	return &ValidationError{Kind: KindInvalidRequest, Message: "invalid request body: " + reason, Index: -1}
}

// ErrNoSession is wrapped in a ProviderError when the provider reports
// success without a usable session.
var ErrNoSession = errors.New("provider returned no session")

// ProviderError wraps a failure returned by the payment provider.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "payment provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Code() string { return "PROVIDER_ERROR" }

// HTTPStatus maps a checkout failure to the response status. Validation
// failures are client errors; everything else is a server error.
func HTTPStatus(err error) int {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsValidation reports whether err is a bad-request failure.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
