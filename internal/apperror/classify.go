package apperror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/stripe/stripe-go/v79"
)

// Kinder is implemented by errors that name their own kind.
type Kinder interface {
	Kind() string
}

// Coder is implemented by errors that carry a machine-readable code.
type Coder interface {
	Code() string
}

// Validator is implemented by bad-request failures. They are never
// retryable, whatever their message says.
type Validator interface {
	Validation() bool
}

// Classify turns an arbitrary failure into exactly one AppError.
// An *AppError is returned as is.
func Classify(failure any) *AppError {
	if appErr, ok := failure.(*AppError); ok {
		if appErr != nil {
			return appErr
		}
		failure = nil
	}

	err, ok := failure.(error)
	if !ok || err == nil {
		return &AppError{
			Message:   "An unexpected error occurred",
			Code:      CodeUnknown,
			Metadata:  map[string]any{"originalError": failure},
			Severity:  SeverityHigh,
			Timestamp: time.Now(),
		}
	}

	var wrapped *AppError
	if errors.As(err, &wrapped) && wrapped != nil {
		return wrapped
	}

	kind := errorKind(err)
	appErr := &AppError{
		Message:   err.Error(),
		Metadata:  map[string]any{"kind": kind},
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		cause:     err,
	}

	var stripeErr *stripe.Error
	switch {
	case isValidation(err):
		appErr.Code = CodeApplication
	case isNetworkOrTimeout(kind, err):
		appErr.Severity = SeverityHigh
		appErr.Retryable = true
		appErr.Code = CodeNetwork
	case errors.As(err, &stripeErr):
		appErr.Code = CodeProvider
		appErr.Metadata["http_status"] = stripeErr.HTTPStatusCode
		if isRetryableStripeError(stripeErr) {
			appErr.Severity = SeverityHigh
			appErr.Retryable = true
		}
	default:
		appErr.Code = CodeApplication
	}

	var coder Coder
	if errors.As(err, &coder) && coder.Code() != "" {
		appErr.Code = coder.Code()
	}

	return appErr
}

func errorKind(err error) string {
	var k Kinder
	if errors.As(err, &k) && k.Kind() != "" {
		return k.Kind()
	}
	return fmt.Sprintf("%T", err)
}

func isValidation(err error) bool {
	var v Validator
	return errors.As(err, &v) && v.Validation()
}

func isNetworkOrTimeout(kind string, err error) bool {
	if containsNetworkOrTimeout(kind) || containsNetworkOrTimeout(err.Error()) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func containsNetworkOrTimeout(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "network") || strings.Contains(s, "timeout")
}

// 5xx and throttling responses mean the provider is degraded; client
// errors (declines, invalid requests, bad keys) are final.
func isRetryableStripeError(err *stripe.Error) bool {
	if err.HTTPStatusCode >= 500 && err.HTTPStatusCode < 600 {
		return true
	}
	switch err.Code {
	case stripe.ErrorCodeRateLimit, stripe.ErrorCodeLockTimeout:
		return true
	}
	return false
}
