package errhandler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/notification"
	"github.com/example/storefront-checkout/internal/retry"
)

var (
	ErrRetryNotReady  = errors.New("retry is still backing off")
	ErrRetryExhausted = errors.New("error is not retryable or retries are exhausted")
)

// Handler is the top-level consumer of failures: it classifies them,
// keeps the session history, notifies the user and drives retries.
type Handler struct {
	policy  *retry.Policy
	sink    notification.Sink
	history *apperror.History
}

func NewHandler(policy *retry.Policy, sink notification.Sink, history *apperror.History) *Handler {
	return &Handler{
		policy:  policy,
		sink:    sink,
		history: history,
	}
}

// Handle classifies failure, records it and emits exactly one notification.
func (h *Handler) Handle(ctx context.Context, sessionID string, failure any) *apperror.AppError {
	appErr := apperror.Classify(failure)
	h.surface(ctx, sessionID, appErr)
	return appErr
}

func (h *Handler) surface(ctx context.Context, sessionID string, appErr *apperror.AppError) {
	h.history.Record(sessionID, appErr)
	log.Printf("[Error] session=%s code=%s severity=%s retryable=%t retries=%d: %s",
		sessionID, appErr.Code, appErr.Severity, appErr.Retryable, appErr.RetryCount, appErr.Message)

	n := notification.ForError(sessionID, appErr)
	if appErr.Retryable && h.policy.Exhausted(appErr) {
		// No further attempt will follow; keep the message until dismissed.
		n.Duration = 0
		n.Message = appErr.Message + " (retries exhausted)"
	}
	if err := h.sink.Notify(ctx, n); err != nil {
		log.Printf("[Error] Failed to notify session %s: %v", sessionID, err)
	}
}

// Retry re-runs op for a previously handled error if the policy allows
// it right now. On success it returns nil. When op fails again the new
// failure is classified into a fresh AppError carrying the retry
// bookkeeping, surfaced, and returned.
func (h *Handler) Retry(ctx context.Context, sessionID string, appErr *apperror.AppError, op func(context.Context) error) (*apperror.AppError, error) {
	if h.policy.Exhausted(appErr) {
		return appErr, ErrRetryExhausted
	}
	if !h.policy.CanRetry(appErr) {
		return appErr, ErrRetryNotReady
	}

	h.policy.MarkAttempt(appErr)

	if err := op(ctx); err != nil {
		fresh := apperror.Classify(err)
		retry.CarryOver(appErr, fresh)
		h.surface(ctx, sessionID, fresh)
		return fresh, nil
	}

	if err := h.sink.Notify(ctx, notification.Notification{
		SessionID: sessionID,
		Kind:      notification.KindSuccess,
		Message:   "Operation succeeded after retry",
		Duration:  notification.DefaultDuration,
		CreatedAt: time.Now(),
	}); err != nil {
		log.Printf("[Error] Failed to notify session %s: %v", sessionID, err)
	}
	return nil, nil
}

// RunWithRetry runs op and keeps retrying it on the policy's schedule
// until it succeeds, the error is exhausted, or ctx is done. The wait
// between attempts is a timer on the next eligible time.
func (h *Handler) RunWithRetry(ctx context.Context, sessionID string, op func(context.Context) error) *apperror.AppError {
	err := op(ctx)
	if err == nil {
		return nil
	}
	appErr := h.Handle(ctx, sessionID, err)

	for {
		if h.policy.Exhausted(appErr) {
			return appErr
		}

		if wait := time.Until(h.policy.NextAttemptAt(appErr)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return appErr
			case <-timer.C:
			}
		}

		next, retryErr := h.Retry(ctx, sessionID, appErr, op)
		switch {
		case errors.Is(retryErr, ErrRetryNotReady):
			continue
		case retryErr != nil:
			return appErr
		case next == nil:
			return nil
		}
		appErr = next
	}
}

// History returns the session's recent errors, oldest first.
func (h *Handler) History(sessionID string) []*apperror.AppError {
	return h.history.List(sessionID)
}
