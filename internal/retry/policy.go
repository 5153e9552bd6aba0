package retry

import (
	"time"

	"github.com/example/storefront-checkout/internal/apperror"
)

const (
	// DefaultMaxRetries caps retries; the original attempt is not counted.
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Policy decides whether a failed operation may be retried yet.
// Backoff is exponential: 2^RetryCount * BaseDelay since the last retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	now        func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		now:        time.Now,
	}
}

// WithClock returns a copy of the policy that reads time from now.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	cp := *p
	cp.now = now
	return &cp
}

// Exhausted reports whether err can never be retried again.
func (p *Policy) Exhausted(err *apperror.AppError) bool {
	return !err.Retryable || err.RetryCount >= p.MaxRetries
}

// CanRetry is a non-blocking check; callers re-check later when it
// returns false for a retryable error that is still backing off.
func (p *Policy) CanRetry(err *apperror.AppError) bool {
	if p.Exhausted(err) {
		return false
	}
	if err.LastRetryTime == nil {
		return true
	}
	return !p.now().Before(p.NextAttemptAt(err))
}

// Backoff is the wait required after the most recent retry.
func (p *Policy) Backoff(err *apperror.AppError) time.Duration {
	return (1 << uint(err.RetryCount)) * p.BaseDelay
}

// NextAttemptAt is when the next retry becomes eligible.
func (p *Policy) NextAttemptAt(err *apperror.AppError) time.Time {
	if err.LastRetryTime == nil {
		return err.Timestamp
	}
	return err.LastRetryTime.Add(p.Backoff(err))
}

// MarkAttempt records a retry attempt. Call it before invoking the
// retried operation.
func (p *Policy) MarkAttempt(err *apperror.AppError) {
	now := p.now()
	err.RetryCount++
	err.LastRetryTime = &now
}

// CarryOver copies retry bookkeeping from a previous failure onto the
// error produced by the retried operation.
func CarryOver(from, to *apperror.AppError) {
	if from == nil || to == nil || from == to {
		return
	}
	to.RetryCount = from.RetryCount
	if from.LastRetryTime != nil {
		t := *from.LastRetryTime
		to.LastRetryTime = &t
	}
}
