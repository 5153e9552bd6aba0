package notification

import (
	"context"
	"log"
	"time"

	"github.com/example/storefront-checkout/internal/apperror"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultDuration is how long a non-critical message stays visible.
const DefaultDuration = 5 * time.Second

// Notification is a user-visible message. A zero Duration means the
// message persists until dismissed.
type Notification struct {
	SessionID string        `json:"session_id,omitempty"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Sink delivers notifications to the user.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// DurationFor returns the display duration for an error of the given severity.
func DurationFor(severity apperror.Severity) time.Duration {
	if severity == apperror.SeverityCritical {
		return 0
	}
	return DefaultDuration
}

// ForError builds the error notification for a classified failure.
func ForError(sessionID string, err *apperror.AppError) Notification {
	return Notification{
		SessionID: sessionID,
		Kind:      KindError,
		Message:   err.Message,
		Duration:  DurationFor(err.Severity),
		CreatedAt: time.Now(),
	}
}

// LogSink writes notifications to the process log.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, n Notification) error {
	log.Printf("[Notify] session=%s kind=%s duration=%s: %s", n.SessionID, n.Kind, n.Duration, n.Message)
	return nil
}

// MultiSink fans a notification out to every sink. All sinks are tried;
// the first error is returned.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, n Notification) error {
	var firstErr error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
