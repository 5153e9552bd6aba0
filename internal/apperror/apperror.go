package apperror

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity ranks how disruptive a failure is for the user.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if strings.EqualFold(n, name) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// Error codes assigned by the classifier.
const (
	CodeUnknown     = "UNKNOWN_ERROR"
	CodeNetwork     = "NETWORK_ERROR"
	CodeProvider    = "PROVIDER_ERROR"
	CodeApplication = "APPLICATION_ERROR"
)

// AppError is the classified form of a failure. It is created once per
// failure; only the retry policy mutates RetryCount and LastRetryTime.
type AppError struct {
	Message       string         `json:"message"`
	Code          string         `json:"code,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Severity      Severity       `json:"severity"`
	Retryable     bool           `json:"retryable"`
	RetryCount    int            `json:"retry_count"`
	Timestamp     time.Time      `json:"timestamp"`
	LastRetryTime *time.Time     `json:"last_retry_time,omitempty"`

	cause error
}

// New creates an AppError that is not retryable.
func New(message, code string, severity Severity) *AppError {
	return &AppError{
		Message:   message,
		Code:      code,
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

func (e *AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Unwrap exposes the original failure for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// HasRetried reports whether a retry attempt has been recorded.
func (e *AppError) HasRetried() bool {
	return e.LastRetryTime != nil
}
