package provider

import (
	"errors"
	"fmt"

	"persona/internal/domain"
)

// ErrorCategory normalizes upstream failure modes so callers can decide on
// retries and reporting without inspecting transport details.
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned an unparseable payload.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates rejected credentials.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the provider is unavailable (5xx, connect failure).
	ErrorOutage ErrorCategory = "outage"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected local failure.
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps a single category fetch failure. The orchestrator contains these
// per category; they never fail a search as a whole.
type Error struct {
	Category   ErrorCategory
	DataType   domain.Category
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.DataType, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.DataType, e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Underlying }

// NewError builds a categorized provider error. Timeouts, outages, and rate
// limits are marked retryable.
func NewError(category ErrorCategory, dataType domain.Category, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:   category,
		DataType:   dataType,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is a provider error worth retrying.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// CategoryOf extracts the error category, defaulting to internal.
func CategoryOf(err error) ErrorCategory {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
