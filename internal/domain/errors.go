package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services and handlers can translate them uniformly.
var (
	// ErrNotFound: entity does not exist in the selected store.
	ErrNotFound = errors.New("not found")

	// ErrAuthRequired: a remote-mode operation was attempted with no bound
	// identity. Fatal to the calling operation, never retried.
	ErrAuthRequired = errors.New("authentication required")

	// ErrStorageFull: the local store's medium rejected a write for capacity.
	// Distinct from general storage failures so callers can suggest clearing
	// data or switching to remote mode.
	ErrStorageFull = errors.New("local storage full")
)

// ValidationError reports bad caller input: missing required query fields,
// or a submission with no proof attached. Surfaced immediately, no retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for one field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a failure persisting query/profile/result/history.
// Fatal to the operation that raised it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
