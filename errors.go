package directory

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("directory: not found")
	ErrAlreadyExists = errors.New("directory: already exists")
	ErrInvalidInput  = errors.New("directory: invalid input")

	// Subscription errors
	ErrSubscriptionNotFound = errors.New("directory: subscription not found")

	// Store errors
	ErrStoreNotReady   = errors.New("directory: store not ready")
	ErrStoreClosed     = errors.New("directory: store is closed")
	ErrMigrationFailed = errors.New("directory: migration failed")
)

// ValidationError reports a structurally disallowed combination of inputs.
// It is always surfaced to the caller and never worth retrying.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "directory: validation failed: " + e.Message
	}
	return fmt.Sprintf("directory: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError reports that a requested record does not exist. Malformed
// identifiers are reported the same way.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (e *NotFoundError) Error() string {
	return "directory: " + e.Message
}

// Unwrap lets errors.Is match ErrSubscriptionNotFound and IsNotFound.
func (e *NotFoundError) Unwrap() error { return ErrSubscriptionNotFound }

func newNotFound(subID, format string, args ...any) *NotFoundError {
	return &NotFoundError{
		Resource: "subscription",
		ID:       subID,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
