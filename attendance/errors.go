/*
errors.go - Error types for the attendance domain

ERROR CATEGORIES:
  1. Validation errors - Rejected before any store call (empty name, bad wage)
  2. Lookup errors - Missing workers
  3. Format errors - Bad dates, month tokens, statuses

USAGE:
  if errors.Is(err, attendance.ErrWorkerNotFound) {
      // 404
  }

  var verrs attendance.ValidationErrors
  if errors.As(err, &verrs) {
      // 400 with per-field messages
  }
*/
package attendance

import (
	"errors"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrInvalidStatus is returned for a status outside the four known values.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrInvalidDate is returned when a date is not a valid YYYY-MM-DD string.
	ErrInvalidDate = errors.New("invalid date: use YYYY-MM-DD")

	// ErrInvalidMonth is returned when a month token is not a valid YYYY-MM string.
	ErrInvalidMonth = errors.New("invalid month: use YYYY-MM")

	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationErrors collects every field problem found in one input.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// ToMap returns field -> message, suitable for an error response body.
func (v ValidationErrors) ToMap() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth)
}

// IsNotFound returns true if the error indicates a missing worker.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound)
}
