/*
errors.go - Shared error values for the engine

PURPOSE:
  Errors that are not specific to one domain package live here so that
  attendance, tax and payroll code (and the HTTP layer) can classify them
  with errors.Is without importing each other.

ERROR CATEGORIES:
  1. Input errors - malformed durations, times, periods
  2. Lookup errors - referenced records that do not exist

SEE ALSO:
  - payroll/errors.go: configuration and adjustment errors
  - api/handlers.go: maps these to HTTP status codes
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFormat is returned when a duration or time string cannot be parsed.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
