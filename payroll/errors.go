/*
errors.go - Error types for pay-slip processing

PURPOSE:
  Errors raised while turning attendance totals into pay adjustments and
  while running pay-slip hooks.

ERROR CATEGORIES:
  1. Configuration errors - a shift or company is missing pay settings
  2. Adjustment errors - store-level lifecycle violations
  3. Validation errors - malformed entries or slips

USAGE:
  if payroll.IsConfigError(err) {
      // surface to whoever maintains the shift type
  }

SEE ALSO:
  - poster.go: raises ConfigError
  - api/handlers.go: maps ConfigError to 422
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrComponentNotConfigured is returned when a shift has no salary
	// component to book overtime or lateness against.
	ErrComponentNotConfigured = errors.New("salary component not configured")

	// ErrPolicyNotFound is returned when a company has no payroll policy.
	ErrPolicyNotFound = errors.New("payroll policy not found")

	// ErrDuplicateAdjustment is returned when an entry with the same ID exists.
	ErrDuplicateAdjustment = errors.New("duplicate adjustment id")

	// ErrAdjustmentNotFound is returned when an adjustment id is unknown.
	ErrAdjustmentNotFound = errors.New("adjustment not found")

	// ErrAlreadySubmitted is returned when submitting a submitted entry.
	ErrAlreadySubmitted = errors.New("adjustment already submitted")

	// ErrInvalidAdjustment is returned when an entry fails validation.
	ErrInvalidAdjustment = errors.New("invalid adjustment")

	// ErrInvalidSlip is returned when a slip is missing required fields.
	ErrInvalidSlip = errors.New("invalid pay slip")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError reports missing pay configuration on a shift type.
type ConfigError struct {
	Shift   string
	Missing []string // e.g. "overtime_component", "lateness_component"
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("shift %q: %s not configured", e.Shift, joinFields(e.Missing))
}

func (e *ConfigError) Unwrap() error {
	return ErrComponentNotConfigured
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return "salary components"
	case 1:
		return fields[0]
	}
	out := fields[0]
	for _, f := range fields[1:] {
		out += " and " + f
	}
	return out
}

// HookError wraps a failure inside a pay-slip hook.
type HookError struct {
	Hook  string
	Stage Stage
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s (%s): %v", e.Hook, e.Stage, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if the error is caused by missing pay configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrComponentNotConfigured) || errors.Is(err, ErrPolicyNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrInvalidSlip) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrDuplicateAdjustment)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAdjustmentNotFound)
}

// IsPolicyNotFound returns true if a company has no stored payroll policy.
func IsPolicyNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound)
}
