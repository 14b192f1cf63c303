package tax

import "errors"

var (
	// ErrInvalidPeriodCount is returned when a period count or total is not positive.
	ErrInvalidPeriodCount = errors.New("period count must be positive")

	// ErrInvalidElapsed is returned when elapsed months are negative.
	ErrInvalidElapsed = errors.New("elapsed periods must not be negative")
)

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriodCount) || errors.Is(err, ErrInvalidElapsed)
}
