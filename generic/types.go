/*
Package generic provides the domain-agnostic primitives of the payroll engine.

PURPOSE:
  Attendance, tax and payroll packages all need the same small vocabulary:
  durations in seconds, wall-clock times, inclusive calendar periods and
  currency amounts. Keeping them here stops the domain packages from
  growing their own slightly different copies.

KEY CONCEPTS:
  - Seconds: every duration is an int64 count of whole seconds
  - TimeOfDay: a shift boundary, seconds since midnight plus a "set" flag
  - Period: inclusive [Start, End] range of calendar days
  - Money: decimal.Decimal, never float64

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal to avoid floating-point drift
  2. Whole seconds: sub-second precision is dropped at the edges
  3. Inclusive days: a period always covers End's full calendar day

SEE ALSO:
  - duration.go: text <-> seconds
  - time.go: time-of-day and calendar helpers
  - period.go: Period type
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// MoneyPlaces is the rounding precision for posted currency amounts.
const MoneyPlaces = 2

var secondsPerHour = decimal.NewFromInt(3600)

// Hours converts whole seconds to fractional hours.
func Hours(seconds int64) decimal.Decimal {
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

// HourlyAmount prices a number of seconds at a per-hour rate, rounded to MoneyPlaces.
func HourlyAmount(seconds int64, ratePerHour decimal.Decimal) decimal.Decimal {
	return Hours(seconds).Mul(ratePerHour).Round(MoneyPlaces)
}

// MustParseDecimal is decimal.NewFromString for literals; it panics on bad input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Errorf("%w: decimal %q", ErrInvalidFormat, s))
	}
	return d
}

// MaxZero floors d at zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ClampSeconds floors a seconds value at zero.
func ClampSeconds(s int64) int64 {
	if s < 0 {
		return 0
	}
	return s
}
