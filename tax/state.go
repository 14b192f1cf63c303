/*
Package tax spreads a year's structured income tax over the pay periods of a
payroll year.

PURPOSE:
  The host payroll engine computes, for each variable tax component of a pay
  slip, the tax due on the whole year's structured earnings and how much of
  it has already been withheld. What is left is spread evenly over the
  periods of the year. Some jurisdictions pay a 13th salary and withhold
  over 13 periods instead of 12; this package implements that spreading and
  the matching period-factor and projection adjustments.

KEY CONCEPTS:
  - PeriodTaxState: the per-component tax fields of one slip
  - Normalize: recompute the current period's share over N periods
  - PeriodFactor: fraction of the payroll year elapsed at the slip start
  - ProjectThirteenthMonth: count the 13th salary in future earnings

EXAMPLE:
  total structured tax  = 130,000
  previously withheld   =  30,000
  13 periods            -> current structured = 100,000 / 13 = 7,692.31

SEE ALSO:
  - period.go: period factor and months elapsed
  - projection.go: 13th month projection
  - payroll/tax_hook.go: applies all of the above to a slip
*/
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/generic"
)

const (
	// StandardPeriods is the number of monthly periods in a payroll year.
	StandardPeriods = 12

	// ThirteenPeriods is used where a 13th salary is withheld on.
	ThirteenPeriods = 13

	// DefaultTotalPeriods is the period total used for period factors.
	DefaultTotalPeriods = ThirteenPeriods
)

// =============================================================================
// PERIOD TAX STATE
// =============================================================================

// PeriodTaxState holds the tax fields of one variable tax component on a slip.
// CurrentTaxAmount is never negative after Normalize.
type PeriodTaxState struct {
	TotalStructuredTaxAmount    decimal.Decimal `json:"total_structured_tax_amount"`
	PreviousTotalPaidTaxes      decimal.Decimal `json:"previous_total_paid_taxes"`
	CurrentStructuredTaxAmount  decimal.Decimal `json:"current_structured_tax_amount"`
	CurrentTaxAmount            decimal.Decimal `json:"current_tax_amount"`
	FullTaxOnAdditionalEarnings decimal.Decimal `json:"full_tax_on_additional_earnings"`

	// StructuredTaxComputed is set once the host engine has populated
	// CurrentStructuredTaxAmount. Normalize leaves unset states alone.
	StructuredTaxComputed bool `json:"structured_tax_computed"`
}

// PeriodCount returns the number of periods tax is spread over.
func PeriodCount(thirteenthMonth bool) int {
	if thirteenthMonth {
		return ThirteenPeriods
	}
	return StandardPeriods
}

// Normalize recomputes the current period's share of structured tax over
// periodCount periods.
//
// States with an additional-salary tax component, or whose structured amount
// was never computed, are returned unchanged. Applying Normalize twice gives
// the same result as applying it once.
func Normalize(state PeriodTaxState, periodCount int, hasAdditional bool) (PeriodTaxState, error) {
	if periodCount <= 0 {
		return state, fmt.Errorf("%w: %d", ErrInvalidPeriodCount, periodCount)
	}
	if hasAdditional || !state.StructuredTaxComputed {
		return state, nil
	}

	remaining := state.TotalStructuredTaxAmount.Sub(state.PreviousTotalPaidTaxes)
	state.CurrentStructuredTaxAmount = remaining.Div(decimal.NewFromInt(int64(periodCount)))
	state.CurrentTaxAmount = generic.MaxZero(state.CurrentStructuredTaxAmount.Add(state.FullTaxOnAdditionalEarnings))
	return state, nil
}
