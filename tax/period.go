package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// PAYROLL FREQUENCY
// =============================================================================

type Frequency string

const (
	FrequencyMonthly     Frequency = "Monthly"
	FrequencyFortnightly Frequency = "Fortnightly"
	FrequencyBimonthly   Frequency = "Bimonthly"
	FrequencyWeekly      Frequency = "Weekly"
	FrequencyDaily       Frequency = "Daily"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyFortnightly, FrequencyBimonthly, FrequencyWeekly, FrequencyDaily:
		return true
	}
	return false
}

// =============================================================================
// PERIOD FACTOR
// =============================================================================

// ResolvePeriodFactor returns elapsed/total and the number of periods left.
func ResolvePeriodFactor(elapsed, total int) (decimal.Decimal, int, error) {
	if total <= 0 {
		return decimal.Zero, 0, fmt.Errorf("%w: total %d", ErrInvalidPeriodCount, total)
	}
	if elapsed < 0 {
		return decimal.Zero, 0, fmt.Errorf("%w: %d", ErrInvalidElapsed, elapsed)
	}
	factor := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total)))
	return factor, total - elapsed, nil
}

// MonthsElapsed counts whole months from the payroll year anchor to the slip
// start. A slip starting on an earlier day-of-month than the anchor has not
// completed its last month. A zero anchor yields 0.
func MonthsElapsed(anchor, slipStart time.Time) int {
	if anchor.IsZero() {
		return 0
	}
	months := generic.MonthsBetween(anchor, slipStart)
	if slipStart.Day() < anchor.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// FactorOptions describes the slip a period factor is resolved for.
type FactorOptions struct {
	Country                 string
	ThirteenPeriodCountries []string
	Frequency               Frequency
	PayrollYearStart        time.Time
	SlipStart               time.Time
}

// UsesThirteenPeriods reports whether the country withholds over 13 periods.
func (o FactorOptions) UsesThirteenPeriods() bool {
	for _, c := range o.ThirteenPeriodCountries {
		if c == o.Country {
			return true
		}
	}
	return false
}

// PeriodFactor adjusts the host engine's period factor for 13-period
// countries on monthly payroll. Any other slip keeps the engine values.
func PeriodFactor(engineFactor decimal.Decimal, engineRemaining int, opts FactorOptions) (decimal.Decimal, int, error) {
	if !opts.UsesThirteenPeriods() || opts.Frequency != FrequencyMonthly {
		return engineFactor, engineRemaining, nil
	}
	return ResolvePeriodFactor(MonthsElapsed(opts.PayrollYearStart, opts.SlipStart), DefaultTotalPeriods)
}
