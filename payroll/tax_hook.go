package payroll

import (
	"context"
	"fmt"

	"github.com/warp/paye-engine/tax"
)

// =============================================================================
// TAX HOOKS
// =============================================================================

// ThirteenthMonthHook adds a 13th month of taxable earnings to the future
// projection when the company withholds on a 13th salary.
type ThirteenthMonthHook struct{}

func (ThirteenthMonthHook) Name() string { return "thirteenth_month_projection" }
func (ThirteenthMonthHook) Stage() Stage { return StageTaxableEarnings }

func (ThirteenthMonthHook) Apply(_ context.Context, slip *Slip) error {
	if !slip.Policy.ThirteenthMonthTax {
		return nil
	}
	slip.Projection = tax.ProjectThirteenthMonth(slip.CurrentTaxableEarnings, slip.Projection)
	return nil
}

// PeriodFactorHook replaces the engine's period factor for 13-period
// countries on monthly payroll.
type PeriodFactorHook struct{}

func (PeriodFactorHook) Name() string { return "period_factor" }
func (PeriodFactorHook) Stage() Stage { return StagePeriodFactor }

func (PeriodFactorHook) Apply(_ context.Context, slip *Slip) error {
	factor, remaining, err := tax.PeriodFactor(slip.PeriodFactor, slip.RemainingPeriods, tax.FactorOptions{
		Country:                 slip.Policy.Country,
		ThirteenPeriodCountries: slip.Policy.ThirteenPeriodCountries,
		Frequency:               slip.Frequency,
		PayrollYearStart:        slip.PayrollYearStart,
		SlipStart:               slip.StartDate,
	})
	if err != nil {
		return err
	}
	slip.PeriodFactor = factor
	slip.RemainingPeriods = remaining
	return nil
}

// TaxNormalizerHook spreads each variable tax component over the company's
// period count and writes the result back into the slip.
type TaxNormalizerHook struct{}

func (TaxNormalizerHook) Name() string { return "period_tax_normalizer" }
func (TaxNormalizerHook) Stage() Stage { return StageVariableTax }

func (TaxNormalizerHook) Apply(_ context.Context, slip *Slip) error {
	periods := tax.PeriodCount(slip.Policy.ThirteenthMonthTax)
	for _, name := range slip.TaxComponentNames() {
		comp := slip.TaxComponents[name]
		if comp == nil {
			continue
		}
		state, err := tax.Normalize(comp.State, periods, comp.HasAdditionalSalaryComponent)
		if err != nil {
			return fmt.Errorf("component %s: %w", name, err)
		}
		comp.State = state
	}
	return nil
}
