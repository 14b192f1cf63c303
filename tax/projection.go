package tax

import "github.com/shopspring/decimal"

// =============================================================================
// 13TH MONTH PROJECTION
// =============================================================================
//
// The host engine projects taxable earnings for the remaining periods of
// the year. Where a 13th salary is paid, one extra month of the current
// period's taxable earnings is added to that projection so that the annual
// tax accounts for it.

// TaxableEarnings is the current period's taxable pay.
type TaxableEarnings struct {
	TaxableEarnings             decimal.Decimal `json:"taxable_earnings"`
	AmountExemptedFromIncomeTax decimal.Decimal `json:"amount_exempted_from_income_tax"`
}

// Projection is the future structured earnings projected by the host engine.
type Projection struct {
	FutureStructuredTaxableEarnings                decimal.Decimal `json:"future_structured_taxable_earnings"`
	FutureStructuredTaxableEarningsBeforeExemption decimal.Decimal `json:"future_structured_taxable_earnings_before_exemption"`
}

// ProjectThirteenthMonth adds one month of current earnings to the projection.
func ProjectThirteenthMonth(current TaxableEarnings, future Projection) Projection {
	return Projection{
		FutureStructuredTaxableEarnings: future.FutureStructuredTaxableEarnings.Add(current.TaxableEarnings),
		FutureStructuredTaxableEarningsBeforeExemption: future.FutureStructuredTaxableEarningsBeforeExemption.
			Add(current.TaxableEarnings).
			Add(current.AmountExemptedFromIncomeTax),
	}
}
