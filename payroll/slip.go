package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/tax"
)

// =============================================================================
// SLIP - The pay slip the hooks operate on
// =============================================================================

// Line is one earning or deduction row on a slip.
type Line struct {
	Component        string          `json:"salary_component"`
	Amount           decimal.Decimal `json:"amount"`
	AdditionalSalary string          `json:"additional_salary,omitempty"`
}

// TaxComponent is a variable tax component and its computed state.
type TaxComponent struct {
	State                        tax.PeriodTaxState `json:"state"`
	HasAdditionalSalaryComponent bool               `json:"has_additional_salary_component"`
}

// Slip holds the fields the host payroll engine exposes to hooks.
type Slip struct {
	ID         string
	EmployeeID string
	Company    string
	ShiftType  string
	StartDate  time.Time
	EndDate    time.Time
	Frequency  tax.Frequency

	// PayrollYearStart anchors period-factor month counting.
	PayrollYearStart time.Time

	CurrentTaxableEarnings tax.TaxableEarnings
	Projection             tax.Projection

	// Host engine's period factor, possibly replaced by PeriodFactorHook.
	PeriodFactor     decimal.Decimal
	RemainingPeriods int

	TaxComponents map[string]*TaxComponent

	Earnings   []Line
	Deductions []Line

	// Policy is resolved once by Pipeline.Process before any hook runs.
	Policy PolicyConfig
}

// Validate checks the fields every hook relies on.
func (s *Slip) Validate() error {
	switch {
	case s.EmployeeID == "":
		return fmt.Errorf("%w: missing employee", ErrInvalidSlip)
	case s.StartDate.IsZero() || s.EndDate.IsZero():
		return fmt.Errorf("%w: missing period", ErrInvalidSlip)
	case s.EndDate.Before(s.StartDate):
		return fmt.Errorf("%w: %w", ErrInvalidSlip, generic.ErrInvalidPeriod)
	}
	return nil
}

// Period is the slip's pay period, inclusive of both dates.
func (s *Slip) Period() generic.Period {
	return generic.Period{Start: generic.StartOfDay(s.StartDate), End: generic.StartOfDay(s.EndDate)}
}

func (s *Slip) AppendEarning(l Line) {
	s.Earnings = append(s.Earnings, l)
}

func (s *Slip) AppendDeduction(l Line) {
	s.Deductions = append(s.Deductions, l)
}

// HasAdditionalSalary reports whether a line already references the entry.
func (s *Slip) HasAdditionalSalary(id string) bool {
	for _, l := range s.Earnings {
		if l.AdditionalSalary == id {
			return true
		}
	}
	for _, l := range s.Deductions {
		if l.AdditionalSalary == id {
			return true
		}
	}
	return false
}

// TaxComponentNames returns the variable tax component names in sorted order.
func (s *Slip) TaxComponentNames() []string {
	names := make([]string, 0, len(s.TaxComponents))
	for name := range s.TaxComponents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
