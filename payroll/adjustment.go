/*
Package payroll books attendance-driven pay adjustments and runs the
pay-slip extension hooks.

PURPOSE:
  When a pay slip is validated, the employee's overtime and lateness for the
  slip period are turned into additional-salary entries: an Earning for
  overtime, a Deduction for lateness. Each entry is created at most once per
  employee, component and period, then added to the slip as a line.

KEY CONCEPTS IN THIS FILE (adjustment.go):
  - AdjustmentEntry: one additional-salary document
  - Direction: Earning or Deduction
  - AdjustmentStatus: Draft -> Submitted (one way)

LIFECYCLE:
  Insert (Draft) -> Submit (Submitted). Submitted entries are never changed.

SEE ALSO:
  - poster.go: creates entries from attendance totals
  - store.go: persistence interfaces
  - hooks.go: pay-slip pipeline
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ADJUSTMENT ENTRY
// =============================================================================

type Direction string

const (
	DirectionEarning   Direction = "Earning"
	DirectionDeduction Direction = "Deduction"
)

type AdjustmentKind string

const (
	KindOvertime AdjustmentKind = "Overtime"
	KindLateness AdjustmentKind = "Lateness"
)

type AdjustmentStatus string

const (
	StatusDraft     AdjustmentStatus = "Draft"
	StatusSubmitted AdjustmentStatus = "Submitted"
)

// AdjustmentEntry is an additional-salary document.
type AdjustmentEntry struct {
	ID          string
	EmployeeID  string
	Component   string
	Kind        AdjustmentKind
	Amount      decimal.Decimal
	PayrollDate time.Time // period end date
	Company     string
	Direction   Direction
	Status      AdjustmentStatus
	CreatedAt   time.Time
}

// Validate checks the fields every stored entry must carry.
func (e AdjustmentEntry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidAdjustment)
	case e.EmployeeID == "":
		return fmt.Errorf("%w: missing employee", ErrInvalidAdjustment)
	case e.Component == "":
		return fmt.Errorf("%w: missing component", ErrInvalidAdjustment)
	case e.Direction != DirectionEarning && e.Direction != DirectionDeduction:
		return fmt.Errorf("%w: direction %q", ErrInvalidAdjustment, e.Direction)
	case e.PayrollDate.IsZero():
		return fmt.Errorf("%w: missing payroll date", ErrInvalidAdjustment)
	case e.Amount.IsNegative():
		return fmt.Errorf("%w: negative amount %s", ErrInvalidAdjustment, e.Amount)
	}
	return nil
}

// =============================================================================
// FILTER
// =============================================================================

// AdjustmentFilter selects entries. Zero-valued fields match anything;
// From/To bound PayrollDate inclusively.
type AdjustmentFilter struct {
	EmployeeID string
	Component  string
	Direction  Direction
	Status     AdjustmentStatus
	From       time.Time
	To         time.Time
}

// Matches reports whether e satisfies the filter.
func (f AdjustmentFilter) Matches(e AdjustmentEntry) bool {
	switch {
	case f.EmployeeID != "" && e.EmployeeID != f.EmployeeID:
		return false
	case f.Component != "" && e.Component != f.Component:
		return false
	case f.Direction != "" && e.Direction != f.Direction:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case !f.From.IsZero() && e.PayrollDate.Before(f.From):
		return false
	case !f.To.IsZero() && e.PayrollDate.After(f.To):
		return false
	}
	return true
}
