package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// ATTENDANCE HOOK - Overtime and lateness on slip validation
// =============================================================================
//
//   Reporter.Run(employee, slip period)
//     -> CanonicalRows -> RowTotals
//     -> Poster.Post(overtime by policy basis, late entry)
//     -> one slip line per created entry

// ReportRunner produces an attendance report. *attendance.Reporter implements it.
type ReportRunner interface {
	Run(ctx context.Context, period generic.Period, f attendance.Filters) (attendance.Result, error)
}

// ShiftLookup resolves shift definitions. attendance.Source implementations satisfy it.
type ShiftLookup interface {
	ShiftType(ctx context.Context, name string) (*attendance.ShiftDefinition, error)
}

type AttendanceHook struct {
	Reports ReportRunner
	Shifts  ShiftLookup
	Poster  *Poster
	Logger  *slog.Logger
}

func (h *AttendanceHook) Name() string { return "attendance_adjustments" }
func (h *AttendanceHook) Stage() Stage { return StageValidate }

func (h *AttendanceHook) Apply(ctx context.Context, slip *Slip) error {
	if slip.ShiftType == "" {
		h.logger().Debug("slip has no shift type, no attendance adjustments", "slip", slip.ID)
		return nil
	}

	shift, err := h.Shifts.ShiftType(ctx, slip.ShiftType)
	if generic.IsNotFound(err) {
		return &ConfigError{Shift: slip.ShiftType, Missing: []string{"shift type"}}
	}
	if err != nil {
		return fmt.Errorf("load shift type %q: %w", slip.ShiftType, err)
	}

	filters := attendance.DefaultFilters()
	filters.Employee = slip.EmployeeID
	res, err := h.Reports.Run(ctx, slip.Period(), filters)
	if err != nil {
		return fmt.Errorf("attendance report: %w", err)
	}
	rows, err := attendance.CanonicalRows(h.logger(), res)
	if err != nil {
		return err
	}
	totals, err := attendance.RowTotals(rows)
	if err != nil {
		return err
	}

	overtime := totals.OvertimeSeconds
	if slip.Policy.OvertimeBasis == OvertimeActual {
		overtime = totals.ActualOvertimeSeconds
	}

	entries, err := h.Poster.Post(ctx, PostRequest{
		EmployeeID:      slip.EmployeeID,
		Company:         slip.Company,
		Shift:           slip.ShiftType,
		PeriodStart:     slip.StartDate,
		PeriodEnd:       slip.EndDate,
		OvertimeSeconds: overtime,
		LateSeconds:     totals.LateEntrySeconds,
		Rates:           RatesFor(shift),
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		if slip.HasAdditionalSalary(e.ID) {
			continue
		}
		line := Line{Component: e.Component, Amount: e.Amount, AdditionalSalary: e.ID}
		if e.Direction == DirectionEarning {
			slip.AppendEarning(line)
		} else {
			slip.AppendDeduction(line)
		}
	}
	return nil
}

func (h *AttendanceHook) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
