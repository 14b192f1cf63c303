/*
Package attendance derives daily lateness, early-exit and overtime from raw
clock events.

PURPOSE:
  Employees clock in and out through devices that produce a stream of
  check-in events. This package turns that stream into one record per
  employee per day (Aggregator), measures each record against the
  employee's shift (ComputeDeviation) and renders the result as an
  attendance report (Reporter).

KEY CONCEPTS IN THIS FILE (types.go):
  - Checkin: one raw clock event
  - ShiftDefinition: scheduled start/end plus grace periods and pay rates
  - Record: the per-employee-per-day aggregate
  - Deviation: late/early/overtime seconds for one record

DATA FLOW:
  Source.Checkins -> Aggregator.Aggregate -> []Record
  Record + ShiftDefinition -> ComputeDeviation -> Deviation
  []Record -> BuildRows -> Result (report surface)

SEE ALSO:
  - aggregate.go: grouping and filtering
  - deviation.go: shift deviation rules
  - report.go: report columns, rows and result shapes
  - payroll/attendance_hook.go: turns totals into pay adjustments
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// SHIFT DEFINITION
// =============================================================================

// ShiftDefinition is a shift type as configured for the company.
// Both boundaries are optional; a shift with neither yields no deviation.
type ShiftDefinition struct {
	Name                  string
	StartTime             generic.TimeOfDay
	EndTime               generic.TimeOfDay
	LateEntryGraceMinutes int
	EarlyExitGraceMinutes int

	// Pay side: rates are per hour, components name the salary
	// components adjustments are booked against.
	OvertimePayRate   decimal.Decimal
	LatenessFineRate  decimal.Decimal
	OvertimeComponent string
	LatenessComponent string
}

// HasBounds reports whether at least one of start and end is configured.
func (s *ShiftDefinition) HasBounds() bool {
	return s != nil && (s.StartTime.Valid || s.EndTime.Valid)
}

// DurationSeconds is end - start in seconds-of-day arithmetic (same-day shifts only).
func (s *ShiftDefinition) DurationSeconds() int64 {
	if s == nil || !s.StartTime.Valid || !s.EndTime.Valid {
		return 0
	}
	return s.EndTime.Seconds - s.StartTime.Seconds
}

// =============================================================================
// CHECK-IN EVENTS
// =============================================================================

// Checkin is a single raw clock event as delivered by the event source.
// Employee descriptive fields are denormalized onto the event.
type Checkin struct {
	ID                 string
	EmployeeID         string
	EmployeeName       string
	Department         string
	Company            string
	Time               time.Time
	Shift              string // shift type name, empty if unassigned
	SkipAutoAttendance bool
}

// =============================================================================
// ATTENDANCE RECORD
// =============================================================================

type Status string

const (
	StatusPresent      Status = "Present"
	StatusAbsent       Status = "Absent"
	StatusOnLeave      Status = "On Leave"
	StatusHalfDay      Status = "Half Day"
	StatusWorkFromHome Status = "Work From Home"
	StatusNotMarked    Status = "Not Marked"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusOnLeave, StatusHalfDay, StatusWorkFromHome, StatusNotMarked:
		return true
	}
	return false
}

// MarkedAttendance is a finalized attendance document for one employee and day.
type MarkedAttendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status
}

// Record summarizes one employee's clock events on one calendar day.
// Records are derived on every run and never persisted.
type Record struct {
	EmployeeID     string
	EmployeeName   string
	Department     string
	Company        string
	Date           time.Time
	FirstCheckin   time.Time
	LastCheckin    time.Time
	WorkingSeconds int64
	Shift          *ShiftDefinition
	AttendanceID   string
	Status         Status
}

// ShiftName returns the record's shift name or "" if unassigned.
func (r Record) ShiftName() string {
	if r.Shift == nil {
		return ""
	}
	return r.Shift.Name
}

// =============================================================================
// DEVIATION
// =============================================================================

// Deviation holds the measured differences between a record and its shift.
// Every field is >= 0.
type Deviation struct {
	LateEntrySeconds      int64
	EarlyExitSeconds      int64
	OvertimeSeconds       int64
	ActualOvertimeSeconds int64
}

// Totals accumulates deviations over many records.
type Totals struct {
	Days                  int
	WorkingSeconds        int64
	LateEntrySeconds      int64
	EarlyExitSeconds      int64
	OvertimeSeconds       int64
	ActualOvertimeSeconds int64
}

func (t *Totals) Add(rec Record, d Deviation) {
	t.Days++
	t.WorkingSeconds += rec.WorkingSeconds
	t.LateEntrySeconds += d.LateEntrySeconds
	t.EarlyExitSeconds += d.EarlyExitSeconds
	t.OvertimeSeconds += d.OvertimeSeconds
	t.ActualOvertimeSeconds += d.ActualOvertimeSeconds
}

// =============================================================================
// FILTERS
// =============================================================================

// Filters narrows an aggregation run. Empty strings mean "any".
type Filters struct {
	Employee      string
	Shift         string
	Department    string
	Company       string
	LateEntryOnly bool
	EarlyExitOnly bool

	// ConsiderGrace applies grace periods to the deviation thresholds of the
	// report rows. LateEntryOnly/EarlyExitOnly always use the grace-adjusted
	// thresholds. Callers that build Filters by hand should use
	// DefaultFilters to get the default of true.
	ConsiderGrace bool
}

// DefaultFilters returns filters matching everything with grace periods applied.
func DefaultFilters() Filters {
	return Filters{ConsiderGrace: true}
}
