package attendance

import (
	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// DEVIATION RULES
// =============================================================================
//
// Thresholds vs magnitudes:
//   The grace period decides WHETHER a late entry or early exit is flagged.
//   The reported duration is always measured from the raw shift boundary.
//   With start 09:00 and 20 min grace, a 09:25 arrival is late by 25 min,
//   not 5; a 09:15 arrival is not late at all.
//
// Units:
//   Everything is whole seconds. Clock comparisons use seconds-of-day, so
//   shifts crossing midnight are not supported.
//
// Single punch:
//   A day with zero working time (one check-in, or in == out) has no
//   deviation at all. A missing clock-out is not lateness or early exit.

// ComputeDeviation measures a record against its shift.
func ComputeDeviation(rec Record, considerGrace bool) Deviation {
	shift := rec.Shift
	if !shift.HasBounds() || rec.WorkingSeconds == 0 {
		return Deviation{}
	}

	var d Deviation
	hasIn := !rec.FirstCheckin.IsZero()
	hasOut := !rec.LastCheckin.IsZero()
	in := generic.SecondsOfDay(rec.FirstCheckin)
	out := generic.SecondsOfDay(rec.LastCheckin)

	if hasIn && shift.StartTime.Valid && in > lateThreshold(shift, considerGrace) {
		d.LateEntrySeconds = generic.ClampSeconds(in - shift.StartTime.Seconds)
	}

	if hasOut && shift.EndTime.Valid {
		if out < earlyThreshold(shift, considerGrace) {
			d.EarlyExitSeconds = generic.ClampSeconds(shift.EndTime.Seconds - out)
		}
		if out > shift.EndTime.Seconds {
			d.OvertimeSeconds = generic.ClampSeconds(out - shift.EndTime.Seconds)
		}
	}

	if shift.StartTime.Valid && shift.EndTime.Valid {
		if duration := shift.DurationSeconds(); rec.WorkingSeconds > duration {
			d.ActualOvertimeSeconds = generic.ClampSeconds(rec.WorkingSeconds - duration)
		}
	}

	return d
}

// LateEntryCrossed reports whether the first check-in is past the
// (optionally grace-adjusted) shift start.
func LateEntryCrossed(rec Record, considerGrace bool) bool {
	if rec.Shift == nil || !rec.Shift.StartTime.Valid || rec.FirstCheckin.IsZero() {
		return false
	}
	return generic.SecondsOfDay(rec.FirstCheckin) > lateThreshold(rec.Shift, considerGrace)
}

// EarlyExitCrossed reports whether the last check-in is before the
// (optionally grace-adjusted) shift end.
func EarlyExitCrossed(rec Record, considerGrace bool) bool {
	if rec.Shift == nil || !rec.Shift.EndTime.Valid || rec.LastCheckin.IsZero() {
		return false
	}
	return generic.SecondsOfDay(rec.LastCheckin) < earlyThreshold(rec.Shift, considerGrace)
}

func lateThreshold(s *ShiftDefinition, considerGrace bool) int64 {
	threshold := s.StartTime.Seconds
	if considerGrace && s.LateEntryGraceMinutes > 0 {
		threshold += int64(s.LateEntryGraceMinutes) * 60
	}
	return threshold
}

func earlyThreshold(s *ShiftDefinition, considerGrace bool) int64 {
	threshold := s.EndTime.Seconds
	if considerGrace && s.EarlyExitGraceMinutes > 0 {
		threshold -= int64(s.EarlyExitGraceMinutes) * 60
	}
	return threshold
}

// Summarize computes and sums deviations for every record.
func Summarize(records []Record, considerGrace bool) Totals {
	var t Totals
	for _, rec := range records {
		t.Add(rec, ComputeDeviation(rec, considerGrace))
	}
	return t
}
