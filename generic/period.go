package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive calendar date range
// =============================================================================

// Period is a range of calendar days [Start, End], both inclusive.
// Pay periods, report date filters and adjustment overlap checks all use it.
//
// Examples:
//   - Monthly pay period: Mar 1 - Mar 31
//   - Report window:      Mar 10 - Mar 10 (a single day, 24 hours wide)
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod validates and builds a period from two dates.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: StartOfDay(start), End: StartOfDay(end)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate rejects periods whose end precedes their start.
func (p Period) Validate() error {
	if StartOfDay(p.End).Before(StartOfDay(p.Start)) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// From is the first instant of the period.
func (p Period) From() time.Time { return StartOfDay(p.Start) }

// Until is the first instant after the period: midnight following End.
// Range queries use [From, Until) so that End's whole day is included.
func (p Period) Until() time.Time { return StartOfDay(p.End).AddDate(0, 0, 1) }

// Contains returns true if t falls on any day of the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From()) && t.Before(p.Until())
}

// Overlaps returns true if both periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.From().Before(other.Until()) && other.From().Before(p.Until())
}

// Days returns all days in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.From(); d.Before(p.Until()); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}
