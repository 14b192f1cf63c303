package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// SOURCE - Collaborator providing raw events and lookups
// =============================================================================

// Source supplies the raw data the aggregator needs.
// Implementations: store/sqlite.Store, MemorySource (tests, demos).
type Source interface {
	// Checkins returns events with from <= time < until, in any order.
	Checkins(ctx context.Context, from, until time.Time) ([]Checkin, error)

	// ShiftType returns the named shift definition, or generic.ErrNotFound.
	ShiftType(ctx context.Context, name string) (*ShiftDefinition, error)

	// MarkedAttendance returns the finalized attendance for employee+day,
	// or (nil, nil) if none exists.
	MarkedAttendance(ctx context.Context, employeeID string, day time.Time) (*MarkedAttendance, error)
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator turns check-in events into one Record per employee per day.
type Aggregator struct {
	Source Source
	Logger *slog.Logger
}

func NewAggregator(source Source) *Aggregator {
	return &Aggregator{Source: source, Logger: slog.Default()}
}

// Aggregate returns the records for the period, ordered by date descending
// then employee name ascending.
func (a *Aggregator) Aggregate(ctx context.Context, period generic.Period, f Filters) ([]Record, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	events, err := a.Source.Checkins(ctx, period.From(), period.Until())
	if err != nil {
		return nil, fmt.Errorf("load checkins: %w", err)
	}

	records := GroupCheckins(filterEvents(events, period, f))

	shifts := make(map[string]*ShiftDefinition)
	out := records[:0]
	for _, rec := range records {
		if name := rec.ShiftName(); name != "" {
			shift, err := a.shift(ctx, shifts, name)
			if err != nil {
				return nil, err
			}
			rec.Shift = shift
		}

		marked, err := a.Source.MarkedAttendance(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return nil, fmt.Errorf("load attendance for %s on %s: %w", rec.EmployeeID, rec.Date.Format("2006-01-02"), err)
		}
		if marked != nil {
			rec.AttendanceID = marked.ID
			rec.Status = marked.Status
		}

		// The filters always allow grace; ConsiderGrace only affects magnitudes.
		if f.LateEntryOnly && !LateEntryCrossed(rec, true) {
			continue
		}
		if f.EarlyExitOnly && !EarlyExitCrossed(rec, true) {
			continue
		}
		out = append(out, rec)
	}

	SortRecords(out)
	return out, nil
}

func (a *Aggregator) shift(ctx context.Context, cache map[string]*ShiftDefinition, name string) (*ShiftDefinition, error) {
	if s, ok := cache[name]; ok {
		return s, nil
	}
	s, err := a.Source.ShiftType(ctx, name)
	if generic.IsNotFound(err) {
		a.logger().Debug("unknown shift type on checkin", "shift", name)
		cache[name] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load shift type %q: %w", name, err)
	}
	cache[name] = s
	return s, nil
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func filterEvents(events []Checkin, period generic.Period, f Filters) []Checkin {
	var kept []Checkin
	for _, e := range events {
		switch {
		case e.SkipAutoAttendance:
		case !period.Contains(e.Time):
		case f.Employee != "" && e.EmployeeID != f.Employee:
		case f.Shift != "" && e.Shift != f.Shift:
		case f.Department != "" && e.Department != f.Department:
		case f.Company != "" && e.Company != f.Company:
		default:
			kept = append(kept, e)
		}
	}
	return kept
}

// =============================================================================
// GROUPING
// =============================================================================

type dayKey struct {
	employee string
	day      time.Time
}

// GroupCheckins groups events by (employee, calendar day). The shift on a
// returned record is a name-only placeholder taken from the earliest event
// that names one; Aggregate replaces it with the full definition.
func GroupCheckins(events []Checkin) []Record {
	sorted := append([]Checkin(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	index := make(map[dayKey]int)
	var records []Record
	for _, e := range sorted {
		k := dayKey{employee: e.EmployeeID, day: generic.StartOfDay(e.Time)}
		i, ok := index[k]
		if !ok {
			index[k] = len(records)
			records = append(records, Record{
				EmployeeID:   e.EmployeeID,
				EmployeeName: e.EmployeeName,
				Department:   e.Department,
				Company:      e.Company,
				Date:         k.day,
				FirstCheckin: e.Time,
				LastCheckin:  e.Time,
				Status:       StatusNotMarked,
			})
			i = len(records) - 1
		}

		rec := &records[i]
		rec.LastCheckin = e.Time
		if rec.Shift == nil && e.Shift != "" {
			rec.Shift = &ShiftDefinition{Name: e.Shift}
		}
	}

	for i := range records {
		elapsed := records[i].LastCheckin.Truncate(time.Second).Sub(records[i].FirstCheckin.Truncate(time.Second))
		records[i].WorkingSeconds = generic.ClampSeconds(int64(elapsed / time.Second))
	}
	return records
}

// SortRecords orders by date descending, then employee name, then employee id.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.EmployeeID < b.EmployeeID
	})
}
