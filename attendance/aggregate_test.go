package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newSource() *attendance.MemorySource {
	src := attendance.NewMemorySource()
	src.AddShift(*dayShift(10, 10))
	return src
}

func punch(src *attendance.MemorySource, emp, name string, t time.Time) {
	src.AddCheckin(attendance.Checkin{
		ID:           emp + t.Format("150405"),
		EmployeeID:   emp,
		EmployeeName: name,
		Department:   "Ops",
		Company:      "Acme MU",
		Time:         t,
		Shift:        "Day",
	})
}

func march(d int, clock string) time.Time {
	return generic.MustTimeOfDay(clock).On(generic.Date(2024, time.March, d))
}

func marchPeriod(from, to int) generic.Period {
	return generic.Period{Start: generic.Date(2024, time.March, from), End: generic.Date(2024, time.March, to)}
}

// =============================================================================
// GROUPING
// =============================================================================

func TestAggregate_GroupsByEmployeeAndDay(t *testing.T) {
	// GIVEN: Three punches on one day, one on the next
	src := newSource()
	punch(src, "E1", "Ada", march(4, "12:00"))
	punch(src, "E1", "Ada", march(4, "09:05"))
	punch(src, "E1", "Ada", march(4, "17:30"))
	punch(src, "E1", "Ada", march(5, "09:00"))

	// WHEN: Aggregating the week
	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 8), attendance.DefaultFilters())
	require.NoError(t, err)

	// THEN: One record per day, newest first
	require.Len(t, records, 2)
	assert.Equal(t, generic.Date(2024, time.March, 5), records[0].Date)
	assert.Zero(t, records[0].WorkingSeconds)

	first := records[1]
	assert.Equal(t, march(4, "09:05"), first.FirstCheckin)
	assert.Equal(t, march(4, "17:30"), first.LastCheckin)
	assert.Equal(t, int64(8*3600+25*60), first.WorkingSeconds)
	require.NotNil(t, first.Shift)
	assert.Equal(t, "17:00:00", first.Shift.EndTime.String())
	assert.Equal(t, attendance.StatusNotMarked, first.Status)
}

func TestAggregate_SkipsFlaggedEvents(t *testing.T) {
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:00"))
	src.AddCheckin(attendance.Checkin{
		EmployeeID: "E1", EmployeeName: "Ada", Time: march(4, "20:00"), Shift: "Day", SkipAutoAttendance: true,
	})

	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), attendance.DefaultFilters())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, march(4, "09:00"), records[0].LastCheckin)
}

func TestAggregate_ToDateIsInclusive(t *testing.T) {
	// GIVEN: A punch late on the last day of the period
	src := newSource()
	punch(src, "E1", "Ada", march(8, "23:59:59"))
	punch(src, "E1", "Ada", march(9, "00:00"))

	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 8), attendance.DefaultFilters())
	require.NoError(t, err)

	// THEN: It is counted; the next day is not
	require.Len(t, records, 1)
	assert.Equal(t, generic.Date(2024, time.March, 8), records[0].Date)
}

func TestAggregate_OrdersByDateDescThenName(t *testing.T) {
	src := newSource()
	punch(src, "E2", "Zoe", march(4, "09:00"))
	punch(src, "E1", "Ada", march(4, "09:00"))
	punch(src, "E3", "Ada", march(4, "09:00"))
	punch(src, "E2", "Zoe", march(5, "09:00"))

	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 5), attendance.DefaultFilters())
	require.NoError(t, err)

	var got []string
	for _, r := range records {
		got = append(got, r.EmployeeID)
	}
	assert.Equal(t, []string{"E2", "E1", "E3", "E2"}, got)
}

func TestAggregate_InvalidPeriod(t *testing.T) {
	_, err := attendance.NewAggregator(newSource()).Aggregate(context.Background(), marchPeriod(8, 4), attendance.DefaultFilters())
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// FILTERS AND LOOKUPS
// =============================================================================

func TestAggregate_LateEntryOnly(t *testing.T) {
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:05"))
	punch(src, "E2", "Bob", march(4, "09:30"))

	f := attendance.DefaultFilters()
	f.LateEntryOnly = true
	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), f)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "E2", records[0].EmployeeID)
}

func TestAggregate_DeviationFiltersAlwaysAllowGrace(t *testing.T) {
	// GIVEN: 10 min grace; Ada is 5 min late and leaves 5 min early
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:05"))
	punch(src, "E1", "Ada", march(4, "16:55"))
	punch(src, "E2", "Bob", march(4, "09:30"))
	punch(src, "E2", "Bob", march(4, "16:30"))

	// WHEN: Filtering with grace turned off for the deviation columns
	f := attendance.DefaultFilters()
	f.ConsiderGrace = false
	f.LateEntryOnly = true
	f.EarlyExitOnly = true
	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), f)
	require.NoError(t, err)

	// THEN: Only Bob crosses the grace-adjusted thresholds
	require.Len(t, records, 1)
	assert.Equal(t, "E2", records[0].EmployeeID)
}

func TestAggregate_EmployeeFilter(t *testing.T) {
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:00"))
	punch(src, "E2", "Bob", march(4, "09:00"))

	f := attendance.DefaultFilters()
	f.Employee = "E2"
	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), f)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Bob", records[0].EmployeeName)
}

func TestAggregate_MarkedAttendance(t *testing.T) {
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:00"))
	src.Mark(attendance.MarkedAttendance{ID: "ATT-1", EmployeeID: "E1", Date: march(4, "00:00"), Status: attendance.StatusPresent})

	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), attendance.DefaultFilters())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "ATT-1", records[0].AttendanceID)
	assert.Equal(t, attendance.StatusPresent, records[0].Status)
}

func TestAggregate_UnknownShiftHasNoDeviation(t *testing.T) {
	src := attendance.NewMemorySource()
	punch(src, "E1", "Ada", march(4, "11:00"))

	records, err := attendance.NewAggregator(src).Aggregate(context.Background(), marchPeriod(4, 4), attendance.DefaultFilters())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Nil(t, records[0].Shift)
	assert.Equal(t, attendance.Deviation{}, attendance.ComputeDeviation(records[0], true))
}
