package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/payroll"
	"github.com/warp/paye-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dayShift() attendance.ShiftDefinition {
	return attendance.ShiftDefinition{
		Name:                  "Day",
		StartTime:             generic.MustTimeOfDay("09:00"),
		EndTime:               generic.MustTimeOfDay("17:00"),
		LateEntryGraceMinutes: 10,
		OvertimePayRate:       generic.MustParseDecimal("300"),
		LatenessFineRate:      generic.MustParseDecimal("120"),
		OvertimeComponent:     "Overtime",
		LatenessComponent:     "Lateness Fine",
	}
}

func at(d time.Time, clock string) time.Time {
	return generic.MustTimeOfDay(clock).On(d)
}

// =============================================================================
// ATTENDANCE SOURCE
// =============================================================================

func TestStore_CheckinsJoinEmployees(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: An employee with two events on one day and one outside the range
	require.NoError(t, s.SaveEmployee(ctx, sqlite.Employee{ID: "E1", Name: "Alice", Department: "Ops", Company: "Acme"}))
	d := generic.Date(2024, time.March, 4)
	require.NoError(t, s.SaveCheckins(ctx, []attendance.Checkin{
		{ID: "c1", EmployeeID: "E1", Time: at(d, "09:05"), Shift: "Day"},
		{ID: "c2", EmployeeID: "E1", Time: at(d, "17:45"), Shift: "Day"},
		{ID: "c3", EmployeeID: "E1", Time: at(d.AddDate(0, 0, 1), "09:00"), Shift: "Day"},
	}))

	// WHEN: Reading one day
	events, err := s.Checkins(ctx, d, d.AddDate(0, 0, 1))
	require.NoError(t, err)

	// THEN: Only that day's events, with the employee's details attached
	require.Len(t, events, 2)
	assert.Equal(t, "Alice", events[0].EmployeeName)
	assert.Equal(t, "Ops", events[0].Department)
	assert.Equal(t, "Acme", events[0].Company)
	assert.Equal(t, at(d, "09:05"), events[0].Time)
	assert.Equal(t, at(d, "17:45"), events[1].Time)
}

func TestStore_CheckinWithoutEmployeeRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	d := generic.Date(2024, time.March, 4)

	require.NoError(t, s.SaveCheckin(ctx, attendance.Checkin{ID: "c1", EmployeeID: "E9", Time: at(d, "08:00")}))

	events, err := s.Checkins(ctx, d, d.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "E9", events[0].EmployeeName)

	assert.ErrorIs(t, s.SaveCheckin(ctx, attendance.Checkin{ID: "c2"}), generic.ErrInvalidFormat)
}

func TestStore_ShiftTypes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveShiftType(ctx, dayShift()))

	got, err := s.ShiftType(ctx, "Day")
	require.NoError(t, err)
	assert.Equal(t, int64(9*3600), got.StartTime.Seconds)
	assert.Equal(t, 10, got.LateEntryGraceMinutes)
	assert.True(t, generic.MustParseDecimal("300").Equal(got.OvertimePayRate))
	assert.Equal(t, "Lateness Fine", got.LatenessComponent)

	_, err = s.ShiftType(ctx, "Night")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	// Upsert replaces the definition
	changed := dayShift()
	changed.LateEntryGraceMinutes = 0
	require.NoError(t, s.SaveShiftType(ctx, changed))
	all, err := s.ListShiftTypes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Zero(t, all[0].LateEntryGraceMinutes)
}

func TestStore_MarkedAttendance(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	d := generic.Date(2024, time.March, 4)

	got, err := s.MarkedAttendance(ctx, "E1", d)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.MarkAttendance(ctx, attendance.MarkedAttendance{ID: "ATT-1", EmployeeID: "E1", Date: d, Status: attendance.StatusPresent}))
	require.NoError(t, s.MarkAttendance(ctx, attendance.MarkedAttendance{ID: "ATT-2", EmployeeID: "E1", Date: d, Status: attendance.StatusHalfDay}))

	got, err = s.MarkedAttendance(ctx, "E1", d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ATT-1", got.ID)
	assert.Equal(t, attendance.StatusHalfDay, got.Status)

	err = s.MarkAttendance(ctx, attendance.MarkedAttendance{ID: "ATT-3", EmployeeID: "E1", Date: d, Status: "Sleeping"})
	assert.ErrorIs(t, err, generic.ErrInvalidFormat)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestStore_ResolvePolicy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.ResolvePolicy(ctx, "Acme")
	assert.ErrorIs(t, err, payroll.ErrPolicyNotFound)

	require.NoError(t, s.SaveCompany(ctx, payroll.PolicyConfig{
		Company:                 "Acme",
		Country:                 "Mauritius",
		ThirteenthMonthTax:      true,
		ThirteenPeriodCountries: []string{"Mauritius"},
		OvertimeBasis:           payroll.OvertimeActual,
	}))

	p, err := s.ResolvePolicy(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, p.ThirteenthMonthTax)
	assert.Equal(t, payroll.OvertimeActual, p.OvertimeBasis)

	list, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func adjustment(id string, day int) payroll.AdjustmentEntry {
	return payroll.AdjustmentEntry{
		ID:          id,
		EmployeeID:  "E1",
		Component:   "Overtime",
		Kind:        payroll.KindOvertime,
		Amount:      generic.MustParseDecimal("225.00"),
		PayrollDate: generic.Date(2024, time.March, day),
		Company:     "Acme",
		Direction:   payroll.DirectionEarning,
	}
}

func TestStore_CorruptDatesAreReported(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paye.db")
	s, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// GIVEN: Rows whose stored dates were edited outside the store
	require.NoError(t, s.SaveEmployee(ctx, sqlite.Employee{ID: "E1", Name: "Alice"}))
	require.NoError(t, s.Insert(ctx, adjustment("A", 31)))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, "UPDATE adjustments SET payroll_date = '31/03/2024' WHERE id = 'A'")
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, "UPDATE employees SET created_at = 'yesterday' WHERE id = 'E1'")
	require.NoError(t, err)

	// WHEN/THEN: Reads fail instead of returning zero dates
	_, err = s.Get(ctx, "A")
	assert.ErrorContains(t, err, "payroll_date")
	_, err = s.List(ctx, payroll.AdjustmentFilter{EmployeeID: "E1"})
	assert.ErrorContains(t, err, "payroll_date")
	_, err = s.GetEmployee(ctx, "E1")
	assert.ErrorContains(t, err, "created_at")
	_, err = s.ListEmployees(ctx)
	assert.ErrorContains(t, err, "created_at")
}

func TestStore_AdjustmentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: A draft entry
	require.NoError(t, s.Insert(ctx, adjustment("A", 31)))
	march := payroll.AdjustmentFilter{
		EmployeeID: "E1", Component: "Overtime", Direction: payroll.DirectionEarning,
		Status: payroll.StatusSubmitted,
		From:   generic.Date(2024, time.March, 1), To: generic.Date(2024, time.March, 31),
	}
	exists, err := s.Exists(ctx, march)
	require.NoError(t, err)
	assert.False(t, exists, "drafts do not count")

	// WHEN: Submitted
	submitted, err := s.Submit(ctx, "A")
	require.NoError(t, err)

	// THEN: Found by the submitted-in-period check, amount intact
	assert.Equal(t, payroll.StatusSubmitted, submitted.Status)
	exists, err = s.Exists(ctx, march)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.Get(ctx, "A")
	require.NoError(t, err)
	assert.True(t, generic.MustParseDecimal("225").Equal(got.Amount))
	assert.Equal(t, generic.Date(2024, time.March, 31), got.PayrollDate)

	_, err = s.Submit(ctx, "A")
	assert.ErrorIs(t, err, payroll.ErrAlreadySubmitted)
	assert.ErrorIs(t, s.Insert(ctx, adjustment("A", 1)), payroll.ErrDuplicateAdjustment)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrAdjustmentNotFound)
}

func TestStore_ListAdjustments(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Insert(ctx, adjustment("late", 20)))
	require.NoError(t, s.Insert(ctx, adjustment("early", 5)))
	require.NoError(t, s.Insert(ctx, adjustment("outside", 31)))

	list, err := s.List(ctx, payroll.AdjustmentFilter{EmployeeID: "E1", To: generic.Date(2024, time.March, 25)})
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "late", list[1].ID)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Insert(ctx, adjustment("kept", 1)))

	err := s.WithTx(ctx, func(tx payroll.AdjustmentStore) error {
		if err := tx.Insert(ctx, adjustment("dropped", 2)); err != nil {
			return err
		}
		exists, err := tx.Exists(ctx, payroll.AdjustmentFilter{EmployeeID: "E1", From: generic.Date(2024, time.March, 2)})
		if err != nil {
			return err
		}
		if !exists {
			return errors.New("insert not visible inside transaction")
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	list, err := s.List(ctx, payroll.AdjustmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].ID)
}

func TestStore_PosterEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: The poster writing through the SQLite store
	poster := payroll.NewPoster(s)
	req := payroll.PostRequest{
		EmployeeID:      "E1",
		Company:         "Acme",
		Shift:           "Day",
		PeriodStart:     generic.Date(2024, time.March, 1),
		PeriodEnd:       generic.Date(2024, time.March, 31),
		OvertimeSeconds: 2700,
		LateSeconds:     1800,
		Rates:           payroll.RatesFor(ptr(dayShift())),
	}

	// WHEN: Posting twice
	first, err := poster.Post(ctx, req)
	require.NoError(t, err)
	second, err := poster.Post(ctx, req)
	require.NoError(t, err)

	// THEN: One earning and one deduction, nothing new on the rerun
	assert.Len(t, first, 2)
	assert.Empty(t, second)

	list, err := s.List(ctx, payroll.AdjustmentFilter{EmployeeID: "E1"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveShiftType(ctx, dayShift()))
	require.NoError(t, s.Insert(ctx, adjustment("A", 1)))

	require.NoError(t, s.Reset(ctx))

	defs, err := s.ListShiftTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)
	list, err := s.List(ctx, payroll.AdjustmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func ptr[T any](v T) *T { return &v }
