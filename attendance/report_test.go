package attendance_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/paye-engine/attendance"
)

// =============================================================================
// COLUMNS
// =============================================================================

func fieldNames(cols []attendance.Column) []string {
	var names []string
	for _, c := range cols {
		names = append(names, c.FieldName)
	}
	return names
}

func TestColumns_OvertimeFollowsEarlyExit(t *testing.T) {
	names := fieldNames(attendance.Columns())

	i := indexOf(names, "early_exit_hrs")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "over_time", names[i+1])
	assert.Equal(t, "actual_over_time", names[i+2])
	assert.Equal(t, len(attendance.BaseColumns())+2, len(names))
}

func TestInsertColumnsAfter_MissingAnchorAppends(t *testing.T) {
	base := []attendance.Column{{FieldName: "employee"}, {FieldName: "status"}}
	out := attendance.InsertColumnsAfter(base, "early_exit_hrs", attendance.OvertimeColumns())

	assert.Equal(t, []string{"employee", "status", "over_time", "actual_over_time"}, fieldNames(out))
}

func indexOf(items []string, want string) int {
	for i, s := range items {
		if s == want {
			return i
		}
	}
	return -1
}

// =============================================================================
// ROWS
// =============================================================================

func TestBuildRow_RendersDurations(t *testing.T) {
	row := attendance.BuildRow(record("09:30", "18:00", dayShift(0, 0)), true)

	assert.Equal(t, "2024-03-04", row.AttendanceDate)
	assert.Equal(t, "Day", row.Shift)
	assert.Equal(t, "09:30:00", row.InTime)
	assert.Equal(t, "18:00:00", row.OutTime)
	assert.Equal(t, "8h 30m", row.WorkingHours)
	assert.Equal(t, "30m", row.LateEntryHrs)
	assert.Equal(t, "00:00:00", row.EarlyExitHrs)
	assert.Equal(t, "1h", row.OverTime)
	assert.Equal(t, "30m", row.ActualOverTime)
	assert.Equal(t, "Not Marked", row.Status)
}

func TestRowTotals_ParsesRenderedRows(t *testing.T) {
	records := []attendance.Record{
		record("09:30", "18:00", dayShift(0, 0)),
		record("09:00", "16:00", dayShift(0, 0)),
	}

	totals, err := attendance.RowTotals(attendance.BuildRows(records, true))
	require.NoError(t, err)

	assert.Equal(t, attendance.Summarize(records, true), totals)
}

func TestRowTotals_RejectsMalformedClock(t *testing.T) {
	_, err := attendance.RowTotals([]attendance.Row{{OverTime: "1:xx:00"}})
	assert.Error(t, err)
}

// =============================================================================
// RESULT SHAPES
// =============================================================================

type positional []any

func (p positional) Parts() []any { return p }

func TestCanonicalRows_AllShapes(t *testing.T) {
	rows := []attendance.Row{{Employee: "E1", OverTime: "1h"}}
	cols := attendance.Columns()

	shapes := map[string]attendance.Result{
		"two":   attendance.TwoField{Columns: cols, Rows: rows},
		"three": attendance.ThreeField{Columns: cols, Rows: rows, Message: "m"},
		"four":  attendance.FourField{Columns: cols, Rows: rows},
		"five":  attendance.FiveField{Columns: cols, Rows: rows},
		"map": attendance.MapResult{
			"columns": cols,
			"result":  []map[string]any{{"employee": "E1", "over_time": "1h"}},
		},
		"positional": positional{cols, rows, "message", nil, nil, "extra"},
	}

	for name, res := range shapes {
		t.Run(name, func(t *testing.T) {
			got, err := attendance.CanonicalRows(nil, res)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "E1", got[0].Employee)
			assert.Equal(t, "1h", got[0].OverTime)
		})
	}
}

func TestCanonicalRows_NumericDurationsAreSeconds(t *testing.T) {
	res := attendance.MapResult{"result": []any{map[string]any{"employee": "E1", "over_time": float64(2700)}}}

	rows, err := attendance.CanonicalRows(nil, res)
	require.NoError(t, err)

	totals, err := attendance.RowTotals(rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2700), totals.OvertimeSeconds)
}

func TestCanonicalRows_TooFewParts(t *testing.T) {
	_, err := attendance.CanonicalRows(nil, positional{attendance.Columns()})
	assert.ErrorIs(t, err, attendance.ErrUnexpectedShape)
}

// =============================================================================
// REPORTER AND EXPORT
// =============================================================================

func TestReporter_Run(t *testing.T) {
	src := newSource()
	punch(src, "E1", "Ada", march(4, "09:30"))
	punch(src, "E1", "Ada", march(4, "17:00"))

	res, err := attendance.NewReporter(src).Run(context.Background(), marchPeriod(4, 4), attendance.DefaultFilters())
	require.NoError(t, err)

	five, ok := res.(attendance.FiveField)
	require.True(t, ok)
	require.Len(t, five.Rows, 1)
	assert.Equal(t, "30m", five.Rows[0].LateEntryHrs)
	assert.NotNil(t, five.Chart)
	assert.NotEmpty(t, five.Summary)
	assert.Empty(t, five.Message)
}

func TestReporter_EmptyHasMessage(t *testing.T) {
	res, err := attendance.NewReporter(newSource()).Run(context.Background(), marchPeriod(4, 4), attendance.DefaultFilters())
	require.NoError(t, err)
	assert.NotEmpty(t, res.(attendance.FiveField).Message)
}

func TestWriteXLSX_RoundTripsCells(t *testing.T) {
	rows := attendance.BuildRows([]attendance.Record{record("09:30", "18:00", dayShift(0, 0))}, true)

	var buf bytes.Buffer
	require.NoError(t, attendance.WriteXLSX(&buf, attendance.Columns(), rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Employee", got[0][0])
	assert.Equal(t, "EMP-001", got[1][0])
}

func TestReadCheckinsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Employee", "Employee_Name", "Time", "Shift"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"E1", "Ada", "2024-03-04 09:05:00", "Day"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "blank", "", ""}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	events, err := attendance.ReadCheckinsXLSX(&buf)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Ada", events[0].EmployeeName)
	assert.Equal(t, march(4, "09:05"), events[0].Time)
	assert.Equal(t, "Day", events[0].Shift)
}

func TestReadCheckinsXLSX_MissingTimeColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"Employee"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := attendance.ReadCheckinsXLSX(&buf)
	assert.Error(t, err)
}
