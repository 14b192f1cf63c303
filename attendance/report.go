/*
report.go - Attendance report surface

PURPOSE:
  Renders aggregated records as report rows with human-readable durations,
  describes the report columns, and defines the shapes a report run can
  come back in.

RESULT SHAPES:
  Report runners have historically returned 2 to 5 parts:
    (columns, rows)
    (columns, rows, message)
    (columns, rows, message, chart)
    (columns, rows, message, chart, summary)
  or a map with "columns" and "result" keys. Result is a tagged union over
  those shapes; CanonicalRows collapses any of them to []Row so payroll code
  only ever sees one shape.

DURATIONS:
  Row durations are text ("1h 30m", "00:00:00"). Consumers read them back
  with generic.ParseDuration (see RowTotals).

SEE ALSO:
  - export.go: XLSX rendering of the same columns/rows
  - payroll/attendance_hook.go: consumes CanonicalRows
*/
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// COLUMNS
// =============================================================================

// Column describes one report column.
type Column struct {
	FieldName string `json:"fieldname"`
	Label     string `json:"label"`
	FieldType string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	Width     int    `json:"width"`
}

// BaseColumns is the column set before overtime columns are added.
func BaseColumns() []Column {
	return []Column{
		{FieldName: "employee", Label: "Employee", FieldType: "Link", Options: "Employee", Width: 150},
		{FieldName: "employee_name", Label: "Employee Name", FieldType: "Data", Width: 150},
		{FieldName: "department", Label: "Department", FieldType: "Link", Options: "Department", Width: 150},
		{FieldName: "company", Label: "Company", FieldType: "Link", Options: "Company", Width: 150},
		{FieldName: "attendance_date", Label: "Attendance Date", FieldType: "Date", Width: 120},
		{FieldName: "shift", Label: "Shift", FieldType: "Link", Options: "Shift Type", Width: 120},
		{FieldName: "shift_start", Label: "Shift Start", FieldType: "Data", Width: 100},
		{FieldName: "shift_end", Label: "Shift End", FieldType: "Data", Width: 100},
		{FieldName: "first_checkin", Label: "First Checkin", FieldType: "Datetime", Width: 150},
		{FieldName: "last_checkin", Label: "Last Checkin", FieldType: "Datetime", Width: 150},
		{FieldName: "in_time", Label: "In Time", FieldType: "Time", Width: 100},
		{FieldName: "out_time", Label: "Out Time", FieldType: "Time", Width: 100},
		{FieldName: "working_hours", Label: "Working Hours", FieldType: "Data", Width: 120},
		{FieldName: "late_entry_hrs", Label: "Late Entry By", FieldType: "Data", Width: 120},
		{FieldName: "early_exit_hrs", Label: "Early Exit By", FieldType: "Data", Width: 120},
		{FieldName: "status", Label: "Status", FieldType: "Data", Width: 100},
		{FieldName: "attendance_id", Label: "Attendance ID", FieldType: "Link", Options: "Attendance", Width: 150},
	}
}

// OvertimeColumns are appended to the base report by the overtime extension.
func OvertimeColumns() []Column {
	return []Column{
		{FieldName: "over_time", Label: "Overtime", FieldType: "Data", Width: 100},
		{FieldName: "actual_over_time", Label: "Actual Overtime", FieldType: "Data", Width: 100},
	}
}

// Columns is the full report column set.
func Columns() []Column {
	return InsertColumnsAfter(BaseColumns(), "early_exit_hrs", OvertimeColumns())
}

// InsertColumnsAfter inserts extra right after the column named anchor,
// or appends them if anchor is absent.
func InsertColumnsAfter(columns []Column, anchor string, extra []Column) []Column {
	out := make([]Column, 0, len(columns)+len(extra))
	inserted := false
	for _, c := range columns {
		out = append(out, c)
		if !inserted && c.FieldName == anchor {
			out = append(out, extra...)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, extra...)
	}
	return out
}

// =============================================================================
// ROWS
// =============================================================================

const zeroClock = "00:00:00"

// Row is one rendered report line. Field names follow the column set.
type Row struct {
	Employee       string `json:"employee"`
	EmployeeName   string `json:"employee_name"`
	Department     string `json:"department"`
	Company        string `json:"company"`
	AttendanceDate string `json:"attendance_date"`
	Shift          string `json:"shift"`
	ShiftStart     string `json:"shift_start"`
	ShiftEnd       string `json:"shift_end"`
	FirstCheckin   string `json:"first_checkin"`
	LastCheckin    string `json:"last_checkin"`
	InTime         string `json:"in_time"`
	OutTime        string `json:"out_time"`
	WorkingHours   string `json:"working_hours"`
	LateEntryHrs   string `json:"late_entry_hrs"`
	EarlyExitHrs   string `json:"early_exit_hrs"`
	OverTime       string `json:"over_time"`
	ActualOverTime string `json:"actual_over_time"`
	Status         string `json:"status"`
	AttendanceID   string `json:"attendance_id"`
}

func (r *Row) field(name string) *string {
	switch name {
	case "employee":
		return &r.Employee
	case "employee_name":
		return &r.EmployeeName
	case "department":
		return &r.Department
	case "company":
		return &r.Company
	case "attendance_date":
		return &r.AttendanceDate
	case "shift":
		return &r.Shift
	case "shift_start":
		return &r.ShiftStart
	case "shift_end":
		return &r.ShiftEnd
	case "first_checkin":
		return &r.FirstCheckin
	case "last_checkin":
		return &r.LastCheckin
	case "in_time":
		return &r.InTime
	case "out_time":
		return &r.OutTime
	case "working_hours":
		return &r.WorkingHours
	case "late_entry_hrs":
		return &r.LateEntryHrs
	case "early_exit_hrs":
		return &r.EarlyExitHrs
	case "over_time":
		return &r.OverTime
	case "actual_over_time":
		return &r.ActualOverTime
	case "status":
		return &r.Status
	case "attendance_id":
		return &r.AttendanceID
	}
	return nil
}

// Value returns the text of the named field, "" for unknown fields.
func (r Row) Value(field string) string {
	if p := r.field(field); p != nil {
		return *p
	}
	return ""
}

// BuildRows renders records with their deviations.
func BuildRows(records []Record, considerGrace bool) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, BuildRow(rec, considerGrace))
	}
	return rows
}

func BuildRow(rec Record, considerGrace bool) Row {
	d := ComputeDeviation(rec, considerGrace)
	row := Row{
		Employee:       rec.EmployeeID,
		EmployeeName:   rec.EmployeeName,
		Department:     rec.Department,
		Company:        rec.Company,
		AttendanceDate: rec.Date.Format("2006-01-02"),
		Shift:          rec.ShiftName(),
		WorkingHours:   durationText(rec.WorkingSeconds),
		LateEntryHrs:   durationText(d.LateEntrySeconds),
		EarlyExitHrs:   durationText(d.EarlyExitSeconds),
		OverTime:       durationText(d.OvertimeSeconds),
		ActualOverTime: durationText(d.ActualOvertimeSeconds),
		Status:         string(rec.Status),
		AttendanceID:   rec.AttendanceID,
	}
	if rec.Shift != nil {
		row.ShiftStart = rec.Shift.StartTime.String()
		row.ShiftEnd = rec.Shift.EndTime.String()
	}
	if !rec.FirstCheckin.IsZero() {
		row.FirstCheckin = rec.FirstCheckin.Format("2006-01-02 15:04:05")
		row.InTime = rec.FirstCheckin.Format("15:04:05")
	}
	if !rec.LastCheckin.IsZero() {
		row.LastCheckin = rec.LastCheckin.Format("2006-01-02 15:04:05")
		row.OutTime = rec.LastCheckin.Format("15:04:05")
	}
	if row.Status == "" {
		row.Status = string(StatusNotMarked)
	}
	return row
}

func durationText(seconds int64) string {
	if seconds <= 0 {
		return zeroClock
	}
	return generic.FormatDuration(seconds)
}

// RowTotals parses the duration columns of rows back into seconds and sums them.
func RowTotals(rows []Row) (Totals, error) {
	var t Totals
	for _, row := range rows {
		var d Deviation
		var working int64
		for _, f := range []struct {
			text string
			dst  *int64
		}{
			{row.WorkingHours, &working},
			{row.LateEntryHrs, &d.LateEntrySeconds},
			{row.EarlyExitHrs, &d.EarlyExitSeconds},
			{row.OverTime, &d.OvertimeSeconds},
			{row.ActualOverTime, &d.ActualOvertimeSeconds},
		} {
			secs, err := generic.ParseDuration(f.text)
			if err != nil {
				return Totals{}, fmt.Errorf("row %s %s: %w", row.Employee, row.AttendanceDate, err)
			}
			*f.dst = secs
		}
		t.Add(Record{WorkingSeconds: working}, d)
	}
	return t, nil
}

// =============================================================================
// RESULT SHAPES - Tagged union over report return values
// =============================================================================

// Result is any report return value. Parts exposes the positional view.
type Result interface {
	Parts() []any
}

// Chart is a simple labelled dataset chart.
type Chart struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// SummaryItem is one headline figure shown above the report.
type SummaryItem struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Datatype string `json:"datatype"`
}

type TwoField struct {
	Columns []Column
	Rows    []Row
}

type ThreeField struct {
	Columns []Column
	Rows    []Row
	Message string
}

type FourField struct {
	Columns []Column
	Rows    []Row
	Message string
	Chart   *Chart
}

type FiveField struct {
	Columns []Column
	Rows    []Row
	Message string
	Chart   *Chart
	Summary []SummaryItem
}

// MapResult is the dictionary-shaped result: keys "columns" and "result".
type MapResult map[string]any

func (r TwoField) Parts() []any   { return []any{r.Columns, r.Rows} }
func (r ThreeField) Parts() []any { return []any{r.Columns, r.Rows, r.Message} }
func (r FourField) Parts() []any  { return []any{r.Columns, r.Rows, r.Message, r.Chart} }
func (r FiveField) Parts() []any {
	return []any{r.Columns, r.Rows, r.Message, r.Chart, r.Summary}
}
func (r MapResult) Parts() []any { return []any{r["columns"], r["result"]} }

// ErrUnexpectedShape is returned when no rows can be extracted from a result.
var ErrUnexpectedShape = errors.New("unexpected report result shape")

// CanonicalRows extracts the rows of any result. Unknown result types fall
// back to reading the second positional part; that fallback is logged.
func CanonicalRows(logger *slog.Logger, res Result) ([]Row, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch v := res.(type) {
	case nil:
		return nil, ErrUnexpectedShape
	case TwoField:
		return v.Rows, nil
	case ThreeField:
		return v.Rows, nil
	case FourField:
		return v.Rows, nil
	case FiveField:
		return v.Rows, nil
	case *FiveField:
		return v.Rows, nil
	case MapResult:
		return rowsFrom(v["result"])
	}

	parts := res.Parts()
	logger.Warn("unrecognized report result shape, using first two parts",
		"type", fmt.Sprintf("%T", res), "parts", len(parts))
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %d parts", ErrUnexpectedShape, len(parts))
	}
	return rowsFrom(parts[1])
}

func rowsFrom(v any) ([]Row, error) {
	switch rows := v.(type) {
	case nil:
		return nil, nil
	case []Row:
		return rows, nil
	case []map[string]any:
		out := make([]Row, 0, len(rows))
		for _, m := range rows {
			out = append(out, rowFromMap(m))
		}
		return out, nil
	case []any:
		out := make([]Row, 0, len(rows))
		for _, item := range rows {
			switch r := item.(type) {
			case Row:
				out = append(out, r)
			case map[string]any:
				out = append(out, rowFromMap(r))
			default:
				return nil, fmt.Errorf("%w: row of type %T", ErrUnexpectedShape, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: rows of type %T", ErrUnexpectedShape, v)
}

var durationFields = map[string]bool{
	"working_hours": true, "late_entry_hrs": true, "early_exit_hrs": true,
	"over_time": true, "actual_over_time": true,
}

func rowFromMap(m map[string]any) Row {
	var row Row
	for key, raw := range m {
		dst := row.field(key)
		if dst == nil || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			*dst = v
		case float64:
			*dst = numericText(key, int64(v))
		case int:
			*dst = numericText(key, int64(v))
		case int64:
			*dst = numericText(key, v)
		default:
			*dst = fmt.Sprint(v)
		}
	}
	return row
}

// Numeric durations are whole seconds.
func numericText(key string, n int64) string {
	if durationFields[key] {
		return generic.FormatClock(n)
	}
	return strconv.FormatInt(n, 10)
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter runs the attendance report end to end.
type Reporter struct {
	Aggregator *Aggregator
}

func NewReporter(source Source) *Reporter {
	return &Reporter{Aggregator: NewAggregator(source)}
}

// Run aggregates and renders the report for the period.
func (r *Reporter) Run(ctx context.Context, period generic.Period, f Filters) (Result, error) {
	records, err := r.Aggregator.Aggregate(ctx, period, f)
	if err != nil {
		return nil, err
	}

	totals := Summarize(records, f.ConsiderGrace)
	res := FiveField{
		Columns: Columns(),
		Rows:    BuildRows(records, f.ConsiderGrace),
		Chart:   statusChart(records),
		Summary: summaryItems(totals),
	}
	if len(records) == 0 {
		res.Message = "No check-ins found for the selected filters"
	}
	return res, nil
}

func statusChart(records []Record) *Chart {
	order := []Status{StatusPresent, StatusHalfDay, StatusWorkFromHome, StatusOnLeave, StatusAbsent, StatusNotMarked}
	counts := make(map[Status]float64)
	for _, rec := range records {
		counts[rec.Status]++
	}
	chart := &Chart{Type: "bar", Datasets: []Dataset{{Name: "Days"}}}
	for _, s := range order {
		chart.Labels = append(chart.Labels, string(s))
		chart.Datasets[0].Values = append(chart.Datasets[0].Values, counts[s])
	}
	return chart
}

func summaryItems(t Totals) []SummaryItem {
	return []SummaryItem{
		{Label: "Days", Value: strconv.Itoa(t.Days), Datatype: "Int"},
		{Label: "Late Entry", Value: durationText(t.LateEntrySeconds), Datatype: "Data"},
		{Label: "Early Exit", Value: durationText(t.EarlyExitSeconds), Datatype: "Data"},
		{Label: "Overtime", Value: durationText(t.OvertimeSeconds), Datatype: "Data"},
		{Label: "Actual Overtime", Value: durationText(t.ActualOvertimeSeconds), Datatype: "Data"},
	}
}
