package attendance

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// XLSX EXPORT
// =============================================================================

const reportSheet = "Attendance"

// WriteXLSX renders columns and rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, columns []Column, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reportSheet, cell, col.Label); err != nil {
			return err
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(reportSheet, name, name, float64(col.Width)/7); err != nil {
				return err
			}
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(reportSheet, cell, row.Value(col.FieldName)); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// =============================================================================
// XLSX IMPORT - Device exports
// =============================================================================
//
// Clock devices export punches as a sheet with a header row. Recognized
// headers (case-insensitive): employee, employee_name, department, company,
// time, shift, skip_auto_attendance. "employee" and "time" are required.
// Time cells may be "2006-01-02 15:04:05", "2006-01-02T15:04:05" or an
// Excel serial number.

// ReadCheckinsXLSX parses the first sheet of a workbook into check-in events.
func ReadCheckinsXLSX(r io.Reader) ([]Checkin, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	idx := make(map[string]int)
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"employee", "time"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Checkin
	for n, row := range rows[1:] {
		employee := cell(row, "employee")
		if employee == "" {
			continue
		}
		at, err := parseCellTime(cell(row, "time"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		skip, _ := strconv.ParseBool(cell(row, "skip_auto_attendance"))
		out = append(out, Checkin{
			EmployeeID:         employee,
			EmployeeName:       cell(row, "employee_name"),
			Department:         cell(row, "department"),
			Company:            cell(row, "company"),
			Time:               at,
			Shift:              cell(row, "shift"),
			SkipAutoAttendance: skip,
		})
	}
	return out, nil
}

func parseCellTime(value string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid check-in time %q", value)
}
