/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:     EmployeeDTO, CreateEmployeeRequest
  Check-ins:    CheckinRequest, ImportResultDTO, MarkAttendanceRequest
  Report:       ReportDTO, DeviationDTO
  Pay slip:     SlipRequest, SlipDTO, AdjustmentDTO
  Tax:          NormalizeRequest, PeriodFactorDTO
  Durations:    DurationDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest

  Shift types and companies use factory.ShiftTypeJSON / factory.CompanyJSON
  directly.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
  Decimal amounts are strings on the wire.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: ShiftTypeJSON, CompanyJSON
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/payroll"
	"github.com/warp/paye-engine/tax"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Company      string `json:"company"`
	DefaultShift string `json:"default_shift,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request body for creating an employee.
type CreateEmployeeRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Company      string `json:"company"`
	DefaultShift string `json:"default_shift"`
}

// =============================================================================
// CHECK-INS & ATTENDANCE
// =============================================================================

// CheckinRequest records one clock event. Time is "2006-01-02 15:04:05"
// or RFC3339; the wall-clock part is what gets stored.
type CheckinRequest struct {
	ID                 string `json:"id"`
	Employee           string `json:"employee"`
	Time               string `json:"time"`
	Shift              string `json:"shift"`
	SkipAutoAttendance bool   `json:"skip_auto_attendance"`
}

type CheckinDTO struct {
	ID       string `json:"id"`
	Employee string `json:"employee"`
	Time     string `json:"time"`
	Shift    string `json:"shift,omitempty"`
}

type ImportResultDTO struct {
	Imported int `json:"imported"`
}

// MarkAttendanceRequest finalizes one employee's status for a day.
type MarkAttendanceRequest struct {
	ID       string `json:"id"`
	Employee string `json:"employee"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// ReportDTO is the attendance report in its five-part form.
type ReportDTO struct {
	Columns []attendance.Column      `json:"columns"`
	Result  []attendance.Row         `json:"result"`
	Message string                   `json:"message,omitempty"`
	Chart   *attendance.Chart        `json:"chart,omitempty"`
	Summary []attendance.SummaryItem `json:"report_summary,omitempty"`
}

// DeviationDTO is one employee's deviation on one day.
type DeviationDTO struct {
	Employee              string `json:"employee"`
	Date                  string `json:"date"`
	Shift                 string `json:"shift,omitempty"`
	WorkingSeconds        int64  `json:"working_seconds"`
	LateEntrySeconds      int64  `json:"late_entry_seconds"`
	EarlyExitSeconds      int64  `json:"early_exit_seconds"`
	OvertimeSeconds       int64  `json:"overtime_seconds"`
	ActualOvertimeSeconds int64  `json:"actual_overtime_seconds"`
	LateEntry             string `json:"late_entry_hrs"`
	EarlyExit             string `json:"early_exit_hrs"`
	Overtime              string `json:"over_time"`
}

// =============================================================================
// PAY SLIPS
// =============================================================================

// SlipRequest is a pay slip as computed by the host engine, before hooks.
type SlipRequest struct {
	ID                     string                           `json:"id"`
	Employee               string                           `json:"employee"`
	Company                string                           `json:"company"`
	ShiftType              string                           `json:"shift_type"`
	StartDate              string                           `json:"start_date"`
	EndDate                string                           `json:"end_date"`
	Frequency              string                           `json:"payroll_frequency"`
	PayrollYearStart       string                           `json:"payroll_year_start"`
	CurrentTaxableEarnings tax.TaxableEarnings              `json:"current_taxable_earnings"`
	Projection             tax.Projection                   `json:"projection"`
	PeriodFactor           decimal.Decimal                  `json:"period_factor"`
	RemainingPeriods       int                              `json:"remaining_sub_periods"`
	TaxComponents          map[string]*payroll.TaxComponent `json:"tax_components"`
	Earnings               []payroll.Line                   `json:"earnings"`
	Deductions             []payroll.Line                   `json:"deductions"`
}

// SlipDTO is the slip after every hook has run.
type SlipDTO struct {
	ID                     string                           `json:"id"`
	Employee               string                           `json:"employee"`
	Company                string                           `json:"company"`
	ShiftType              string                           `json:"shift_type,omitempty"`
	StartDate              string                           `json:"start_date"`
	EndDate                string                           `json:"end_date"`
	CurrentTaxableEarnings tax.TaxableEarnings              `json:"current_taxable_earnings"`
	Projection             tax.Projection                   `json:"projection"`
	PeriodFactor           decimal.Decimal                  `json:"period_factor"`
	RemainingPeriods       int                              `json:"remaining_sub_periods"`
	TaxComponents          map[string]*payroll.TaxComponent `json:"tax_components"`
	Earnings               []payroll.Line                   `json:"earnings"`
	Deductions             []payroll.Line                   `json:"deductions"`
	Policy                 PolicyDTO                        `json:"policy"`
}

type PolicyDTO struct {
	Company            string `json:"company"`
	ThirteenthMonthTax bool   `json:"thirteenth_month_tax"`
	OvertimeBasis      string `json:"overtime_basis"`
}

// AdjustmentDTO represents an additional-salary entry.
type AdjustmentDTO struct {
	ID          string `json:"id"`
	Employee    string `json:"employee"`
	Component   string `json:"salary_component"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	PayrollDate string `json:"payroll_date"`
	Company     string `json:"company"`
	Type        string `json:"type"`
	Status      string `json:"status"`
}

// =============================================================================
// TAX & DURATIONS
// =============================================================================

// NormalizeRequest spreads a tax state over the company's period count.
// PeriodCount overrides the count derived from ThirteenthMonthTax.
type NormalizeRequest struct {
	State                        tax.PeriodTaxState `json:"state"`
	ThirteenthMonthTax           bool               `json:"thirteenth_month_tax"`
	PeriodCount                  int                `json:"period_count"`
	HasAdditionalSalaryComponent bool               `json:"has_additional_salary_component"`
}

type NormalizeDTO struct {
	PeriodCount int                `json:"period_count"`
	State       tax.PeriodTaxState `json:"state"`
}

type PeriodFactorDTO struct {
	Elapsed          int    `json:"elapsed"`
	Total            int    `json:"total"`
	PeriodFactor     string `json:"period_factor"`
	RemainingPeriods int    `json:"remaining_sub_periods"`
}

type DurationDTO struct {
	Text      string `json:"text"`
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
	Clock     string `json:"clock"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
