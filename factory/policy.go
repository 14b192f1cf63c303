/*
Package factory converts JSON/YAML configuration into engine types.

PURPOSE:
  Shift types and company payroll policies are configured as documents:
  posted to the API, stored as config_json in SQLite, or listed in the
  server's YAML config. The factory turns those documents into
  attendance.ShiftDefinition and payroll.PolicyConfig values, validating
  them on the way, and back.

JSON SCHEMA (shift type):
  {
    "name": "Day",
    "start_time": "09:00",
    "end_time": "17:00",
    "late_entry_grace_minutes": 10,
    "early_exit_grace_minutes": 10,
    "overtime_pay_rate": "300",
    "lateness_fine_rate": "120",
    "overtime_component": "Overtime",
    "lateness_component": "Lateness Fine"
  }

JSON SCHEMA (company):
  {
    "id": "Acme MU",
    "country": "Mauritius",
    "thirteenth_month_tax": true,
    "thirteen_period_countries": ["Mauritius"],
    "overtime_basis": "clock"
  }

  Rates are decimal strings. Times are "HH:MM" or "HH:MM:SS"; either may
  be omitted.

USAGE:
  f := NewPolicyFactory()
  shift, err := f.ParseShiftType(jsonString)
  policy, err := f.ParseCompany(jsonString)

SEE ALSO:
  - config/config.go: YAML config reuses these document types
  - store/sqlite/sqlite.go: stores documents as config_json
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/payroll"
)

// ErrInvalidConfig is returned when a document fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ShiftTypeJSON is the document form of a shift type.
type ShiftTypeJSON struct {
	Name                  string `json:"name" yaml:"name"`
	StartTime             string `json:"start_time,omitempty" yaml:"start_time"`
	EndTime               string `json:"end_time,omitempty" yaml:"end_time"`
	LateEntryGraceMinutes int    `json:"late_entry_grace_minutes,omitempty" yaml:"late_entry_grace_minutes"`
	EarlyExitGraceMinutes int    `json:"early_exit_grace_minutes,omitempty" yaml:"early_exit_grace_minutes"`
	OvertimePayRate       string `json:"overtime_pay_rate,omitempty" yaml:"overtime_pay_rate"`
	LatenessFineRate      string `json:"lateness_fine_rate,omitempty" yaml:"lateness_fine_rate"`
	OvertimeComponent     string `json:"overtime_component,omitempty" yaml:"overtime_component"`
	LatenessComponent     string `json:"lateness_component,omitempty" yaml:"lateness_component"`
}

// CompanyJSON is the document form of a company payroll policy.
type CompanyJSON struct {
	ID                      string   `json:"id" yaml:"id"`
	Country                 string   `json:"country,omitempty" yaml:"country"`
	ThirteenthMonthTax      bool     `json:"thirteenth_month_tax,omitempty" yaml:"thirteenth_month_tax"`
	ThirteenPeriodCountries []string `json:"thirteen_period_countries,omitempty" yaml:"thirteen_period_countries"`
	OvertimeBasis           string   `json:"overtime_basis,omitempty" yaml:"overtime_basis"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts configuration documents to engine types.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParseShiftType parses a JSON shift type document.
func (f *PolicyFactory) ParseShiftType(jsonStr string) (attendance.ShiftDefinition, error) {
	var sj ShiftTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift type JSON: %v", ErrInvalidConfig, err)
	}
	return f.ShiftTypeFromJSON(sj)
}

// ShiftTypeFromJSON validates a shift type document.
func (f *PolicyFactory) ShiftTypeFromJSON(sj ShiftTypeJSON) (attendance.ShiftDefinition, error) {
	if sj.Name == "" {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift type name is required", ErrInvalidConfig)
	}

	start, err := generic.ParseTimeOfDay(sj.StartTime)
	if err != nil {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift %q start_time: %v", ErrInvalidConfig, sj.Name, err)
	}
	end, err := generic.ParseTimeOfDay(sj.EndTime)
	if err != nil {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift %q end_time: %v", ErrInvalidConfig, sj.Name, err)
	}
	if start.Valid && end.Valid && end.Seconds <= start.Seconds {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift %q ends before it starts", ErrInvalidConfig, sj.Name)
	}
	if sj.LateEntryGraceMinutes < 0 || sj.EarlyExitGraceMinutes < 0 {
		return attendance.ShiftDefinition{}, fmt.Errorf("%w: shift %q grace minutes must not be negative", ErrInvalidConfig, sj.Name)
	}

	overtimeRate, err := parseRate(sj.Name, "overtime_pay_rate", sj.OvertimePayRate)
	if err != nil {
		return attendance.ShiftDefinition{}, err
	}
	finesRate, err := parseRate(sj.Name, "lateness_fine_rate", sj.LatenessFineRate)
	if err != nil {
		return attendance.ShiftDefinition{}, err
	}

	return attendance.ShiftDefinition{
		Name:                  sj.Name,
		StartTime:             start,
		EndTime:               end,
		LateEntryGraceMinutes: sj.LateEntryGraceMinutes,
		EarlyExitGraceMinutes: sj.EarlyExitGraceMinutes,
		OvertimePayRate:       overtimeRate,
		LatenessFineRate:      finesRate,
		OvertimeComponent:     sj.OvertimeComponent,
		LatenessComponent:     sj.LatenessComponent,
	}, nil
}

// ShiftTypeToJSON converts a shift definition to its document form.
func (f *PolicyFactory) ShiftTypeToJSON(s attendance.ShiftDefinition) ShiftTypeJSON {
	sj := ShiftTypeJSON{
		Name:                  s.Name,
		LateEntryGraceMinutes: s.LateEntryGraceMinutes,
		EarlyExitGraceMinutes: s.EarlyExitGraceMinutes,
		OvertimeComponent:     s.OvertimeComponent,
		LatenessComponent:     s.LatenessComponent,
	}
	if s.StartTime.Valid {
		sj.StartTime = s.StartTime.String()
	}
	if s.EndTime.Valid {
		sj.EndTime = s.EndTime.String()
	}
	if !s.OvertimePayRate.IsZero() {
		sj.OvertimePayRate = s.OvertimePayRate.String()
	}
	if !s.LatenessFineRate.IsZero() {
		sj.LatenessFineRate = s.LatenessFineRate.String()
	}
	return sj
}

// ParseCompany parses a JSON company document.
func (f *PolicyFactory) ParseCompany(jsonStr string) (payroll.PolicyConfig, error) {
	var cj CompanyJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return payroll.PolicyConfig{}, fmt.Errorf("%w: company JSON: %v", ErrInvalidConfig, err)
	}
	return f.CompanyFromJSON(cj)
}

// CompanyFromJSON validates a company document. Overtime basis defaults to clock.
func (f *PolicyFactory) CompanyFromJSON(cj CompanyJSON) (payroll.PolicyConfig, error) {
	if cj.ID == "" {
		return payroll.PolicyConfig{}, fmt.Errorf("%w: company id is required", ErrInvalidConfig)
	}

	basis := payroll.OvertimeBasis(cj.OvertimeBasis)
	if basis == "" {
		basis = payroll.OvertimeClock
	}
	if !basis.Valid() {
		return payroll.PolicyConfig{}, fmt.Errorf("%w: company %q overtime_basis %q", ErrInvalidConfig, cj.ID, cj.OvertimeBasis)
	}

	return payroll.PolicyConfig{
		Company:                 cj.ID,
		Country:                 cj.Country,
		ThirteenthMonthTax:      cj.ThirteenthMonthTax,
		ThirteenPeriodCountries: append([]string(nil), cj.ThirteenPeriodCountries...),
		OvertimeBasis:           basis,
	}, nil
}

// CompanyToJSON converts a policy to its document form.
func (f *PolicyFactory) CompanyToJSON(p payroll.PolicyConfig) CompanyJSON {
	return CompanyJSON{
		ID:                      p.Company,
		Country:                 p.Country,
		ThirteenthMonthTax:      p.ThirteenthMonthTax,
		ThirteenPeriodCountries: append([]string(nil), p.ThirteenPeriodCountries...),
		OvertimeBasis:           string(p.OvertimeBasis),
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRate(shift, field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: shift %q %s %q", ErrInvalidConfig, shift, field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: shift %q %s must not be negative", ErrInvalidConfig, shift, field)
	}
	return d, nil
}
