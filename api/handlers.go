/*
handlers.go - HTTP API handlers for the PAYE attendance engine

PURPOSE:
  Exposes attendance reporting, pay-slip processing and the tax helpers via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Directory:
    GET    /api/employees                 List employees
    POST   /api/employees                 Create/update employee
    GET    /api/employees/{id}            Get employee
    GET    /api/shift-types               List shift types
    POST   /api/shift-types               Create/update shift type
    GET    /api/shift-types/{name}        Get shift type
    GET    /api/companies                 List company policies
    POST   /api/companies                 Create/update company policy
    GET    /api/companies/{id}            Get company policy

  Attendance:
    POST   /api/checkins                  Record a clock event
    POST   /api/checkins/import.xlsx      Import clock events from a workbook
    POST   /api/attendance                Mark finalized attendance
    GET    /api/attendance/report         Aggregated attendance report
    GET    /api/attendance/report.xlsx    Report as an XLSX workbook
    GET    /api/attendance/deviation      One employee's deviation for a day

  Payroll:
    POST   /api/payslips/process          Run the hook pipeline over a slip
    GET    /api/adjustments               List adjustment entries

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    GET    /api/scenarios/current         Currently loaded scenario
    POST   /api/scenarios/load            Reset and load a demo scenario

  Tax & utilities:
    POST   /api/tax/normalize             Normalize a period tax state
    GET    /api/tax/period-factor         Resolve a period factor
    GET    /api/durations/parse           Parse a duration string

REPORT QUERY PARAMETERS:
  from, to (YYYY-MM-DD, required), employee, shift, department, company,
  late_entry=1, early_exit=1, consider_grace=0|1 (default 1)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Missing pay configuration (shift components, company policy)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/factory"
	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/payroll"
	"github.com/warp/paye-engine/store/sqlite"
	"github.com/warp/paye-engine/tax"
)

const dateLayout = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	PolicyFactory *factory.PolicyFactory
	Reporter      *attendance.Reporter
	Pipeline      *payroll.Pipeline
	Logger        *slog.Logger

	// Track currently loaded demo scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store. The store serves
// as attendance source, adjustment store and policy resolver.
func NewHandler(store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	reporter := attendance.NewReporter(store)
	reporter.Aggregator.Logger = logger

	pipeline := payroll.NewStandardPipeline(store, store, store)
	pipeline.Logger = logger

	return &Handler{
		Store:         store,
		PolicyFactory: factory.NewPolicyFactory(),
		Reporter:      reporter,
		Pipeline:      pipeline,
		Logger:        logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := sqlite.Employee{
		ID:           req.ID,
		Name:         req.Name,
		Department:   req.Department,
		Company:      req.Company,
		DefaultShift: req.DefaultShift,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:           e.ID,
		Name:         e.Name,
		Department:   e.Department,
		Company:      e.Company,
		DefaultShift: e.DefaultShift,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SHIFT TYPE & COMPANY HANDLERS
// =============================================================================

// ListShiftTypes returns all shift types.
func (h *Handler) ListShiftTypes(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Store.ListShiftTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shift types", err)
		return
	}
	dtos := make([]factory.ShiftTypeJSON, len(defs))
	for i, d := range defs {
		dtos[i] = h.PolicyFactory.ShiftTypeToJSON(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShiftType returns one shift type.
func (h *Handler) GetShiftType(w http.ResponseWriter, r *http.Request) {
	def, err := h.Store.ShiftType(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeDomainError(w, "Failed to get shift type", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ShiftTypeToJSON(*def))
}

// CreateShiftType validates and stores a shift type document.
func (h *Handler) CreateShiftType(w http.ResponseWriter, r *http.Request) {
	var doc factory.ShiftTypeJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	def, err := h.PolicyFactory.ShiftTypeFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift type", err)
		return
	}
	if err := h.Store.SaveShiftType(r.Context(), def); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift type", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.PolicyFactory.ShiftTypeToJSON(def))
}

// ListCompanies returns all company policies.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}
	dtos := make([]factory.CompanyJSON, len(policies))
	for i, p := range policies {
		dtos[i] = h.PolicyFactory.CompanyToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCompany returns one company policy.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.ResolvePolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if payroll.IsPolicyNotFound(err) {
			writeError(w, http.StatusNotFound, "Company not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get company", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.CompanyToJSON(p))
}

// CreateCompany validates and stores a company policy document.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var doc factory.CompanyJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := h.PolicyFactory.CompanyFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid company", err)
		return
	}
	if err := h.Store.SaveCompany(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save company", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.PolicyFactory.CompanyToJSON(p))
}

// =============================================================================
// CHECK-IN & ATTENDANCE HANDLERS
// =============================================================================

// CreateCheckin records one clock event.
func (h *Handler) CreateCheckin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Employee == "" {
		writeError(w, http.StatusBadRequest, "employee is required", nil)
		return
	}
	at, err := parseTimestamp(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time (use YYYY-MM-DD HH:MM:SS)", err)
		return
	}

	c := attendance.Checkin{
		ID:                 req.ID,
		EmployeeID:         req.Employee,
		Time:               at,
		Shift:              req.Shift,
		SkipAutoAttendance: req.SkipAutoAttendance,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := h.Store.SaveCheckin(r.Context(), c); err != nil {
		h.writeDomainError(w, "Failed to save check-in", err)
		return
	}
	writeJSON(w, http.StatusCreated, CheckinDTO{
		ID:       c.ID,
		Employee: c.EmployeeID,
		Time:     c.Time.Format("2006-01-02 15:04:05"),
		Shift:    c.Shift,
	})
}

// ImportCheckins reads an XLSX workbook from the request body.
func (h *Handler) ImportCheckins(w http.ResponseWriter, r *http.Request) {
	events, err := attendance.ReadCheckinsXLSX(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid workbook", err)
		return
	}
	for i := range events {
		events[i].ID = uuid.NewString()
	}
	if err := h.Store.SaveCheckins(r.Context(), events); err != nil {
		h.writeDomainError(w, "Failed to import check-ins", err)
		return
	}
	h.Logger.Info("check-ins imported", "count", len(events))
	writeJSON(w, http.StatusCreated, ImportResultDTO{Imported: len(events)})
}

// MarkAttendance stores the finalized status for employee+day.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	a := attendance.MarkedAttendance{
		ID:         req.ID,
		EmployeeID: req.Employee,
		Date:       day,
		Status:     attendance.Status(req.Status),
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee is required", nil)
		return
	}
	if err := h.Store.MarkAttendance(r.Context(), a); err != nil {
		h.writeDomainError(w, "Failed to mark attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// AttendanceReport runs the aggregated attendance report.
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{
		Columns: res.Columns,
		Result:  nonNilRows(res.Rows),
		Message: res.Message,
		Chart:   res.Chart,
		Summary: res.Summary,
	})
}

// AttendanceReportXLSX streams the report as a workbook.
func (h *Handler) AttendanceReportXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := attendance.WriteXLSX(w, res.Columns, res.Rows); err != nil {
		h.Logger.Error("xlsx export failed", "error", err)
	}
}

func (h *Handler) runReport(w http.ResponseWriter, r *http.Request) (attendance.FiveField, bool) {
	period, filters, err := reportQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report filters", err)
		return attendance.FiveField{}, false
	}
	res, err := h.Reporter.Run(r.Context(), period, filters)
	if err != nil {
		h.writeDomainError(w, "Failed to run report", err)
		return attendance.FiveField{}, false
	}
	five, ok := res.(attendance.FiveField)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Unexpected report shape", attendance.ErrUnexpectedShape)
		return attendance.FiveField{}, false
	}
	return five, true
}

func reportQuery(r *http.Request) (generic.Period, attendance.Filters, error) {
	q := r.URL.Query()
	from, err := time.Parse(dateLayout, q.Get("from"))
	if err != nil {
		return generic.Period{}, attendance.Filters{}, fmt.Errorf("%w: from %q", generic.ErrInvalidFormat, q.Get("from"))
	}
	to, err := time.Parse(dateLayout, q.Get("to"))
	if err != nil {
		return generic.Period{}, attendance.Filters{}, fmt.Errorf("%w: to %q", generic.ErrInvalidFormat, q.Get("to"))
	}
	period, err := generic.NewPeriod(from, to)
	if err != nil {
		return generic.Period{}, attendance.Filters{}, err
	}

	f := attendance.DefaultFilters()
	f.Employee = q.Get("employee")
	f.Shift = q.Get("shift")
	f.Department = q.Get("department")
	f.Company = q.Get("company")
	f.LateEntryOnly = queryBool(q.Get("late_entry"), false)
	f.EarlyExitOnly = queryBool(q.Get("early_exit"), false)
	f.ConsiderGrace = queryBool(q.Get("consider_grace"), true)
	return period, f, nil
}

// Deviation measures one employee's day against their shift.
func (h *Handler) Deviation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employee := q.Get("employee")
	day, err := time.Parse(dateLayout, q.Get("date"))
	if employee == "" || err != nil {
		writeError(w, http.StatusBadRequest, "employee and date (YYYY-MM-DD) are required", err)
		return
	}

	f := attendance.DefaultFilters()
	f.Employee = employee
	f.ConsiderGrace = queryBool(q.Get("consider_grace"), true)

	records, err := h.Reporter.Aggregator.Aggregate(r.Context(), generic.Period{Start: day, End: day}, f)
	if err != nil {
		h.writeDomainError(w, "Failed to aggregate check-ins", err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "No check-ins for employee on date", nil)
		return
	}

	rec := records[0]
	d := attendance.ComputeDeviation(rec, f.ConsiderGrace)
	writeJSON(w, http.StatusOK, DeviationDTO{
		Employee:              rec.EmployeeID,
		Date:                  rec.Date.Format(dateLayout),
		Shift:                 rec.ShiftName(),
		WorkingSeconds:        rec.WorkingSeconds,
		LateEntrySeconds:      d.LateEntrySeconds,
		EarlyExitSeconds:      d.EarlyExitSeconds,
		OvertimeSeconds:       d.OvertimeSeconds,
		ActualOvertimeSeconds: d.ActualOvertimeSeconds,
		LateEntry:             generic.FormatClock(d.LateEntrySeconds),
		EarlyExit:             generic.FormatClock(d.EarlyExitSeconds),
		Overtime:              generic.FormatClock(d.OvertimeSeconds),
	})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// ProcessPayslip runs every hook stage over the posted slip.
func (h *Handler) ProcessPayslip(w http.ResponseWriter, r *http.Request) {
	var req SlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	slip, err := h.slipFromRequest(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pay slip", err)
		return
	}

	if err := h.Pipeline.Process(r.Context(), slip); err != nil {
		h.writeDomainError(w, "Failed to process pay slip", err)
		return
	}
	writeJSON(w, http.StatusOK, toSlipDTO(slip))
}

func (h *Handler) slipFromRequest(r *http.Request, req SlipRequest) (*payroll.Slip, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q", generic.ErrInvalidFormat, req.StartDate)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date %q", generic.ErrInvalidFormat, req.EndDate)
	}
	var yearStart time.Time
	if req.PayrollYearStart != "" {
		if yearStart, err = time.Parse(dateLayout, req.PayrollYearStart); err != nil {
			return nil, fmt.Errorf("%w: payroll_year_start %q", generic.ErrInvalidFormat, req.PayrollYearStart)
		}
	}
	freq := tax.Frequency(req.Frequency)
	if freq == "" {
		freq = tax.FrequencyMonthly
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: payroll_frequency %q", generic.ErrInvalidFormat, req.Frequency)
	}

	slip := &payroll.Slip{
		ID:                     req.ID,
		EmployeeID:             req.Employee,
		Company:                req.Company,
		ShiftType:              req.ShiftType,
		StartDate:              start,
		EndDate:                end,
		Frequency:              freq,
		PayrollYearStart:       yearStart,
		CurrentTaxableEarnings: req.CurrentTaxableEarnings,
		Projection:             req.Projection,
		PeriodFactor:           req.PeriodFactor,
		RemainingPeriods:       req.RemainingPeriods,
		TaxComponents:          req.TaxComponents,
		Earnings:               req.Earnings,
		Deductions:             req.Deductions,
	}
	if slip.ID == "" {
		slip.ID = uuid.NewString()
	}

	// Fill company and shift from the employee record when the slip omits them.
	if slip.Company == "" || slip.ShiftType == "" {
		emp, err := h.Store.GetEmployee(r.Context(), slip.EmployeeID)
		if err != nil {
			return nil, err
		}
		if emp != nil {
			if slip.Company == "" {
				slip.Company = emp.Company
			}
			if slip.ShiftType == "" {
				slip.ShiftType = emp.DefaultShift
			}
		}
	}
	return slip, nil
}

func toSlipDTO(s *payroll.Slip) SlipDTO {
	return SlipDTO{
		ID:                     s.ID,
		Employee:               s.EmployeeID,
		Company:                s.Company,
		ShiftType:              s.ShiftType,
		StartDate:              s.StartDate.Format(dateLayout),
		EndDate:                s.EndDate.Format(dateLayout),
		CurrentTaxableEarnings: s.CurrentTaxableEarnings,
		Projection:             s.Projection,
		PeriodFactor:           s.PeriodFactor,
		RemainingPeriods:       s.RemainingPeriods,
		TaxComponents:          s.TaxComponents,
		Earnings:               nonNilLines(s.Earnings),
		Deductions:             nonNilLines(s.Deductions),
		Policy: PolicyDTO{
			Company:            s.Policy.Company,
			ThirteenthMonthTax: s.Policy.ThirteenthMonthTax,
			OvertimeBasis:      string(s.Policy.OvertimeBasis),
		},
	}
}

// ListAdjustments returns adjustment entries matching the query.
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := payroll.AdjustmentFilter{
		EmployeeID: q.Get("employee"),
		Component:  q.Get("component"),
		Direction:  payroll.Direction(q.Get("type")),
		Status:     payroll.AdjustmentStatus(q.Get("status")),
	}
	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid "+name+" date (use YYYY-MM-DD)", err)
				return
			}
			*dst = t
		}
	}

	entries, err := h.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list adjustments", err)
		return
	}
	dtos := make([]AdjustmentDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AdjustmentDTO{
			ID:          e.ID,
			Employee:    e.EmployeeID,
			Component:   e.Component,
			Kind:        string(e.Kind),
			Amount:      e.Amount.StringFixed(generic.MoneyPlaces),
			PayrollDate: e.PayrollDate.Format(dateLayout),
			Company:     e.Company,
			Type:        string(e.Direction),
			Status:      string(e.Status),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TAX & UTILITY HANDLERS
// =============================================================================

// NormalizeTax spreads a tax state over 12 or 13 periods.
func (h *Handler) NormalizeTax(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	n := req.PeriodCount
	if n == 0 {
		n = tax.PeriodCount(req.ThirteenthMonthTax)
	}
	state, err := tax.Normalize(req.State, n, req.HasAdditionalSalaryComponent)
	if err != nil {
		h.writeDomainError(w, "Failed to normalize tax", err)
		return
	}
	writeJSON(w, http.StatusOK, NormalizeDTO{PeriodCount: n, State: state})
}

// PeriodFactor resolves elapsed/total. Elapsed comes from the query or from
// whole months between payroll_year_start and slip_start.
func (h *Handler) PeriodFactor(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	total := tax.DefaultTotalPeriods
	if v := q.Get("total"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid total", err)
			return
		}
		total = n
	}

	var elapsed int
	switch {
	case q.Get("elapsed") != "":
		n, err := strconv.Atoi(q.Get("elapsed"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid elapsed", err)
			return
		}
		elapsed = n
	case q.Get("payroll_year_start") != "" && q.Get("slip_start") != "":
		anchor, err1 := time.Parse(dateLayout, q.Get("payroll_year_start"))
		start, err2 := time.Parse(dateLayout, q.Get("slip_start"))
		if err := errors.Join(err1, err2); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dates (use YYYY-MM-DD)", err)
			return
		}
		elapsed = tax.MonthsElapsed(anchor, start)
	default:
		writeError(w, http.StatusBadRequest, "elapsed or payroll_year_start and slip_start are required", nil)
		return
	}

	factor, remaining, err := tax.ResolvePeriodFactor(elapsed, total)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve period factor", err)
		return
	}
	writeJSON(w, http.StatusOK, PeriodFactorDTO{
		Elapsed:          elapsed,
		Total:            total,
		PeriodFactor:     factor.StringFixed(6),
		RemainingPeriods: remaining,
	})
}

// ParseDuration parses the text query parameter.
func (h *Handler) ParseDuration(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	seconds, err := generic.ParseDuration(text)
	if err != nil {
		h.writeDomainError(w, "Failed to parse duration", err)
		return
	}
	writeJSON(w, http.StatusOK, DurationDTO{
		Text:      text,
		Seconds:   seconds,
		Formatted: generic.FormatDuration(seconds),
		Clock:     generic.FormatClock(seconds),
	})
}

// ResetDatabase clears all data (for demos).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var status int
	switch {
	case payroll.IsConfigError(err):
		status = http.StatusUnprocessableEntity
	case generic.IsNotFound(err), payroll.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsClientError(err), tax.IsClientError(err), payroll.IsClientError(err),
		errors.Is(err, factory.ErrInvalidConfig):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		h.Logger.Error(message, "error", err)
	}
	writeError(w, status, message, err)
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", generic.ErrInvalidFormat, s)
	}
	// Keep the wall clock, drop the offset.
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

func queryBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func nonNilRows(rows []attendance.Row) []attendance.Row {
	if rows == nil {
		return []attendance.Row{}
	}
	return rows
}

func nonNilLines(lines []payroll.Line) []payroll.Line {
	if lines == nil {
		return []payroll.Line{}
	}
	return lines
}
