/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates companies, shift types, employees
	and a month of check-ins that exercise a specific part of the engine.

AVAILABLE SCENARIOS:

	mauritius-overtime:  13-period company, late arrivals and overtime
	twelve-periods:      Company without 13th-month tax
	lateness-only:       Shift that fines lateness but pays no overtime
	missing-components:  Shift with no salary components (slip fails with 422)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create companies and shift types via factory
 3. Create employees
 4. Record March 2024 check-ins

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mauritius-overtime"}

	then POST /api/payslips/process with a March slip for an employee.

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ProcessPayslip, AttendanceReport
  - factory/policy.go: Shift type and company documents
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/factory"
	"github.com/warp/paye-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type punch struct {
	employee string
	at       string // "2006-01-02 15:04:05"
}

type scenario struct {
	info      ScenarioDTO
	companies []factory.CompanyJSON
	shifts    []factory.ShiftTypeJSON
	employees []sqlite.Employee
	punches   []punch
}

var dayShift = factory.ShiftTypeJSON{
	Name:                  "Day",
	StartTime:             "09:00",
	EndTime:               "17:00",
	LateEntryGraceMinutes: 10,
	EarlyExitGraceMinutes: 10,
	OvertimePayRate:       "300",
	LatenessFineRate:      "120",
	OvertimeComponent:     "Overtime",
	LatenessComponent:     "Lateness Fine",
}

var scenarios = []scenario{
	{
		info: ScenarioDTO{
			ID:          "mauritius-overtime",
			Name:        "Mauritius Overtime",
			Description: "13-period PAYE with overtime earnings and lateness fines",
			Category:    "payroll",
		},
		companies: []factory.CompanyJSON{{
			ID: "Acme MU", Country: "Mauritius", ThirteenthMonthTax: true,
			ThirteenPeriodCountries: []string{"Mauritius"},
		}},
		shifts: []factory.ShiftTypeJSON{dayShift},
		employees: []sqlite.Employee{
			{ID: "EMP-001", Name: "Ada Lovelace", Department: "Operations", Company: "Acme MU", DefaultShift: "Day"},
			{ID: "EMP-002", Name: "Ben Okri", Department: "Sales", Company: "Acme MU", DefaultShift: "Day"},
		},
		punches: []punch{
			{"EMP-001", "2024-03-04 09:30:00"}, {"EMP-001", "2024-03-04 17:00:00"},
			{"EMP-001", "2024-03-05 09:00:00"}, {"EMP-001", "2024-03-05 17:45:00"},
			{"EMP-001", "2024-03-06 09:05:00"}, {"EMP-001", "2024-03-06 12:00:00"}, {"EMP-001", "2024-03-06 17:00:00"},
			{"EMP-002", "2024-03-04 08:55:00"}, {"EMP-002", "2024-03-04 16:30:00"},
			{"EMP-002", "2024-03-05 09:00:00"}, {"EMP-002", "2024-03-05 19:00:00"},
		},
	},
	{
		info: ScenarioDTO{
			ID:          "twelve-periods",
			Name:        "Twelve Periods",
			Description: "Company without 13th-month tax; overtime paid on actual hours",
			Category:    "payroll",
		},
		companies: []factory.CompanyJSON{{ID: "Acme KE", Country: "Kenya", OvertimeBasis: "actual"}},
		shifts:    []factory.ShiftTypeJSON{dayShift},
		employees: []sqlite.Employee{
			{ID: "EMP-101", Name: "Wanjiru Kamau", Department: "Finance", Company: "Acme KE", DefaultShift: "Day"},
		},
		punches: []punch{
			{"EMP-101", "2024-03-11 07:30:00"}, {"EMP-101", "2024-03-11 17:30:00"},
			{"EMP-101", "2024-03-12 09:00:00"}, {"EMP-101", "2024-03-12 17:00:00"},
		},
	},
	{
		info: ScenarioDTO{
			ID:          "lateness-only",
			Name:        "Lateness Only",
			Description: "Shift fines lateness and has no overtime component",
			Category:    "payroll",
		},
		companies: []factory.CompanyJSON{{ID: "Acme MU", Country: "Mauritius", ThirteenthMonthTax: true, ThirteenPeriodCountries: []string{"Mauritius"}}},
		shifts: []factory.ShiftTypeJSON{{
			Name: "Front Desk", StartTime: "08:00", EndTime: "16:00",
			LateEntryGraceMinutes: 5, LatenessFineRate: "200", LatenessComponent: "Lateness Fine",
		}},
		employees: []sqlite.Employee{
			{ID: "EMP-201", Name: "Chen Wei", Department: "Reception", Company: "Acme MU", DefaultShift: "Front Desk"},
		},
		punches: []punch{
			{"EMP-201", "2024-03-18 08:20:00"}, {"EMP-201", "2024-03-18 18:00:00"},
		},
	},
	{
		info: ScenarioDTO{
			ID:          "missing-components",
			Name:        "Missing Components",
			Description: "Shift has no salary components; processing a slip returns 422",
			Category:    "payroll",
		},
		companies: []factory.CompanyJSON{{ID: "Acme MU", Country: "Mauritius"}},
		shifts:    []factory.ShiftTypeJSON{{Name: "Night", StartTime: "22:00", EndTime: "23:59"}},
		employees: []sqlite.Employee{
			{ID: "EMP-301", Name: "Dara Night", Department: "Security", Company: "Acme MU", DefaultShift: "Night"},
		},
		punches: []punch{
			{"EMP-301", "2024-03-20 22:30:00"}, {"EMP-301", "2024-03-20 23:59:00"},
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.info.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.info
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.info)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.loadScenario(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = s.info.ID
	h.Logger.Info("scenario loaded", "scenario", s.info.ID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.info.ID})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	for _, doc := range s.companies {
		p, err := h.PolicyFactory.CompanyFromJSON(doc)
		if err != nil {
			return err
		}
		if err := h.Store.SaveCompany(ctx, p); err != nil {
			return err
		}
	}
	for _, doc := range s.shifts {
		def, err := h.PolicyFactory.ShiftTypeFromJSON(doc)
		if err != nil {
			return err
		}
		if err := h.Store.SaveShiftType(ctx, def); err != nil {
			return err
		}
	}

	shiftOf := make(map[string]string)
	for _, emp := range s.employees {
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
		shiftOf[emp.ID] = emp.DefaultShift
	}

	events := make([]attendance.Checkin, 0, len(s.punches))
	for i, p := range s.punches {
		at, err := parseTimestamp(p.at)
		if err != nil {
			return err
		}
		events = append(events, attendance.Checkin{
			ID:         fmt.Sprintf("%s-CHK-%03d", s.info.ID, i+1),
			EmployeeID: p.employee,
			Time:       at,
			Shift:      shiftOf[p.employee],
		})
	}
	return h.Store.SaveCheckins(ctx, events)
}
