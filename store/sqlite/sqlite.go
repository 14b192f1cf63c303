/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the server needs: employees, raw check-ins, shift
  types, company policies, marked attendance and adjustment entries.

INTERFACES IMPLEMENTED:
  attendance.Source:         check-ins, shift types, marked attendance
  payroll.TxAdjustmentStore: adjustment entries with transactions
  payroll.PolicyResolver:    company payroll policies

KEY TABLES:
  employees:   Employee directory (name, department, company, default shift)
  checkins:    Raw clock events
  shift_types: Shift definitions (config_json, see factory.ShiftTypeJSON)
  companies:   Company policies (config_json, see factory.CompanyJSON)
  attendance:  Finalized attendance status per employee per day
  adjustments: Additional-salary entries

INDEXES:
  - idx_checkins_time: period scans (hot path for reports)
  - idx_checkins_employee_time: per-employee reports
  - idx_adjustments_lookup: the poster's existence check

TIME STORAGE:
  Check-in times are wall-clock times stored as "2006-01-02 15:04:05" text
  and read back in UTC. Deviation rules compare wall-clock seconds, so the
  location is irrelevant as long as every event of a company is recorded
  in the same local time. Dates are stored as "2006-01-02".

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx holds the write lock for the
  whole transaction.

USAGE:
  store, err := sqlite.New("./data/paye.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  reporter := attendance.NewReporter(store)
  poster := payroll.NewPoster(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - attendance/aggregate.go: Source interface
  - payroll/store.go: AdjustmentStore interfaces
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/factory"
	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/payroll"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.PolicyFactory
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewPolicyFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		default_shift TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Raw clock events
	CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		time TEXT NOT NULL,
		shift TEXT NOT NULL DEFAULT '',
		skip_auto_attendance BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checkins_time
		ON checkins(time);
	CREATE INDEX IF NOT EXISTS idx_checkins_employee_time
		ON checkins(employee_id, time);

	-- Shift types
	CREATE TABLE IF NOT EXISTS shift_types (
		name TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Company payroll policies
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Finalized attendance
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		UNIQUE(employee_id, date)
	);

	-- Additional-salary entries
	CREATE TABLE IF NOT EXISTS adjustments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		component TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		payroll_date TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		direction TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Draft',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_lookup
		ON adjustments(employee_id, component, direction, status, payroll_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee represents an employee record.
type Employee struct {
	ID           string
	Name         string
	Department   string
	Company      string
	DefaultShift string
	CreatedAt    time.Time
}

// SaveEmployee saves an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, department, company, default_shift, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			company = excluded.company,
			default_shift = excluded.default_shift
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Department, emp.Company, emp.DefaultShift,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID, or (nil, nil) if absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp Employee
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, department, company, default_shift, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &emp.Department, &emp.Company, &emp.DefaultShift, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("employee %s created_at %q: %w", emp.ID, createdAt, err)
	}
	return &emp, nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, department, company, default_shift, created_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Department, &emp.Company, &emp.DefaultShift, &createdAt); err != nil {
			return nil, err
		}
		emp.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("employee %s created_at %q: %w", emp.ID, createdAt, err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	return err
}

// =============================================================================
// CHECK-INS (attendance.Source)
// =============================================================================

// SaveCheckin stores a raw clock event. Employee descriptive fields come
// from the employees table when the event is read back.
func (s *Store) SaveCheckin(ctx context.Context, c attendance.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertCheckin(ctx, s.db, c)
}

// SaveCheckins stores a batch of events atomically.
func (s *Store) SaveCheckins(ctx context.Context, events []attendance.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, c := range events {
		if err := insertCheckin(ctx, sqlTx, c); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

func insertCheckin(ctx context.Context, q querier, c attendance.Checkin) error {
	if c.ID == "" || c.EmployeeID == "" || c.Time.IsZero() {
		return fmt.Errorf("%w: check-in needs id, employee and time", generic.ErrInvalidFormat)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO checkins (id, employee_id, time, shift, skip_auto_attendance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.EmployeeID, c.Time.Format(dateTimeLayout), c.Shift, c.SkipAutoAttendance,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check-in: %w", err)
	}
	return nil
}

// Checkins returns events with from <= time < until, joined with employee details.
func (s *Store) Checkins(ctx context.Context, from, until time.Time) ([]attendance.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.employee_id, COALESCE(e.name, ''), COALESCE(e.department, ''),
		       COALESCE(e.company, ''), c.time, c.shift, c.skip_auto_attendance
		FROM checkins c
		LEFT JOIN employees e ON e.id = c.employee_id
		WHERE c.time >= ? AND c.time < ?
		ORDER BY c.employee_id, c.time
	`, from.Format(dateTimeLayout), until.Format(dateTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var events []attendance.Checkin
	for rows.Next() {
		var c attendance.Checkin
		var at string
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.EmployeeName, &c.Department,
			&c.Company, &at, &c.Shift, &c.SkipAutoAttendance); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		c.Time, err = time.ParseInLocation(dateTimeLayout, at, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("check-in %s: %w", c.ID, err)
		}
		if c.EmployeeName == "" {
			c.EmployeeName = c.EmployeeID
		}
		events = append(events, c)
	}
	return events, rows.Err()
}

// =============================================================================
// SHIFT TYPES
// =============================================================================

// SaveShiftType upserts a shift definition.
func (s *Store) SaveShiftType(ctx context.Context, def attendance.ShiftDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(s.factory.ShiftTypeToJSON(def))
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shift_types (name, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, def.Name, string(configJSON), now, now)
	return err
}

// ShiftType returns the named definition or generic.ErrNotFound.
func (s *Store) ShiftType(ctx context.Context, name string) (*attendance.ShiftDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM shift_types WHERE name = ?", name).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shift type %q: %w", name, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	def, err := s.factory.ParseShiftType(configJSON)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// ListShiftTypes returns all shift definitions ordered by name.
func (s *Store) ListShiftTypes(ctx context.Context) ([]attendance.ShiftDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json FROM shift_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []attendance.ShiftDefinition
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		def, err := s.factory.ParseShiftType(configJSON)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// =============================================================================
// COMPANIES (payroll.PolicyResolver)
// =============================================================================

// SaveCompany upserts a company policy.
func (s *Store) SaveCompany(ctx context.Context, p payroll.PolicyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(s.factory.CompanyToJSON(p))
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companies (id, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, p.Company, string(configJSON), now, now)
	return err
}

// ResolvePolicy returns the company's policy or payroll.ErrPolicyNotFound.
func (s *Store) ResolvePolicy(ctx context.Context, company string) (payroll.PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM companies WHERE id = ?", company).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return payroll.PolicyConfig{}, fmt.Errorf("%w: %s", payroll.ErrPolicyNotFound, company)
	}
	if err != nil {
		return payroll.PolicyConfig{}, err
	}
	return s.factory.ParseCompany(configJSON)
}

// ListCompanies returns all company policies ordered by id.
func (s *Store) ListCompanies(ctx context.Context) ([]payroll.PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json FROM companies ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []payroll.PolicyConfig
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		p, err := s.factory.ParseCompany(configJSON)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// MARKED ATTENDANCE
// =============================================================================

// MarkAttendance upserts the finalized status for employee+day.
func (s *Store) MarkAttendance(ctx context.Context, a attendance.MarkedAttendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !a.Status.Valid() {
		return fmt.Errorf("%w: attendance status %q", generic.ErrInvalidFormat, a.Status)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_id, date, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			status = excluded.status
	`, a.ID, a.EmployeeID, a.Date.Format(dateLayout), string(a.Status))
	return err
}

// MarkedAttendance returns the finalized attendance or (nil, nil).
func (s *Store) MarkedAttendance(ctx context.Context, employeeID string, day time.Time) (*attendance.MarkedAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a attendance.MarkedAttendance
	var date, status string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, date, status FROM attendance WHERE employee_id = ? AND date = ?",
		employeeID, day.Format(dateLayout),
	).Scan(&a.ID, &a.EmployeeID, &date, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("attendance %s date %q: %w", a.ID, date, err)
	}
	a.Status = attendance.Status(status)
	return &a, nil
}

// =============================================================================
// ADJUSTMENTS (payroll.AdjustmentStore interface)
// =============================================================================

func (s *Store) Exists(ctx context.Context, f payroll.AdjustmentFilter) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return existsAdjustment(ctx, s.db, f)
}

func (s *Store) Insert(ctx context.Context, e payroll.AdjustmentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertAdjustment(ctx, s.db, e)
}

func (s *Store) Submit(ctx context.Context, id string) (payroll.AdjustmentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return submitAdjustment(ctx, s.db, id)
}

func (s *Store) Get(ctx context.Context, id string) (payroll.AdjustmentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAdjustment(ctx, s.db, id)
}

func (s *Store) List(ctx context.Context, f payroll.AdjustmentFilter) ([]payroll.AdjustmentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAdjustments(ctx, s.db, f)
}

const adjustmentColumns = `id, employee_id, component, kind, amount, payroll_date, company, direction, status, created_at`

func filterClause(f payroll.AdjustmentFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if f.EmployeeID != "" {
		add("employee_id = ?", f.EmployeeID)
	}
	if f.Component != "" {
		add("component = ?", f.Component)
	}
	if f.Direction != "" {
		add("direction = ?", string(f.Direction))
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if !f.From.IsZero() {
		add("payroll_date >= ?", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		add("payroll_date <= ?", f.To.Format(dateLayout))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func existsAdjustment(ctx context.Context, q querier, f payroll.AdjustmentFilter) (bool, error) {
	where, args := filterClause(f)
	var count int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM adjustments"+where, args...).Scan(&count)
	return count > 0, err
}

func insertAdjustment(ctx context.Context, q querier, e payroll.AdjustmentEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO adjustments (`+adjustmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.EmployeeID, e.Component, string(e.Kind), e.Amount.String(),
		e.PayrollDate.Format(dateLayout), e.Company, string(e.Direction),
		string(payroll.StatusDraft), createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", payroll.ErrDuplicateAdjustment, e.ID)
		}
		return fmt.Errorf("failed to insert adjustment: %w", err)
	}
	return nil
}

func submitAdjustment(ctx context.Context, q querier, id string) (payroll.AdjustmentEntry, error) {
	e, err := getAdjustment(ctx, q, id)
	if err != nil {
		return payroll.AdjustmentEntry{}, err
	}
	if e.Status == payroll.StatusSubmitted {
		return e, fmt.Errorf("%w: %s", payroll.ErrAlreadySubmitted, id)
	}

	if _, err := q.ExecContext(ctx,
		"UPDATE adjustments SET status = ? WHERE id = ? AND status = ?",
		string(payroll.StatusSubmitted), id, string(payroll.StatusDraft),
	); err != nil {
		return payroll.AdjustmentEntry{}, fmt.Errorf("failed to submit adjustment: %w", err)
	}
	e.Status = payroll.StatusSubmitted
	return e, nil
}

func getAdjustment(ctx context.Context, q querier, id string) (payroll.AdjustmentEntry, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+adjustmentColumns+" FROM adjustments WHERE id = ?", id)
	if err != nil {
		return payroll.AdjustmentEntry{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return payroll.AdjustmentEntry{}, err
		}
		return payroll.AdjustmentEntry{}, fmt.Errorf("%w: %s", payroll.ErrAdjustmentNotFound, id)
	}
	return scanAdjustment(rows)
}

func listAdjustments(ctx context.Context, q querier, f payroll.AdjustmentFilter) ([]payroll.AdjustmentEntry, error) {
	where, args := filterClause(f)
	rows, err := q.QueryContext(ctx,
		"SELECT "+adjustmentColumns+" FROM adjustments"+where+" ORDER BY payroll_date, created_at, id",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var entries []payroll.AdjustmentEntry
	for rows.Next() {
		e, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanAdjustment(rows *sql.Rows) (payroll.AdjustmentEntry, error) {
	var (
		e           payroll.AdjustmentEntry
		kind        string
		amount      string
		payrollDate string
		direction   string
		status      string
		createdAt   string
	)
	err := rows.Scan(&e.ID, &e.EmployeeID, &e.Component, &kind, &amount,
		&payrollDate, &e.Company, &direction, &status, &createdAt)
	if err != nil {
		return e, fmt.Errorf("failed to scan adjustment: %w", err)
	}

	e.Kind = payroll.AdjustmentKind(kind)
	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return e, fmt.Errorf("adjustment %s amount %q: %w", e.ID, amount, err)
	}
	e.PayrollDate, err = time.ParseInLocation(dateLayout, payrollDate, time.UTC)
	if err != nil {
		return e, fmt.Errorf("adjustment %s payroll_date %q: %w", e.ID, payrollDate, err)
	}
	e.Direction = payroll.Direction(direction)
	e.Status = payroll.AdjustmentStatus(status)
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return e, fmt.Errorf("adjustment %s created_at %q: %w", e.ID, createdAt, err)
	}
	return e, nil
}

// =============================================================================
// TRANSACTIONAL STORE (payroll.TxAdjustmentStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store payroll.AdjustmentStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Exists(ctx context.Context, f payroll.AdjustmentFilter) (bool, error) {
	return existsAdjustment(ctx, ts.tx, f)
}

func (ts *txStore) Insert(ctx context.Context, e payroll.AdjustmentEntry) error {
	return insertAdjustment(ctx, ts.tx, e)
}

func (ts *txStore) Submit(ctx context.Context, id string) (payroll.AdjustmentEntry, error) {
	return submitAdjustment(ctx, ts.tx, id)
}

func (ts *txStore) Get(ctx context.Context, id string) (payroll.AdjustmentEntry, error) {
	return getAdjustment(ctx, ts.tx, id)
}

func (ts *txStore) List(ctx context.Context, f payroll.AdjustmentFilter) ([]payroll.AdjustmentEntry, error) {
	return listAdjustments(ctx, ts.tx, f)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"adjustments", "attendance", "checkins", "shift_types", "companies", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
