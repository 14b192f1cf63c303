package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// POSTER - Attendance totals -> additional-salary entries
// =============================================================================
//
// For each side (overtime as an Earning, lateness as a Deduction):
//
//   amount = seconds / 3600 * hourly rate, rounded to 2 places
//   skip if a Submitted entry exists for employee+component+direction with
//   payroll date inside [period start, period end]
//   otherwise Insert (Draft) then Submit
//
// A shift with neither component configured is a ConfigError and nothing
// is written. A shift with one component configured posts that side only.

// ShiftRates are the pay settings of a shift type.
type ShiftRates struct {
	OvertimePayRate   decimal.Decimal
	LatenessFineRate  decimal.Decimal
	OvertimeComponent string
	LatenessComponent string
}

// RatesFor extracts the pay settings of a shift definition.
func RatesFor(shift *attendance.ShiftDefinition) ShiftRates {
	if shift == nil {
		return ShiftRates{}
	}
	return ShiftRates{
		OvertimePayRate:   shift.OvertimePayRate,
		LatenessFineRate:  shift.LatenessFineRate,
		OvertimeComponent: shift.OvertimeComponent,
		LatenessComponent: shift.LatenessComponent,
	}
}

// PostRequest is one employee's attendance totals for a pay period.
type PostRequest struct {
	EmployeeID      string
	Company         string
	Shift           string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	OvertimeSeconds int64
	LateSeconds     int64
	Rates           ShiftRates
}

type Poster struct {
	Store  AdjustmentStore
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

func NewPoster(store AdjustmentStore) *Poster {
	return &Poster{
		Store:  store,
		Logger: slog.Default(),
		Now:    time.Now,
		NewID:  func() string { return uuid.NewString() },
	}
}

type plannedEntry struct {
	kind      AdjustmentKind
	direction Direction
	component string
	amount    decimal.Decimal
}

// Post creates the overtime and lateness entries for the request and returns
// the entries it created. Entries that already exist are not returned.
func (p *Poster) Post(ctx context.Context, req PostRequest) ([]AdjustmentEntry, error) {
	if req.Rates.OvertimeComponent == "" && req.Rates.LatenessComponent == "" {
		return nil, &ConfigError{Shift: req.Shift, Missing: []string{"overtime_component", "lateness_component"}}
	}
	if req.EmployeeID == "" {
		return nil, fmt.Errorf("%w: missing employee", ErrInvalidAdjustment)
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, fmt.Errorf("%w: %s..%s", generic.ErrInvalidPeriod,
			req.PeriodStart.Format("2006-01-02"), req.PeriodEnd.Format("2006-01-02"))
	}

	plan := p.plan(req)
	if len(plan) == 0 {
		return nil, nil
	}

	var created []AdjustmentEntry
	write := func(s AdjustmentStore) error {
		created = created[:0]
		for _, pe := range plan {
			e, ok, err := p.postOne(ctx, s, req, pe)
			if err != nil {
				return err
			}
			if ok {
				created = append(created, e)
			}
		}
		return nil
	}

	var err error
	if tx, ok := p.Store.(TxAdjustmentStore); ok {
		err = tx.WithTx(ctx, write)
	} else {
		err = write(p.Store)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (p *Poster) plan(req PostRequest) []plannedEntry {
	var plan []plannedEntry
	sides := []struct {
		kind      AdjustmentKind
		direction Direction
		component string
		seconds   int64
		rate      decimal.Decimal
	}{
		{KindOvertime, DirectionEarning, req.Rates.OvertimeComponent, req.OvertimeSeconds, req.Rates.OvertimePayRate},
		{KindLateness, DirectionDeduction, req.Rates.LatenessComponent, req.LateSeconds, req.Rates.LatenessFineRate},
	}
	for _, side := range sides {
		if side.component == "" {
			if side.seconds > 0 {
				p.logger().Warn("salary component not configured, skipping",
					"kind", side.kind, "shift", req.Shift, "employee", req.EmployeeID)
			}
			continue
		}
		if side.seconds <= 0 {
			continue
		}
		amount := generic.HourlyAmount(side.seconds, side.rate)
		if !amount.IsPositive() {
			continue
		}
		plan = append(plan, plannedEntry{
			kind:      side.kind,
			direction: side.direction,
			component: side.component,
			amount:    amount,
		})
	}
	return plan
}

func (p *Poster) postOne(ctx context.Context, s AdjustmentStore, req PostRequest, pe plannedEntry) (AdjustmentEntry, bool, error) {
	exists, err := s.Exists(ctx, AdjustmentFilter{
		EmployeeID: req.EmployeeID,
		Component:  pe.component,
		Direction:  pe.direction,
		Status:     StatusSubmitted,
		From:       generic.StartOfDay(req.PeriodStart),
		To:         generic.StartOfDay(req.PeriodEnd),
	})
	if err != nil {
		return AdjustmentEntry{}, false, fmt.Errorf("check existing %s: %w", pe.kind, err)
	}
	if exists {
		p.logger().Debug("adjustment already posted for period",
			"employee", req.EmployeeID, "component", pe.component, "period_end", req.PeriodEnd.Format("2006-01-02"))
		return AdjustmentEntry{}, false, nil
	}

	entry := AdjustmentEntry{
		ID:          p.NewID(),
		EmployeeID:  req.EmployeeID,
		Component:   pe.component,
		Kind:        pe.kind,
		Amount:      pe.amount,
		PayrollDate: generic.StartOfDay(req.PeriodEnd),
		Company:     req.Company,
		Direction:   pe.direction,
		Status:      StatusDraft,
		CreatedAt:   p.Now(),
	}
	if err := s.Insert(ctx, entry); err != nil {
		return AdjustmentEntry{}, false, fmt.Errorf("insert %s: %w", pe.kind, err)
	}
	submitted, err := s.Submit(ctx, entry.ID)
	if err != nil {
		return AdjustmentEntry{}, false, fmt.Errorf("submit %s: %w", pe.kind, err)
	}

	p.logger().Info("adjustment posted",
		"id", submitted.ID, "employee", submitted.EmployeeID, "component", submitted.Component,
		"amount", submitted.Amount.StringFixed(generic.MoneyPlaces))
	return submitted, true, nil
}

func (p *Poster) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
