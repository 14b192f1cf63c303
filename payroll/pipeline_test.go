package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/generic"
	"github.com/warp/paye-engine/payroll"
	"github.com/warp/paye-engine/payroll/store"
	"github.com/warp/paye-engine/tax"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func mauritius() payroll.PolicyConfig {
	return payroll.PolicyConfig{
		Company:                 "Acme MU",
		Country:                 "Mauritius",
		ThirteenthMonthTax:      true,
		ThirteenPeriodCountries: []string{"Mauritius"},
		OvertimeBasis:           payroll.OvertimeClock,
	}
}

func newSource() *attendance.MemorySource {
	src := attendance.NewMemorySource()
	src.AddShift(attendance.ShiftDefinition{
		Name:                  "Day",
		StartTime:             generic.MustTimeOfDay("09:00"),
		EndTime:               generic.MustTimeOfDay("17:00"),
		LateEntryGraceMinutes: 10,
		EarlyExitGraceMinutes: 10,
		OvertimePayRate:       generic.MustParseDecimal("300"),
		LatenessFineRate:      generic.MustParseDecimal("120"),
		OvertimeComponent:     "Overtime",
		LatenessComponent:     "Lateness Fine",
	})
	return src
}

func punch(src *attendance.MemorySource, d int, clock string) {
	src.AddCheckin(attendance.Checkin{
		EmployeeID:   "E1",
		EmployeeName: "Ada",
		Company:      "Acme MU",
		Time:         generic.MustTimeOfDay(clock).On(generic.Date(2024, time.March, d)),
		Shift:        "Day",
	})
}

func marchSlip() *payroll.Slip {
	return &payroll.Slip{
		ID:               "SLIP-0001",
		EmployeeID:       "E1",
		Company:          "Acme MU",
		ShiftType:        "Day",
		StartDate:        generic.Date(2024, time.March, 1),
		EndDate:          generic.Date(2024, time.March, 31),
		Frequency:        tax.FrequencyMonthly,
		PayrollYearStart: generic.Date(2023, time.July, 1),
		CurrentTaxableEarnings: tax.TaxableEarnings{
			TaxableEarnings:             generic.MustParseDecimal("50000"),
			AmountExemptedFromIncomeTax: generic.MustParseDecimal("1000"),
		},
		Projection: tax.Projection{
			FutureStructuredTaxableEarnings:                generic.MustParseDecimal("150000"),
			FutureStructuredTaxableEarningsBeforeExemption: generic.MustParseDecimal("153000"),
		},
		PeriodFactor:     generic.MustParseDecimal("0.6667"),
		RemainingPeriods: 4,
		TaxComponents: map[string]*payroll.TaxComponent{
			"PAYE": {State: tax.PeriodTaxState{
				TotalStructuredTaxAmount: generic.MustParseDecimal("130000"),
				PreviousTotalPaidTaxes:   generic.MustParseDecimal("30000"),
				StructuredTaxComputed:    true,
			}},
			"Bonus Tax": {
				State: tax.PeriodTaxState{
					TotalStructuredTaxAmount: generic.MustParseDecimal("5000"),
					CurrentTaxAmount:         generic.MustParseDecimal("5000"),
					StructuredTaxComputed:    true,
				},
				HasAdditionalSalaryComponent: true,
			},
		},
	}
}

// =============================================================================
// FULL PIPELINE
// =============================================================================

func TestPipeline_Process(t *testing.T) {
	// GIVEN: One late day and one overtime day in March
	src := newSource()
	punch(src, 4, "09:30")
	punch(src, 4, "17:00")
	punch(src, 5, "09:00")
	punch(src, 5, "17:45")
	adjustments := store.NewTxMemory()
	pipeline := payroll.NewStandardPipeline(payroll.NewStaticPolicies(mauritius()), src, adjustments)

	// WHEN: Processing the March slip
	slip := marchSlip()
	require.NoError(t, pipeline.Process(context.Background(), slip))

	// THEN: 13th month added to projection
	assert.True(t, generic.MustParseDecimal("200000").Equal(slip.Projection.FutureStructuredTaxableEarnings))
	assert.True(t, generic.MustParseDecimal("204000").Equal(slip.Projection.FutureStructuredTaxableEarningsBeforeExemption))

	// AND: Period factor counts 8 of 13 months from July
	assert.True(t, generic.MustParseDecimal("8").Div(generic.MustParseDecimal("13")).Equal(slip.PeriodFactor))
	assert.Equal(t, 5, slip.RemainingPeriods)

	// AND: PAYE spread over 13 periods; the additional-salary component untouched
	assert.Equal(t, "7692.31", slip.TaxComponents["PAYE"].State.CurrentTaxAmount.StringFixed(2))
	assert.Equal(t, "5000", slip.TaxComponents["Bonus Tax"].State.CurrentTaxAmount.String())

	// AND: 45 min overtime at 300/h, 30 min late at 120/h
	require.Len(t, slip.Earnings, 1)
	assert.Equal(t, "Overtime", slip.Earnings[0].Component)
	assert.Equal(t, "225", slip.Earnings[0].Amount.String())
	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "60", slip.Deductions[0].Amount.String())
	assert.NotEmpty(t, slip.Deductions[0].AdditionalSalary)
}

func TestPipeline_ReprocessingDoesNotDuplicate(t *testing.T) {
	src := newSource()
	punch(src, 4, "09:30")
	punch(src, 4, "17:45")
	adjustments := store.NewTxMemory()
	pipeline := payroll.NewStandardPipeline(payroll.NewStaticPolicies(mauritius()), src, adjustments)

	require.NoError(t, pipeline.Process(context.Background(), marchSlip()))
	second := marchSlip()
	require.NoError(t, pipeline.Process(context.Background(), second))

	assert.Empty(t, second.Earnings)
	assert.Empty(t, second.Deductions)
	all, err := adjustments.List(context.Background(), payroll.AdjustmentFilter{EmployeeID: "E1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPipeline_ActualOvertimeBasis(t *testing.T) {
	// GIVEN: 08:00-17:45 is 45 min past end but 105 min beyond shift length
	src := newSource()
	punch(src, 4, "08:00")
	punch(src, 4, "17:45")
	policy := mauritius()
	policy.OvertimeBasis = payroll.OvertimeActual
	pipeline := payroll.NewStandardPipeline(payroll.NewStaticPolicies(policy), src, store.NewMemory())

	slip := marchSlip()
	require.NoError(t, pipeline.Process(context.Background(), slip))

	require.Len(t, slip.Earnings, 1)
	assert.Equal(t, "525", slip.Earnings[0].Amount.String())
}

func TestPipeline_UnknownCompanyUsesDefaults(t *testing.T) {
	pipeline := payroll.NewStandardPipeline(payroll.NewStaticPolicies(), newSource(), store.NewMemory())

	slip := marchSlip()
	require.NoError(t, pipeline.Process(context.Background(), slip))

	// Default policy: 12 periods, engine period factor kept, no projection
	assert.True(t, generic.MustParseDecimal("100000").Div(generic.MustParseDecimal("12")).
		Equal(slip.TaxComponents["PAYE"].State.CurrentTaxAmount))
	assert.Equal(t, 4, slip.RemainingPeriods)
	assert.True(t, generic.MustParseDecimal("150000").Equal(slip.Projection.FutureStructuredTaxableEarnings))
}

func TestPipeline_UnconfiguredShiftFailsValidation(t *testing.T) {
	src := attendance.NewMemorySource()
	src.AddShift(attendance.ShiftDefinition{Name: "Day", StartTime: generic.MustTimeOfDay("09:00")})
	pipeline := payroll.NewStandardPipeline(nil, src, store.NewMemory())

	err := pipeline.Process(context.Background(), marchSlip())

	var hookErr *payroll.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, payroll.StageValidate, hookErr.Stage)
	assert.True(t, payroll.IsConfigError(err))
}

func TestPipeline_InvalidSlip(t *testing.T) {
	slip := marchSlip()
	slip.EndDate = generic.Date(2024, time.February, 1)

	err := payroll.NewPipeline(nil).Process(context.Background(), slip)
	assert.ErrorIs(t, err, payroll.ErrInvalidSlip)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// ORDERING AND ERRORS
// =============================================================================

type recordingHook struct {
	name  string
	stage payroll.Stage
	log   *[]string
	err   error
}

func (h recordingHook) Name() string         { return h.name }
func (h recordingHook) Stage() payroll.Stage { return h.stage }
func (h recordingHook) Apply(context.Context, *payroll.Slip) error {
	*h.log = append(*h.log, h.name)
	return h.err
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var log []string
	p := payroll.NewPipeline(nil,
		recordingHook{"validate", payroll.StageValidate, &log, nil},
		recordingHook{"tax-a", payroll.StageVariableTax, &log, nil},
		recordingHook{"earnings", payroll.StageTaxableEarnings, &log, nil},
		recordingHook{"tax-b", payroll.StageVariableTax, &log, nil},
	)

	require.NoError(t, p.Process(context.Background(), marchSlip()))
	assert.Equal(t, []string{"earnings", "tax-a", "tax-b", "validate"}, log)
}

func TestPipeline_FirstErrorAborts(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	p := payroll.NewPipeline(nil,
		recordingHook{"first", payroll.StageVariableTax, &log, boom},
		recordingHook{"second", payroll.StageVariableTax, &log, nil},
	)

	err := p.Run(context.Background(), payroll.StageVariableTax, marchSlip())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Equal(t, []string{"first"}, log)
}
