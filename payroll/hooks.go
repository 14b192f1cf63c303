package payroll

import (
	"context"
	"log/slog"

	"github.com/warp/paye-engine/attendance"
)

// =============================================================================
// PIPELINE - Hooks run after the host engine's default computation
// =============================================================================
//
// The host engine computes a slip in stages. After each stage it calls
// Pipeline.Run for that stage; hooks registered for the stage run in
// registration order and mutate the slip. The first failing hook aborts
// the stage.
//
//   StageTaxableEarnings -> ThirteenthMonthHook
//   StagePeriodFactor    -> PeriodFactorHook
//   StageVariableTax     -> TaxNormalizerHook
//   StageValidate        -> AttendanceHook

type Stage string

const (
	StageTaxableEarnings Stage = "taxable_earnings"
	StagePeriodFactor    Stage = "period_factor"
	StageVariableTax     Stage = "variable_tax"
	StageValidate        Stage = "validate"
)

// Stages lists every stage in the order the host engine reaches them.
var Stages = []Stage{StageTaxableEarnings, StagePeriodFactor, StageVariableTax, StageValidate}

// Hook is one post-processing step.
type Hook interface {
	Name() string
	Stage() Stage
	Apply(ctx context.Context, slip *Slip) error
}

type Pipeline struct {
	Policies PolicyResolver
	Logger   *slog.Logger
	hooks    []Hook
}

func NewPipeline(policies PolicyResolver, hooks ...Hook) *Pipeline {
	return &Pipeline{Policies: policies, Logger: slog.Default(), hooks: hooks}
}

// NewStandardPipeline wires every hook over one attendance source and
// adjustment store.
func NewStandardPipeline(policies PolicyResolver, source attendance.Source, adjustments AdjustmentStore) *Pipeline {
	return NewPipeline(policies,
		ThirteenthMonthHook{},
		PeriodFactorHook{},
		TaxNormalizerHook{},
		&AttendanceHook{
			Reports: attendance.NewReporter(source),
			Shifts:  source,
			Poster:  NewPoster(adjustments),
		},
	)
}

func (p *Pipeline) Register(hooks ...Hook) {
	p.hooks = append(p.hooks, hooks...)
}

// Hooks returns the registered hooks for a stage.
func (p *Pipeline) Hooks(stage Stage) []Hook {
	var out []Hook
	for _, h := range p.hooks {
		if h.Stage() == stage {
			out = append(out, h)
		}
	}
	return out
}

// Run applies the hooks registered for stage.
func (p *Pipeline) Run(ctx context.Context, stage Stage, slip *Slip) error {
	for _, h := range p.Hooks(stage) {
		if err := h.Apply(ctx, slip); err != nil {
			return &HookError{Hook: h.Name(), Stage: stage, Err: err}
		}
		p.logger().Debug("hook applied", "hook", h.Name(), "stage", stage, "slip", slip.ID)
	}
	return nil
}

// Process resolves the slip's policy and runs every stage in order.
func (p *Pipeline) Process(ctx context.Context, slip *Slip) error {
	if err := slip.Validate(); err != nil {
		return err
	}
	if err := p.ResolvePolicy(ctx, slip); err != nil {
		return err
	}
	for _, stage := range Stages {
		if err := p.Run(ctx, stage, slip); err != nil {
			return err
		}
	}
	return nil
}

// ResolvePolicy fills slip.Policy. Companies without a stored policy get
// DefaultPolicy.
func (p *Pipeline) ResolvePolicy(ctx context.Context, slip *Slip) error {
	if p.Policies == nil {
		slip.Policy = DefaultPolicy(slip.Company)
		return nil
	}
	policy, err := p.Policies.ResolvePolicy(ctx, slip.Company)
	switch {
	case IsPolicyNotFound(err):
		p.logger().Info("no payroll policy for company, using defaults", "company", slip.Company)
		policy = DefaultPolicy(slip.Company)
	case err != nil:
		return err
	}
	if !policy.OvertimeBasis.Valid() {
		policy.OvertimeBasis = OvertimeClock
	}
	slip.Policy = policy
	return nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
