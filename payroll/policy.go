package payroll

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// POLICY CONFIG - Company-level payroll settings, resolved once per run
// =============================================================================

// OvertimeBasis selects which overtime measure is paid.
type OvertimeBasis string

const (
	// OvertimeClock pays time clocked out past the shift end.
	OvertimeClock OvertimeBasis = "clock"

	// OvertimeActual pays time worked beyond the shift length.
	OvertimeActual OvertimeBasis = "actual"
)

func (b OvertimeBasis) Valid() bool {
	return b == OvertimeClock || b == OvertimeActual
}

// PolicyConfig carries the company settings the pay-slip hooks read.
type PolicyConfig struct {
	Company                 string
	Country                 string
	ThirteenthMonthTax      bool
	ThirteenPeriodCountries []string
	OvertimeBasis           OvertimeBasis
}

// DefaultPolicy returns the settings used for companies without explicit config.
func DefaultPolicy(company string) PolicyConfig {
	return PolicyConfig{Company: company, OvertimeBasis: OvertimeClock}
}

// PolicyResolver looks up a company's policy.
// Implementations: StaticPolicies, store/sqlite.Store.
type PolicyResolver interface {
	ResolvePolicy(ctx context.Context, company string) (PolicyConfig, error)
}

// =============================================================================
// STATIC POLICIES - Map-backed resolver
// =============================================================================

type StaticPolicies struct {
	mu       sync.RWMutex
	policies map[string]PolicyConfig
}

func NewStaticPolicies(policies ...PolicyConfig) *StaticPolicies {
	s := &StaticPolicies{policies: make(map[string]PolicyConfig)}
	for _, p := range policies {
		s.policies[p.Company] = p
	}
	return s
}

func (s *StaticPolicies) Set(p PolicyConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.Company] = p
}

func (s *StaticPolicies) ResolvePolicy(_ context.Context, company string) (PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[company]
	if !ok {
		return PolicyConfig{}, fmt.Errorf("%w: %s", ErrPolicyNotFound, company)
	}
	return p, nil
}
