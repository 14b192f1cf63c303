package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/warp/paye-engine/generic"
)

// =============================================================================
// MEMORY SOURCE - In-memory Source (for testing/dev)
// =============================================================================

type MemorySource struct {
	mu       sync.RWMutex
	checkins []Checkin
	shifts   map[string]ShiftDefinition
	marked   map[dayKey]MarkedAttendance
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		shifts: make(map[string]ShiftDefinition),
		marked: make(map[dayKey]MarkedAttendance),
	}
}

func (m *MemorySource) AddCheckin(c Checkin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkins = append(m.checkins, c)
}

func (m *MemorySource) AddShift(s ShiftDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.Name] = s
}

func (m *MemorySource) Mark(a MarkedAttendance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked[dayKey{employee: a.EmployeeID, day: generic.StartOfDay(a.Date)}] = a
}

func (m *MemorySource) Checkins(_ context.Context, from, until time.Time) ([]Checkin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Checkin
	for _, c := range m.checkins {
		if !c.Time.Before(from) && c.Time.Before(until) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MemorySource) ShiftType(_ context.Context, name string) (*ShiftDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[name]
	if !ok {
		return nil, generic.ErrNotFound
	}
	return &s, nil
}

func (m *MemorySource) MarkedAttendance(_ context.Context, employeeID string, day time.Time) (*MarkedAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.marked[dayKey{employee: employeeID, day: generic.StartOfDay(day)}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
