// Package store provides in-memory payroll.AdjustmentStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/paye-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries map[string]payroll.AdjustmentEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]payroll.AdjustmentEntry)}
}

func (m *Memory) Exists(_ context.Context, f payroll.AdjustmentFilter) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(f), nil
}

func (m *Memory) Insert(_ context.Context, e payroll.AdjustmentEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(e)
}

func (m *Memory) Submit(_ context.Context, id string) (payroll.AdjustmentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked(id)
}

func (m *Memory) Get(_ context.Context, id string) (payroll.AdjustmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(id)
}

func (m *Memory) List(_ context.Context, f payroll.AdjustmentFilter) ([]payroll.AdjustmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(f), nil
}

func (m *Memory) existsLocked(f payroll.AdjustmentFilter) bool {
	for _, e := range m.entries {
		if f.Matches(e) {
			return true
		}
	}
	return false
}

func (m *Memory) insertLocked(e payroll.AdjustmentEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := m.entries[e.ID]; ok {
		return fmt.Errorf("%w: %s", payroll.ErrDuplicateAdjustment, e.ID)
	}
	e.Status = payroll.StatusDraft
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) submitLocked(id string) (payroll.AdjustmentEntry, error) {
	e, err := m.getLocked(id)
	if err != nil {
		return payroll.AdjustmentEntry{}, err
	}
	if e.Status == payroll.StatusSubmitted {
		return e, fmt.Errorf("%w: %s", payroll.ErrAlreadySubmitted, id)
	}
	e.Status = payroll.StatusSubmitted
	m.entries[id] = e
	return e, nil
}

func (m *Memory) getLocked(id string) (payroll.AdjustmentEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return payroll.AdjustmentEntry{}, fmt.Errorf("%w: %s", payroll.ErrAdjustmentNotFound, id)
	}
	return e, nil
}

func (m *Memory) listLocked(f payroll.AdjustmentFilter) []payroll.AdjustmentEntry {
	var result []payroll.AdjustmentEntry
	for _, e := range m.entries {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.PayrollDate.Equal(b.PayrollDate) {
			return a.PayrollDate.Before(b.PayrollDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(_ context.Context, fn func(payroll.AdjustmentStore) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := make(map[string]payroll.AdjustmentEntry, len(tm.entries))
	for k, v := range tm.entries {
		snapshot[k] = v
	}

	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.entries = snapshot
		return err
	}
	return nil
}

// txMemoryView writes through to the parent while its lock is held.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) Exists(_ context.Context, f payroll.AdjustmentFilter) (bool, error) {
	return tv.parent.existsLocked(f), nil
}

func (tv *txMemoryView) Insert(_ context.Context, e payroll.AdjustmentEntry) error {
	return tv.parent.insertLocked(e)
}

func (tv *txMemoryView) Submit(_ context.Context, id string) (payroll.AdjustmentEntry, error) {
	return tv.parent.submitLocked(id)
}

func (tv *txMemoryView) Get(_ context.Context, id string) (payroll.AdjustmentEntry, error) {
	return tv.parent.getLocked(id)
}

func (tv *txMemoryView) List(_ context.Context, f payroll.AdjustmentFilter) ([]payroll.AdjustmentEntry, error) {
	return tv.parent.listLocked(f), nil
}
