package payroll

import "context"

// =============================================================================
// ADJUSTMENT STORE - Persistence for additional-salary entries
// =============================================================================
//
// Implementations:
//   - payroll/store/memory.go: in-memory (tests, dev)
//   - store/sqlite/sqlite.go: SQLite
//
// Exists-then-Insert is check-then-act. Two concurrent posts for the same
// employee and period can both pass the check; callers serialize per
// employee-period.

// AdjustmentStore persists adjustment entries.
type AdjustmentStore interface {
	// Exists reports whether any entry matches the filter.
	Exists(ctx context.Context, f AdjustmentFilter) (bool, error)

	// Insert stores a new Draft entry. Returns ErrDuplicateAdjustment if the
	// ID is taken.
	Insert(ctx context.Context, e AdjustmentEntry) error

	// Submit moves a Draft entry to Submitted and returns it.
	Submit(ctx context.Context, id string) (AdjustmentEntry, error)

	// Get returns the entry or ErrAdjustmentNotFound.
	Get(ctx context.Context, id string) (AdjustmentEntry, error)

	// List returns matching entries ordered by payroll date then creation time.
	List(ctx context.Context, f AdjustmentFilter) ([]AdjustmentEntry, error)
}

// TxAdjustmentStore adds atomic multi-entry writes.
type TxAdjustmentStore interface {
	AdjustmentStore

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the passed store is rolled back.
	WithTx(ctx context.Context, fn func(AdjustmentStore) error) error
}
