// Package ledger defines the ports between the domain and its
// persistence backends.
package ledger

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned by lookups for ids or months with no record.
var ErrNotFound = errors.New("not found")

// RecurringTransaction pairs a recurring template with the time its
// last occurrence was materialized. A zero LastRun means never.
type RecurringTransaction struct {
	Transaction core.Transaction
	LastRun     time.Time
}

type (
	// TransactionStore owns the transaction collection. Reads return
	// snapshots the caller may aggregate freely; updates are
	// full-field replaces keyed by id.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// BudgetStore holds budget definitions. Save is an upsert by id;
	// month uniqueness is the caller's concern.
	BudgetStore interface {
		SaveBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, id string) error
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		GetBudgetByMonth(ctx context.Context, month string) (core.Budget, error)
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// RecurringStore exposes recurring templates to the materializer.
	RecurringStore interface {
		ListRecurring(ctx context.Context) ([]RecurringTransaction, error)
		MarkRecurringRun(ctx context.Context, id string, at time.Time) error
	}
)

// Store is the full backend surface a cmd wires up.
type Store interface {
	TransactionStore
	BudgetStore
	RecurringStore
	Close() error
}
