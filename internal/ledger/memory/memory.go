// Package memory provides an in-process Store used by tests and by
// deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]core.Transaction
	budgets      map[string]core.Budget
	lastRuns     map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		budgets:      make(map[string]core.Budget),
		lastRuns:     make(map[string]time.Time),
	}
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.transactions, id)
	delete(s.lastRuns, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	// map order is not stable; callers expect a deterministic listing
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = cloneBudget(b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, ledger.ErrNotFound
	}
	return cloneBudget(b), nil
}

func (s *Store) GetBudgetByMonth(_ context.Context, month string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.Month == month {
			return cloneBudget(b), nil
		}
	}
	return core.Budget{}, ledger.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, cloneBudget(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *Store) ListRecurring(_ context.Context) ([]ledger.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ledger.RecurringTransaction
	for _, t := range s.transactions {
		if !t.IsRecurring {
			continue
		}
		out = append(out, ledger.RecurringTransaction{
			Transaction: t,
			LastRun:     s.lastRuns[t.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Transaction.ID < out[j].Transaction.ID
	})
	return out, nil
}

func (s *Store) MarkRecurringRun(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ledger.ErrNotFound
	}
	s.lastRuns[id] = at
	return nil
}

func (s *Store) Close() error { return nil }

func cloneBudget(b core.Budget) core.Budget {
	out := b
	out.Categories = make([]core.BudgetCategory, len(b.Categories))
	copy(out.Categories, b.Categories)
	return out
}
