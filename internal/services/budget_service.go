package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// ErrDuplicateMonth is returned when an update would move a budget onto
// a month that already has a different one.
var ErrDuplicateMonth = errors.New("budget already exists for month")

// BudgetService orchestrates budget definitions and their
// reconciliation against the transaction history.
type BudgetService struct {
	budgets      ledger.BudgetStore
	transactions ledger.TransactionStore
	publisher    EventPublisher
	logger       *log.Logger
}

func NewBudgetService(budgets ledger.BudgetStore, transactions ledger.TransactionStore, publisher EventPublisher, logger *log.Logger) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		transactions: transactions,
		publisher:    publisher,
		logger:       logger.WithComponent(log.ComponentBudget),
	}
}

// Create validates and stores a budget. One budget per month: creating
// for a month that already has one replaces that budget's definition in
// place, keeping its ID.
func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	action := amqp.ActionCreated
	existing, err := s.budgets.GetBudgetByMonth(ctx, b.Month)
	switch {
	case err == nil:
		b.ID = existing.ID
		action = amqp.ActionUpdated
	case errors.Is(err, ledger.ErrNotFound):
		b.ID = uuid.NewString()
	default:
		return core.Budget{}, fmt.Errorf("check month: %w", err)
	}

	b.TotalBudgeted = b.ComputedTotalBudgeted()
	reconciled, err := s.reconcile(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	if err := s.budgets.SaveBudget(ctx, reconciled); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget saved",
		log.FieldBudget, reconciled.ID,
		log.FieldMonth, reconciled.Month)
	s.publish(ctx, action, reconciled.ID)
	return reconciled, nil
}

// Update replaces an existing budget's definition. Moving a budget to a
// month that already has a different budget is rejected.
func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if _, err := s.budgets.GetBudget(ctx, b.ID); err != nil {
		return core.Budget{}, err
	}

	existing, err := s.budgets.GetBudgetByMonth(ctx, b.Month)
	if err == nil && existing.ID != b.ID {
		return core.Budget{}, fmt.Errorf("%w: %s", ErrDuplicateMonth, b.Month)
	}
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return core.Budget{}, fmt.Errorf("check month: %w", err)
	}

	b.TotalBudgeted = b.ComputedTotalBudgeted()
	reconciled, err := s.reconcile(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	if err := s.budgets.SaveBudget(ctx, reconciled); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget updated", log.FieldBudget, b.ID)
	s.publish(ctx, amqp.ActionUpdated, b.ID)
	return reconciled, nil
}

// Delete removes a budget by ID.
func (s *BudgetService) Delete(ctx context.Context, id string) error {
	if err := s.budgets.DeleteBudget(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Budget deleted", log.FieldBudget, id)
	s.publish(ctx, amqp.ActionDeleted, id)
	return nil
}

// Get returns a budget reconciled against current transactions.
func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	b, err := s.budgets.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	return s.reconcile(ctx, b)
}

// GetByMonth returns the month's budget reconciled against current
// transactions.
func (s *BudgetService) GetByMonth(ctx context.Context, month string) (core.Budget, error) {
	b, err := s.budgets.GetBudgetByMonth(ctx, month)
	if err != nil {
		return core.Budget{}, err
	}
	return s.reconcile(ctx, b)
}

// List returns all budgets reconciled against current transactions,
// ordered by month.
func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	bs, err := s.budgets.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}

	ts, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Budget, 0, len(bs))
	for _, b := range bs {
		reconciled, err := core.Reconcile(b, ts)
		if err != nil {
			return nil, fmt.Errorf("reconcile budget %s: %w", b.ID, err)
		}
		out = append(out, reconciled)
	}
	return out, nil
}

// ReconcileAll recomputes spent figures for every stored budget and
// persists the results. Used by the worker after ledger events.
func (s *BudgetService) ReconcileAll(ctx context.Context) (int, error) {
	bs, err := s.budgets.ListBudgets(ctx)
	if err != nil {
		return 0, err
	}

	ts, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range bs {
		reconciled, err := core.Reconcile(b, ts)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to reconcile budget",
				log.FieldBudget, b.ID,
				log.FieldError, err.Error())
			continue
		}
		if err := s.budgets.SaveBudget(ctx, reconciled); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist reconciled budget",
				log.FieldBudget, b.ID,
				log.FieldError, err.Error())
			continue
		}
		count++
	}
	return count, nil
}

func (s *BudgetService) reconcile(ctx context.Context, b core.Budget) (core.Budget, error) {
	ts, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	reconciled, err := core.Reconcile(b, ts)
	if err != nil {
		return core.Budget{}, fmt.Errorf("reconcile budget: %w", err)
	}
	return reconciled, nil
}

func (s *BudgetService) publish(ctx context.Context, action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.EntityBudget, action, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldBudget, id,
			log.FieldError, err.Error())
	}
}
