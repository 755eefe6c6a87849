package worker

import (
	"context"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func newTestWorker(t *testing.T) (*ReconcileWorker, *services.TransactionService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger := log.New(log.DefaultConfig())
	txSvc := services.NewTransactionService(store, nil, logger)
	budgetSvc := services.NewBudgetService(store, store, nil, logger)
	return NewReconcileWorker(budgetSvc, logger), txSvc, store
}

func seedBudget(t *testing.T, store *memory.Store) core.Budget {
	t.Helper()
	b := core.Budget{
		ID:            "b1",
		Month:         "2025-01",
		TotalBudgeted: core.Money{Cents: 5000},
		Categories: []core.BudgetCategory{
			{Category: core.CategoryFood, Budgeted: core.Money{Cents: 5000}},
		},
	}
	if err := store.SaveBudget(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleLedgerEventReconciles(t *testing.T) {
	ctx := context.Background()
	w, txSvc, store := newTestWorker(t)
	seedBudget(t, store)

	spend := core.Transaction{
		Amount: core.Money{Cents: 3000}, Type: core.Expense,
		Category: core.CategoryFood, Description: "Groceries",
		Date: core.NewDate(2025, 1, 10),
	}
	created, err := txSvc.Create(ctx, spend)
	if err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EntityTransaction, amqp.ActionCreated, created.ID)
	if err := w.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// read the persisted record directly so reconcile-on-read cannot mask
	stored, err := store.GetBudget(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalSpent.Cents != 3000 {
		t.Fatalf("total spent %d", stored.TotalSpent.Cents)
	}
	if stored.Categories[0].Remaining.Cents != 2000 {
		t.Fatalf("remaining %d", stored.Categories[0].Remaining.Cents)
	}
}

func TestHandleLedgerEventSkipsBudgetEvents(t *testing.T) {
	ctx := context.Background()
	w, txSvc, store := newTestWorker(t)
	seedBudget(t, store)

	spend := core.Transaction{
		Amount: core.Money{Cents: 3000}, Type: core.Expense,
		Category: core.CategoryFood, Description: "Groceries",
		Date: core.NewDate(2025, 1, 10),
	}
	if _, err := txSvc.Create(ctx, spend); err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EntityBudget, amqp.ActionUpdated, "b1")
	if err := w.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	stored, err := store.GetBudget(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalSpent.Cents != 0 {
		t.Fatal("budget event should not trigger a reconcile pass")
	}
}

func TestReconcilePending(t *testing.T) {
	ctx := context.Background()
	w, txSvc, store := newTestWorker(t)
	seedBudget(t, store)

	spend := core.Transaction{
		Amount: core.Money{Cents: 1500}, Type: core.Expense,
		Category: core.CategoryFood, Description: "Takeout",
		Date: core.NewDate(2025, 1, 12),
	}
	if _, err := txSvc.Create(ctx, spend); err != nil {
		t.Fatal(err)
	}

	if err := w.ReconcilePending(ctx); err != nil {
		t.Fatalf("reconcile pending: %v", err)
	}

	stored, err := store.GetBudget(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalSpent.Cents != 1500 {
		t.Fatalf("total spent %d", stored.TotalSpent.Cents)
	}
}
