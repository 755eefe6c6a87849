package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// ReconcileWorker keeps budget spend figures in line with the
// transaction history. It reacts to ledger events from the queue and
// runs a periodic sweep to cover events lost while disconnected.
type ReconcileWorker struct {
	budgets *services.BudgetService
	logger  *log.Logger
}

func NewReconcileWorker(budgets *services.BudgetService, logger *log.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		budgets: budgets,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. Budget
// events are emitted by the reconcile pass itself and are skipped to
// avoid feedback loops.
func (w *ReconcileWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Entity != amqp.EntityTransaction {
		w.logger.DebugContext(ctx, "Skipping non-transaction event",
			"entity", msg.Entity,
			"action", msg.Action,
			"id", msg.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger event",
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID)

	count, err := w.budgets.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile budgets: %w", err)
	}

	w.logger.InfoContext(ctx, "Reconcile pass complete",
		log.FieldRowCount, count)
	return nil
}

// ReconcilePending runs a full reconcile sweep. Called on startup and
// from the periodic ticker; safe to run concurrently with event
// handling since reconciliation is idempotent.
func (w *ReconcileWorker) ReconcilePending(ctx context.Context) error {
	count, err := w.budgets.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile budgets: %w", err)
	}

	if count > 0 {
		w.logger.InfoContext(ctx, "Periodic reconcile complete",
			log.FieldRowCount, count)
	}
	return nil
}
