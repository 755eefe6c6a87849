package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// RecurringProcessor materializes dated occurrences from recurring
// transaction templates.
type RecurringProcessor struct {
	store   ledger.RecurringStore
	service *TransactionService
	logger  *log.Logger
}

// NewRecurringProcessor creates a new recurring transaction processor
func NewRecurringProcessor(store ledger.RecurringStore, service *TransactionService, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		store:   store,
		service: service,
		logger:  logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue creates an occurrence for every template whose frequency
// says one is due, and records the run. Returns the number created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.service == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tmpl := range templates {
		t := tmpl.Transaction

		checker, err := GetDuenessChecker(t.RecurringFrequency)
		if err != nil {
			p.logger.ErrorContext(ctx, "Skipping template with bad frequency",
				log.FieldTransaction, t.ID,
				log.FieldError, err.Error())
			continue
		}

		// The template's own date is the schedule anchor: a monthly
		// template dated the 31st fires on each month's last day.
		if !checker.IsDue(tmpl.LastRun, now, t.Date) {
			continue
		}

		occurrence := core.Transaction{
			Amount:      t.Amount,
			Type:        t.Type,
			Category:    t.Category,
			Description: t.Description,
			Date:        core.DateOf(now),
		}

		created, err := p.service.Create(ctx, occurrence)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to create occurrence from template",
				log.FieldTransaction, t.ID,
				log.FieldDescription, t.Description,
				log.FieldError, err.Error())
			continue
		}

		if err := p.store.MarkRecurringRun(ctx, t.ID, now); err != nil {
			// The occurrence exists; without the run marker the next
			// pass would duplicate it, so surface loudly.
			p.logger.ErrorContext(ctx, "Failed to record recurring run",
				log.FieldTransaction, t.ID,
				log.FieldError, err.Error())
			continue
		}

		processed++
		p.logger.InfoContext(ctx, "Created occurrence from recurring template",
			"template_id", t.ID,
			"occurrence_id", created.ID,
			log.FieldAmountCents, t.Amount.Cents,
			"frequency", string(t.RecurringFrequency))
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}
