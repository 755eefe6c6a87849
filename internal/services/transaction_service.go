package services

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/exporter"
	"fintrack/internal/importer"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// EventPublisher emits ledger change notifications. A nil publisher
// disables eventing.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, entity, action, id string) error
}

// TransactionService orchestrates transaction operations across the
// store and the event bus.
type TransactionService struct {
	store     ledger.TransactionStore
	publisher EventPublisher
	logger    *log.Logger

	// version increments on every mutation; readers stamp cache keys
	// with it so stale computed views are never served
	version atomic.Uint64
}

func NewTransactionService(store ledger.TransactionStore, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTransaction),
	}
}

// Version identifies the current state of the transaction collection.
func (s *TransactionService) Version() uint64 {
	return s.version.Load()
}

func (s *TransactionService) bumpVersion() {
	s.version.Add(1)
}

// Create validates and stores a transaction, assigning it an ID.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.bumpVersion()

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransaction, t.ID,
		log.FieldAmountCents, t.Amount.Cents,
		log.FieldType, string(t.Type),
		log.FieldCategory, string(t.Category))

	s.publish(ctx, amqp.ActionCreated, t.ID)
	return t, nil
}

// Update replaces all fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.bumpVersion()

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransaction, t.ID)
	s.publish(ctx, amqp.ActionUpdated, t.ID)
	return nil
}

// Delete removes a transaction by ID.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.bumpVersion()

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransaction, id)
	s.publish(ctx, amqp.ActionDeleted, id)
	return nil
}

// Get returns a single transaction by ID.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// List returns all transactions, newest first.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// ListInRange returns transactions whose date falls within the range.
func (s *TransactionService) ListInRange(ctx context.Context, r core.DateRange) ([]core.Transaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	ts, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByRange(ts, r), nil
}

// ImportCSV parses and commits a transaction CSV. In strict mode a bad
// row aborts before anything is committed.
func (s *TransactionService) ImportCSV(ctx context.Context, r io.Reader, mode importer.Mode) (importer.Result, error) {
	result, err := importer.ReadTransactions(r, mode)
	if err != nil {
		return importer.Result{}, err
	}

	for i := range result.Transactions {
		result.Transactions[i].ID = uuid.NewString()
		if err := s.store.CreateTransaction(ctx, result.Transactions[i]); err != nil {
			return importer.Result{}, fmt.Errorf("commit imported transaction: %w", err)
		}
	}
	if result.Imported > 0 {
		s.bumpVersion()
	}

	s.logger.InfoContext(ctx, "CSV import finished",
		log.FieldOperation, log.OpImport,
		log.FieldRowCount, result.Imported,
		log.FieldSkipped, result.Skipped)
	return result, nil
}

// ExportCSV writes the full transaction list as CSV.
func (s *TransactionService) ExportCSV(ctx context.Context, w io.Writer) error {
	ts, err := s.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	if err := exporter.WriteCSV(w, ts); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	s.logger.InfoContext(ctx, "CSV export finished",
		log.FieldOperation, log.OpExport,
		log.FieldRowCount, len(ts))
	return nil
}

// publish sends a change event without failing the request. The ledger
// write already succeeded; consumers recover via reconnect and requeue.
func (s *TransactionService) publish(ctx context.Context, action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.EntityTransaction, action, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldTransaction, id,
			log.FieldError, err.Error())
	}
}
