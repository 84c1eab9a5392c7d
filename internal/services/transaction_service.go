package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"steward/internal/amqp"
	"steward/internal/core"
	"steward/internal/storage"
)

// TransactionService writes to the ledger and notifies the report
// worker. Writes go to storage first; eventing is best-effort, the
// system of record is always the database.
type TransactionService struct {
	txs    TransactionLedger
	events Publisher
	loc    *time.Location
}

func NewTransactionService(txs TransactionLedger, events Publisher, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{txs: txs, events: events, loc: loc}
}

// Create validates and stores a transaction, then publishes a ledger
// change event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	id, err := s.txs.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	s.publishChange(ctx, id, "created", tx.Date, tx.GroupID)
	return id, nil
}

// Delete soft-deletes a transaction and publishes a ledger change event.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	tx, err := s.txs.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if err := s.txs.SoftDeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	s.publishChange(ctx, id, "deleted", tx.Date, tx.GroupID)
	return nil
}

// List returns transactions matching the filter, newest first.
func (s *TransactionService) List(ctx context.Context, f storage.TxFilter) ([]core.Transaction, error) {
	return s.txs.ListTransactions(ctx, f)
}

func (s *TransactionService) publishChange(ctx context.Context, id, action string, date time.Time, groupID string) {
	if s.events == nil {
		return
	}

	local := date.In(s.loc)
	msg := &amqp.LedgerChangedMessage{
		TransactionID: id,
		Action:        action,
		Year:          local.Year(),
		Month:         int(local.Month()),
		GroupID:       groupID,
	}
	if err := s.events.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change event",
			"transaction_id", id, "action", action, "error", err)
	}
}
