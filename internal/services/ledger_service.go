package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
)

// LedgerService records and removes transactions. Writes land in SQLite
// first; change events are published best-effort so the worker can refresh
// derived credit state.
type LedgerService struct {
	ledger    LedgerStore
	publisher EventPublisher
}

func NewLedgerService(ledger LedgerStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{ledger: ledger, publisher: publisher}
}

// CreateAccount provisions a new account with a zeroed credit record.
func (s *LedgerService) CreateAccount(ctx context.Context) (uuid.UUID, error) {
	accountID := uuid.New()
	if err := s.ledger.CreateAccount(ctx, accountID); err != nil {
		return uuid.Nil, fmt.Errorf("create account: %w", err)
	}
	return accountID, nil
}

// RecordTransaction validates and appends a ledger record.
func (s *LedgerService) RecordTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.ledger.InsertTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, tx.AccountID, id, amqp.EventTransactionRecorded)
	return id, nil
}

// DeleteTransaction soft deletes a ledger record.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64, accountID uuid.UUID) error {
	if err := s.ledger.SoftDeleteTransaction(ctx, id, accountID); err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	s.publishEvent(ctx, accountID, id, amqp.EventTransactionDeleted)
	return nil
}

// ListTransactions returns the account's ledger snapshot for a period token.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID uuid.UUID, periodToken string) ([]core.Transaction, error) {
	p, err := core.ParsePeriod(periodToken)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListTransactions(ctx, accountID, p)
}

func (s *LedgerService) publishEvent(ctx context.Context, accountID uuid.UUID, transactionID int64, event string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping ledger event")
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, accountID, transactionID, event); err != nil {
		// Don't fail the request - the transaction is saved locally
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"account_id", accountID, "transaction_id", transactionID, "error", err)
	}
}
