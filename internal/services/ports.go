package services

import (
	"context"

	"github.com/google/uuid"

	"budget/internal/core"
)

// Ports the services need from the persistence and messaging layers.
// *storage.SQLiteRepository and *amqp.Client satisfy them.
type (
	LedgerStore interface {
		CreateAccount(ctx context.Context, accountID uuid.UUID) error
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		ListTransactions(ctx context.Context, accountID uuid.UUID, p core.Period) ([]core.Transaction, error)
		SoftDeleteTransaction(ctx context.Context, id int64, accountID uuid.UUID) error
	}

	CreditStore interface {
		GetCreditAccount(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, int64, error)
		UpdateCreditAccount(ctx context.Context, ca core.CreditAccount, version int64) error
	}

	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, accountID uuid.UUID, transactionID int64, event string) error
	}
)
