package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
)

// CreditService applies the three credit-account operations against storage.
// Every mutation is a load, a pure in-memory transition, and a versioned
// write-back; a concurrent writer shows up as a version conflict, which is
// retried once and then surfaced rather than silently overwritten.
type CreditService struct {
	ledger    LedgerStore
	credit    CreditStore
	publisher EventPublisher
}

func NewCreditService(ledger LedgerStore, credit CreditStore, publisher EventPublisher) *CreditService {
	return &CreditService{
		ledger:    ledger,
		credit:    credit,
		publisher: publisher,
	}
}

// SetLimit replaces the credit limit, clamping stored usage if the new limit
// undercuts it. Negative limits fail with core.ErrInvalidAmount.
func (s *CreditService) SetLimit(ctx context.Context, accountID uuid.UUID, newLimit core.Money) (core.CreditAccount, error) {
	return s.mutate(ctx, accountID, func(ca *core.CreditAccount) error {
		return ca.SetLimit(newLimit)
	})
}

// ResetUsedCredit zeroes the stored usage counter.
func (s *CreditService) ResetUsedCredit(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, error) {
	return s.mutate(ctx, accountID, func(ca *core.CreditAccount) error {
		ca.ResetUsedCredit()
		return nil
	})
}

// RecomputeUsedCredit re-derives the stored usage from the account's ledger
// totals over the given period.
func (s *CreditService) RecomputeUsedCredit(ctx context.Context, accountID uuid.UUID, periodToken string) (core.CreditAccount, error) {
	p, err := core.ParsePeriod(periodToken)
	if err != nil {
		return core.CreditAccount{}, err
	}

	txs, err := s.ledger.ListTransactions(ctx, accountID, p)
	if err != nil {
		return core.CreditAccount{}, fmt.Errorf("load ledger snapshot: %w", err)
	}
	totals := core.Aggregate(txs, p)

	return s.mutate(ctx, accountID, func(ca *core.CreditAccount) error {
		ca.RecomputeUsedCredit(totals)
		return nil
	})
}

// GetCreditAccount returns the stored credit record.
func (s *CreditService) GetCreditAccount(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, error) {
	ca, _, err := s.credit.GetCreditAccount(ctx, accountID)
	return ca, err
}

func (s *CreditService) mutate(ctx context.Context, accountID uuid.UUID, apply func(*core.CreditAccount) error) (core.CreditAccount, error) {
	const attempts = 2

	var lastErr error
	for i := 0; i < attempts; i++ {
		ca, version, err := s.credit.GetCreditAccount(ctx, accountID)
		if err != nil {
			return core.CreditAccount{}, err
		}

		if err := apply(&ca); err != nil {
			return core.CreditAccount{}, err
		}

		err = s.credit.UpdateCreditAccount(ctx, ca, version)
		if errors.Is(err, core.ErrVersionConflict) {
			lastErr = err
			slog.WarnContext(ctx, "Credit account version conflict, retrying",
				"account_id", accountID, "attempt", i+1)
			continue
		}
		if err != nil {
			return core.CreditAccount{}, err
		}

		s.publishCreditEvent(ctx, accountID)
		return ca, nil
	}

	return core.CreditAccount{}, lastErr
}

func (s *CreditService) publishCreditEvent(ctx context.Context, accountID uuid.UUID) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping credit event")
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, accountID, 0, amqp.EventCreditUpdated); err != nil {
		// Don't fail the request - the credit record is already stored
		slog.ErrorContext(ctx, "Failed to publish credit event",
			"account_id", accountID, "error", err)
	}
}
