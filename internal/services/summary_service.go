package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"budget/internal/core"
)

// SummaryService is the composition root for the derived summary: it
// resolves the period token, pulls a ledger snapshot and the credit record,
// and runs the pure calculators. It holds no state and is safe to invoke
// concurrently.
type SummaryService struct {
	ledger LedgerStore
	credit CreditStore
}

func NewSummaryService(ledger LedgerStore, credit CreditStore) *SummaryService {
	return &SummaryService{ledger: ledger, credit: credit}
}

// Summary computes the financial summary for the account over the period
// described by the token ("all" or "YYYY-MM").
func (s *SummaryService) Summary(ctx context.Context, accountID uuid.UUID, periodToken string) (core.FinancialSummary, error) {
	p, err := core.ParsePeriod(periodToken)
	if err != nil {
		return core.FinancialSummary{}, err
	}

	ca, _, err := s.credit.GetCreditAccount(ctx, accountID)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("load credit account: %w", err)
	}

	txs, err := s.ledger.ListTransactions(ctx, accountID, p)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("load ledger snapshot: %w", err)
	}

	totals := core.Aggregate(txs, p)
	return core.ComputeSummary(totals, ca.CreditLimit), nil
}
