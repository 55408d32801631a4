package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/services"
	"budget/internal/sheets"
)

// AccountLister enumerates every known account for the periodic sweep.
type AccountLister interface {
	ListAccountIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerWorker keeps the stored used-credit counter in step with the ledger.
// Whenever an account's transactions change it re-derives the usage from the
// current month's totals and, when an exporter is configured, appends the
// month's summary to the report sheet.
//
// The credit service wired here must not publish events, otherwise every
// recompute would schedule another one.
type LedgerWorker struct {
	credit    *services.CreditService
	summary   *services.SummaryService
	accounts  AccountLister
	exporter  sheets.SummaryWriter
	batchSize int
}

func NewLedgerWorker(credit *services.CreditService, summary *services.SummaryService, accounts AccountLister, exporter sheets.SummaryWriter, batchSize int) *LedgerWorker {
	return &LedgerWorker{
		credit:    credit,
		summary:   summary,
		accounts:  accounts,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// currentMonthToken returns the period token for the month containing now.
func currentMonthToken() string {
	return time.Now().UTC().Format("2006-01")
}

// HandleLedgerEvent processes a single change notification from AMQP.
//
// Only transaction events trigger a recompute. Credit events are emitted by
// the credit operations themselves; re-deriving usage on them would undo an
// explicit reset the moment its own event came back around. For those the
// worker only refreshes the exported summary.
func (w *LedgerWorker) HandleLedgerEvent(msg *amqp.LedgerEventMessage) error {
	ctx := context.Background()

	slog.InfoContext(ctx, "Processing ledger event",
		"account_id", msg.AccountID,
		"event", msg.Event)

	if msg.Event == amqp.EventCreditUpdated {
		return w.exportSummary(ctx, msg.AccountID, currentMonthToken())
	}

	return w.refreshAccount(ctx, msg.AccountID)
}

// RecomputeAllAccounts walks every account and refreshes its derived credit
// state. This is the backup mechanism in case AMQP messages are lost.
func (w *LedgerWorker) RecomputeAllAccounts(ctx context.Context) error {
	ids, err := w.accounts.ListAccountIDs(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Recomputing accounts", "count", len(ids))

	processed := 0
	errorCount := 0
	for _, id := range ids {
		if processed >= w.batchSize {
			slog.InfoContext(ctx, "Batch limit reached, deferring remaining accounts",
				"processed", processed, "remaining", len(ids)-processed)
			break
		}
		if err := w.refreshAccount(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh account", "account_id", id, "error", err)
			errorCount++
			continue
		}
		processed++
	}

	slog.InfoContext(ctx, "Account recompute sweep completed",
		"total", len(ids),
		"processed", processed,
		"errors", errorCount)
	return nil
}

func (w *LedgerWorker) refreshAccount(ctx context.Context, accountID uuid.UUID) error {
	period := currentMonthToken()

	ca, err := w.credit.RecomputeUsedCredit(ctx, accountID, period)
	if err != nil {
		return fmt.Errorf("recompute used credit: %w", err)
	}

	slog.InfoContext(ctx, "Used credit recomputed",
		"account_id", accountID,
		"period", period,
		"used_credit_cents", ca.UsedCredit.Cents)

	return w.exportSummary(ctx, accountID, period)
}

func (w *LedgerWorker) exportSummary(ctx context.Context, accountID uuid.UUID, period string) error {
	if w.exporter == nil {
		return nil
	}

	summary, err := w.summary.Summary(ctx, accountID, period)
	if err != nil {
		return fmt.Errorf("compute summary for export: %w", err)
	}

	ref, err := w.exporter.AppendSummary(ctx, sheets.SummaryRow{
		AccountID: accountID,
		Period:    period,
		Summary:   summary,
	})
	if err != nil {
		// Any earlier recompute already landed; export failures are retried
		// on the next sweep.
		slog.ErrorContext(ctx, "Failed to export summary row",
			"account_id", accountID, "period", period, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Summary exported", "account_id", accountID, "ref", ref)
	return nil
}
