package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/services"
	"budget/internal/sheets/memory"
)

// workerStore is a minimal in-memory store satisfying the service ports.
type workerStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*storedAccount
	nextTxID int64
	txs      []core.Transaction
}

type storedAccount struct {
	credit  core.CreditAccount
	version int64
}

func newWorkerStore() *workerStore {
	return &workerStore{accounts: make(map[uuid.UUID]*storedAccount)}
}

func (s *workerStore) CreateAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &storedAccount{credit: core.NewCreditAccount(id), version: 1}
	return nil
}

func (s *workerStore) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxID++
	tx.ID = s.nextTxID
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *workerStore) ListTransactions(_ context.Context, id uuid.UUID, p core.Period) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.AccountID == id && p.Contains(tx.Date.Time) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *workerStore) SoftDeleteTransaction(_ context.Context, id int64, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id && tx.AccountID == accountID {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrAccountNotFound
}

func (s *workerStore) GetCreditAccount(_ context.Context, id uuid.UUID) (core.CreditAccount, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return core.CreditAccount{}, 0, core.ErrAccountNotFound
	}
	return acc.credit, acc.version, nil
}

func (s *workerStore) UpdateCreditAccount(_ context.Context, ca core.CreditAccount, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[ca.AccountID]
	if !ok {
		return core.ErrAccountNotFound
	}
	if acc.version != version {
		return core.ErrVersionConflict
	}
	acc.credit = ca
	acc.version++
	return nil
}

func (s *workerStore) ListAccountIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id := range s.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func thisMonthDate() core.Date {
	now := time.Now().UTC()
	return core.NewDate(now.Year(), int(now.Month()), 15)
}

func newTestWorker(store *workerStore, exporter *memory.Store) *LedgerWorker {
	credit := services.NewCreditService(store, store, nil)
	summary := services.NewSummaryService(store, store)
	var w *LedgerWorker
	if exporter != nil {
		w = NewLedgerWorker(credit, summary, store, exporter, 10)
	} else {
		w = NewLedgerWorker(credit, summary, store, nil, 10)
	}
	return w
}

func TestHandleLedgerEventRecomputesUsedCredit(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()
	id := uuid.New()
	store.CreateAccount(ctx, id)

	credit := services.NewCreditService(store, store, nil)
	if _, err := credit.SetLimit(ctx, id, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	store.InsertTransaction(ctx, core.Transaction{
		AccountID: id, Type: core.Expense, Amount: core.Money{Cents: 30000}, Date: thisMonthDate(),
	})

	w := newTestWorker(store, nil)
	msg := amqp.NewLedgerEventMessage(id, 1, amqp.EventTransactionRecorded)
	if err := w.HandleLedgerEvent(msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	ca, _, _ := store.GetCreditAccount(ctx, id)
	if ca.UsedCredit.Cents != 30000 {
		t.Fatalf("used = %d, want 30000", ca.UsedCredit.Cents)
	}
}

func TestCreditEventDoesNotOverrideReset(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()
	id := uuid.New()
	store.CreateAccount(ctx, id)

	credit := services.NewCreditService(store, store, nil)
	if _, err := credit.SetLimit(ctx, id, core.Money{Cents: 100000}); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	store.InsertTransaction(ctx, core.Transaction{
		AccountID: id, Type: core.Expense, Amount: core.Money{Cents: 50000}, Date: thisMonthDate(),
	})

	w := newTestWorker(store, nil)
	if err := w.HandleLedgerEvent(amqp.NewLedgerEventMessage(id, 1, amqp.EventTransactionRecorded)); err != nil {
		t.Fatalf("handle transaction event: %v", err)
	}
	ca, _, _ := store.GetCreditAccount(ctx, id)
	if ca.UsedCredit.Cents != 50000 {
		t.Fatalf("used = %d, want 50000 before reset", ca.UsedCredit.Cents)
	}

	if _, err := credit.ResetUsedCredit(ctx, id); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// The reset itself emits a credit event; when it arrives it must not
	// re-derive usage from the ledger and undo the reset.
	if err := w.HandleLedgerEvent(amqp.NewLedgerEventMessage(id, 0, amqp.EventCreditUpdated)); err != nil {
		t.Fatalf("handle credit event: %v", err)
	}

	ca, _, _ = store.GetCreditAccount(ctx, id)
	if ca.UsedCredit.Cents != 0 {
		t.Fatalf("reset was undone: used = %d, want 0", ca.UsedCredit.Cents)
	}
}

func TestCreditEventStillExportsSummary(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()
	id := uuid.New()
	store.CreateAccount(ctx, id)
	store.InsertTransaction(ctx, core.Transaction{
		AccountID: id, Type: core.Income, Amount: core.Money{Cents: 7000}, Date: thisMonthDate(),
	})

	exporter := memory.New()
	w := newTestWorker(store, exporter)
	if err := w.HandleLedgerEvent(amqp.NewLedgerEventMessage(id, 0, amqp.EventCreditUpdated)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 || rows[0].Summary.Income.Cents != 7000 {
		t.Fatalf("expected one exported row with income 7000, got %+v", rows)
	}
}

func TestHandleLedgerEventExports(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()
	id := uuid.New()
	store.CreateAccount(ctx, id)
	store.InsertTransaction(ctx, core.Transaction{
		AccountID: id, Type: core.Income, Amount: core.Money{Cents: 12345}, Date: thisMonthDate(),
	})

	exporter := memory.New()
	w := newTestWorker(store, exporter)
	if err := w.HandleLedgerEvent(amqp.NewLedgerEventMessage(id, 1, amqp.EventTransactionRecorded)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d exported rows, want 1", len(rows))
	}
	if rows[0].AccountID != id || rows[0].Summary.Income.Cents != 12345 {
		t.Fatalf("exported row wrong: %+v", rows[0])
	}
}

func TestRecomputeAllAccounts(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		store.CreateAccount(ctx, id)
		ids = append(ids, id)
	}
	credit := services.NewCreditService(store, store, nil)
	for _, id := range ids {
		if _, err := credit.SetLimit(ctx, id, core.Money{Cents: 10000}); err != nil {
			t.Fatalf("set limit: %v", err)
		}
		store.InsertTransaction(ctx, core.Transaction{
			AccountID: id, Type: core.Expense, Amount: core.Money{Cents: 4000}, Date: thisMonthDate(),
		})
	}

	w := newTestWorker(store, nil)
	if err := w.RecomputeAllAccounts(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	for _, id := range ids {
		ca, _, _ := store.GetCreditAccount(ctx, id)
		if ca.UsedCredit.Cents != 4000 {
			t.Fatalf("account %s used = %d, want 4000", id, ca.UsedCredit.Cents)
		}
	}
}

func TestRecomputeAllAccountsRespectsBatchSize(t *testing.T) {
	store := newWorkerStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		store.CreateAccount(ctx, uuid.New())
	}

	credit := services.NewCreditService(store, store, nil)
	summary := services.NewSummaryService(store, store)
	w := NewLedgerWorker(credit, summary, store, nil, 2)

	// A sweep over more accounts than the batch must still succeed
	if err := w.RecomputeAllAccounts(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
}
