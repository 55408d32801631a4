package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"budget/internal/core"
)

// fakeStore is an in-memory LedgerStore + CreditStore for service tests.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*fakeAccount
	nextTxID int64
	txs      []core.Transaction

	// forced conflicts: UpdateCreditAccount fails this many times
	conflicts int
}

type fakeAccount struct {
	credit  core.CreditAccount
	version int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[uuid.UUID]*fakeAccount)}
}

func (f *fakeStore) CreateAccount(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[accountID] = &fakeAccount{credit: core.NewCreditAccount(accountID), version: 1}
	return nil
}

func (f *fakeStore) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTxID++
	tx.ID = f.nextTxID
	f.txs = append(f.txs, tx)
	return tx.ID, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, accountID uuid.UUID, p core.Period) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.AccountID == accountID && p.Contains(tx.Date.Time) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) SoftDeleteTransaction(_ context.Context, id int64, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, tx := range f.txs {
		if tx.ID == id && tx.AccountID == accountID {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrAccountNotFound
}

func (f *fakeStore) GetCreditAccount(_ context.Context, accountID uuid.UUID) (core.CreditAccount, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return core.CreditAccount{}, 0, core.ErrAccountNotFound
	}
	return acc.credit, acc.version, nil
}

func (f *fakeStore) UpdateCreditAccount(_ context.Context, ca core.CreditAccount, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return core.ErrVersionConflict
	}
	acc, ok := f.accounts[ca.AccountID]
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

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, _ uuid.UUID, _ int64, event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}
