package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"budget/internal/core"
)

func seedAccount(t *testing.T, store *fakeStore) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := store.CreateAccount(context.Background(), id); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return id
}

func record(t *testing.T, store *fakeStore, id uuid.UUID, typ core.TransactionType, cents int64, d core.Date) {
	t.Helper()
	_, err := store.InsertTransaction(context.Background(), core.Transaction{
		AccountID: id, Type: typ, Amount: core.Money{Cents: cents}, Date: d,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestSummaryServiceAllTime(t *testing.T) {
	store := newFakeStore()
	id := seedAccount(t, store)
	record(t, store, id, core.Income, 100000, core.NewDate(2024, 2, 10))
	record(t, store, id, core.Expense, 60000, core.NewDate(2024, 2, 20))

	svc := NewSummaryService(store, store)
	got, err := svc.Summary(context.Background(), id, "all")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Income.Cents != 100000 || got.Expenses.Cents != 60000 {
		t.Fatalf("totals wrong: %+v", got)
	}
	if got.CreditUsed.Cents != 0 || got.OwnFunds.Cents != 40000 || got.TotalBalance.Cents != 40000 {
		t.Fatalf("derived figures wrong: %+v", got)
	}
}

func TestSummaryServiceUsesCreditLimit(t *testing.T) {
	store := newFakeStore()
	id := seedAccount(t, store)
	record(t, store, id, core.Income, 20000, core.NewDate(2024, 2, 1))
	record(t, store, id, core.Expense, 90000, core.NewDate(2024, 2, 2))

	credit := NewCreditService(store, store, nil)
	if _, err := credit.SetLimit(context.Background(), id, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	svc := NewSummaryService(store, store)
	got, err := svc.Summary(context.Background(), id, "2024-02")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.OwnFunds.Cents != 0 || got.CreditUsed.Cents != 50000 || got.TotalBalance.Cents != 0 {
		t.Fatalf("deficit scenario wrong: %+v", got)
	}
}

func TestSummaryServicePeriodFilter(t *testing.T) {
	store := newFakeStore()
	id := seedAccount(t, store)
	record(t, store, id, core.Income, 1000, core.NewDate(2024, 2, 29))
	record(t, store, id, core.Income, 9999, core.NewDate(2024, 3, 1))

	svc := NewSummaryService(store, store)
	got, err := svc.Summary(context.Background(), id, "2024-02")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Income.Cents != 1000 {
		t.Fatalf("period filter leaked: %+v", got)
	}
}

func TestSummaryServiceInvalidPeriod(t *testing.T) {
	store := newFakeStore()
	id := seedAccount(t, store)

	svc := NewSummaryService(store, store)
	if _, err := svc.Summary(context.Background(), id, "2024"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestSummaryServiceUnknownAccount(t *testing.T) {
	store := newFakeStore()
	svc := NewSummaryService(store, store)
	if _, err := svc.Summary(context.Background(), uuid.New(), "all"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
