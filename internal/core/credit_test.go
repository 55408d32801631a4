package core

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewCreditAccount(t *testing.T) {
	id := uuid.New()
	ca := NewCreditAccount(id)
	if ca.AccountID != id {
		t.Fatalf("account id not carried")
	}
	if ca.CreditLimit.Cents != 0 || ca.UsedCredit.Cents != 0 {
		t.Fatalf("fresh account must start at zero: %+v", ca)
	}
}

func TestSetLimit(t *testing.T) {
	cases := []struct {
		name      string
		limit     int64
		used      int64
		newLimit  int64
		wantErr   bool
		wantLimit int64
		wantUsed  int64
	}{
		{name: "raise", limit: 100, used: 50, newLimit: 200, wantLimit: 200, wantUsed: 50},
		{name: "lower above usage", limit: 1000, used: 200, newLimit: 500, wantLimit: 500, wantUsed: 200},
		{name: "lower clamps usage", limit: 100000, used: 80000, newLimit: 50000, wantLimit: 50000, wantUsed: 50000},
		{name: "zero", limit: 100, used: 80, newLimit: 0, wantLimit: 0, wantUsed: 0},
		{name: "negative rejected", limit: 100, used: 50, newLimit: -1, wantErr: true, wantLimit: 100, wantUsed: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ca := CreditAccount{CreditLimit: Money{Cents: tc.limit}, UsedCredit: Money{Cents: tc.used}}
			err := ca.SetLimit(Money{Cents: tc.newLimit})
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if ca.CreditLimit.Cents != tc.wantLimit || ca.UsedCredit.Cents != tc.wantUsed {
				t.Fatalf("got limit=%d used=%d, want limit=%d used=%d",
					ca.CreditLimit.Cents, ca.UsedCredit.Cents, tc.wantLimit, tc.wantUsed)
			}
			if err := ca.Validate(); err != nil {
				t.Fatalf("account left inconsistent: %v", err)
			}
		})
	}
}

func TestResetUsedCredit(t *testing.T) {
	for _, used := range []int64{0, 1, 80000} {
		ca := CreditAccount{CreditLimit: Money{Cents: 100000}, UsedCredit: Money{Cents: used}}
		ca.ResetUsedCredit()
		if ca.UsedCredit.Cents != 0 {
			t.Fatalf("used = %d after reset", ca.UsedCredit.Cents)
		}
		if ca.CreditLimit.Cents != 100000 {
			t.Fatalf("reset must not touch the limit")
		}
	}
}

func TestRecomputeUsedCredit(t *testing.T) {
	cases := []struct {
		name     string
		income   int64
		expenses int64
		limit    int64
		want     int64
	}{
		{name: "surplus draws nothing", income: 1000, expenses: 600, limit: 500, want: 0},
		{name: "shortfall within limit", income: 200, expenses: 500, limit: 500, want: 300},
		{name: "shortfall clamped", income: 200, expenses: 900, limit: 500, want: 500},
		{name: "zero limit", income: 0, expenses: 900, limit: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ca := CreditAccount{CreditLimit: Money{Cents: tc.limit}, UsedCredit: Money{Cents: 42}}
			ca.RecomputeUsedCredit(Totals{Income: Money{Cents: tc.income}, Expenses: Money{Cents: tc.expenses}})
			if ca.UsedCredit.Cents != tc.want {
				t.Fatalf("used = %d, want %d", ca.UsedCredit.Cents, tc.want)
			}
			if err := ca.Validate(); err != nil {
				t.Fatalf("account left inconsistent: %v", err)
			}
		})
	}
}

func TestAvailableCredit(t *testing.T) {
	ca := CreditAccount{CreditLimit: Money{Cents: 500}, UsedCredit: Money{Cents: 120}}
	if got := ca.AvailableCredit().Cents; got != 380 {
		t.Fatalf("available = %d, want 380", got)
	}
}
