package core

import (
	"math/rand"
	"testing"
)

func TestComputeSummaryNoCreditNeeded(t *testing.T) {
	// income 1000, expenses 600, limit 0
	got := ComputeSummary(Totals{Income: Money{Cents: 100000}, Expenses: Money{Cents: 60000}}, Money{})
	if got.Income.Cents != 100000 || got.Expenses.Cents != 60000 {
		t.Fatalf("totals passed through wrong: %+v", got)
	}
	if got.CreditUsed.Cents != 0 {
		t.Fatalf("creditUsed = %d, want 0", got.CreditUsed.Cents)
	}
	if got.OwnFunds.Cents != 40000 {
		t.Fatalf("ownFunds = %d, want 40000", got.OwnFunds.Cents)
	}
	if got.TotalBalance.Cents != 40000 {
		t.Fatalf("totalBalance = %d, want 40000", got.TotalBalance.Cents)
	}
}

func TestComputeSummaryDeficitAbsorbedByCredit(t *testing.T) {
	// income 200, expenses 900, limit 500: shortfall 700 clamps to the limit
	got := ComputeSummary(Totals{Income: Money{Cents: 20000}, Expenses: Money{Cents: 90000}}, Money{Cents: 50000})
	if got.OwnFunds.Cents != 0 {
		t.Fatalf("ownFunds = %d, want 0", got.OwnFunds.Cents)
	}
	if got.CreditUsed.Cents != 50000 {
		t.Fatalf("creditUsed = %d, want 50000", got.CreditUsed.Cents)
	}
	if got.AvailableCredit.Cents != 0 {
		t.Fatalf("available = %d, want 0", got.AvailableCredit.Cents)
	}
	if got.TotalBalance.Cents != 0 {
		t.Fatalf("totalBalance = %d, want 0", got.TotalBalance.Cents)
	}
}

func TestComputeSummaryPartialDraw(t *testing.T) {
	// shortfall 300 within a limit of 500
	got := ComputeSummary(Totals{Income: Money{Cents: 20000}, Expenses: Money{Cents: 50000}}, Money{Cents: 50000})
	if got.CreditUsed.Cents != 30000 {
		t.Fatalf("creditUsed = %d, want 30000", got.CreditUsed.Cents)
	}
	if got.AvailableCredit.Cents != 20000 {
		t.Fatalf("available = %d, want 20000", got.AvailableCredit.Cents)
	}
	if got.TotalBalance.Cents != 20000 {
		t.Fatalf("totalBalance = %d, want 20000", got.TotalBalance.Cents)
	}
}

func TestComputeSummaryInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		totals := Totals{
			Income:   Money{Cents: rng.Int63n(1000000)},
			Expenses: Money{Cents: rng.Int63n(1000000)},
		}
		limit := Money{Cents: rng.Int63n(500000)}
		s := ComputeSummary(totals, limit)

		if s.CreditUsed.Cents < 0 || s.CreditUsed.Cents > limit.Cents {
			t.Fatalf("creditUsed %d out of [0, %d]", s.CreditUsed.Cents, limit.Cents)
		}
		if s.OwnFunds.Cents < 0 {
			t.Fatalf("negative ownFunds %d", s.OwnFunds.Cents)
		}
		if s.AvailableCredit.Cents < 0 {
			t.Fatalf("negative available %d", s.AvailableCredit.Cents)
		}
		if s.TotalBalance.Cents != s.OwnFunds.Cents+(limit.Cents-s.CreditUsed.Cents) {
			t.Fatalf("totalBalance identity broken: %+v", s)
		}
		if s.TotalBalance.Cents < 0 {
			t.Fatalf("negative totalBalance %d", s.TotalBalance.Cents)
		}

		// Pure function: same inputs, same output
		if again := ComputeSummary(totals, limit); again != s {
			t.Fatalf("not idempotent: %+v vs %+v", s, again)
		}
	}
}
