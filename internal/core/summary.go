package core

// ComputeSummary combines aggregated totals with the credit limit into the
// derived summary figures.
//
// When income covers expenses no credit is drawn and own funds equal the
// surplus. When expenses exceed income the shortfall is absorbed by credit
// up to the limit. TotalBalance is own funds plus remaining credit headroom:
// what the user could still spend.
//
// The displayed CreditUsed here is always recomputed from the totals; the
// stored UsedCredit counter on CreditAccount is a separately settable
// quantity (see RecomputeUsedCredit). The two are intentionally not unified.
func ComputeSummary(t Totals, creditLimit Money) FinancialSummary {
	balance := t.Income.Cents - t.Expenses.Cents

	ownFunds := balance
	if ownFunds < 0 {
		ownFunds = 0
	}

	creditUsed := -balance
	if creditUsed < 0 {
		creditUsed = 0
	}
	if creditUsed > creditLimit.Cents {
		creditUsed = creditLimit.Cents
	}

	available := creditLimit.Cents - creditUsed

	return FinancialSummary{
		Income:          t.Income,
		Expenses:        t.Expenses,
		CreditLimit:     creditLimit,
		CreditUsed:      Money{Cents: creditUsed},
		OwnFunds:        Money{Cents: ownFunds},
		AvailableCredit: Money{Cents: available},
		TotalBalance:    Money{Cents: ownFunds + available},
	}
}
