package core

// SetLimit replaces the credit limit. Negative limits are rejected with
// ErrInvalidAmount. If the stored usage exceeds the new limit it is clamped
// down: lowering the limit below current usage must never leave the account
// with negative available credit.
func (ca *CreditAccount) SetLimit(newLimit Money) error {
	if newLimit.Cents < 0 {
		return ErrInvalidAmount
	}
	ca.CreditLimit = newLimit
	if ca.UsedCredit.Cents > newLimit.Cents {
		ca.UsedCredit = newLimit
	}
	return nil
}

// ResetUsedCredit zeroes the stored usage counter. Always succeeds.
func (ca *CreditAccount) ResetUsedCredit() {
	ca.UsedCredit = Money{}
}

// RecomputeUsedCredit derives the stored usage from ledger totals instead of
// an externally supplied delta: the shortfall of income against expenses,
// clamped to [0, CreditLimit]. This keeps the counter consistent with the
// transaction feed rather than drifting independently.
func (ca *CreditAccount) RecomputeUsedCredit(t Totals) {
	shortfall := t.Expenses.Cents - t.Income.Cents
	if shortfall < 0 {
		shortfall = 0
	}
	if shortfall > ca.CreditLimit.Cents {
		shortfall = ca.CreditLimit.Cents
	}
	ca.UsedCredit = Money{Cents: shortfall}
}

// AvailableCredit is the remaining headroom, CreditLimit - UsedCredit. Given
// the invariants it is never negative.
func (ca CreditAccount) AvailableCredit() Money {
	return Money{Cents: ca.CreditLimit.Cents - ca.UsedCredit.Cents}
}
