package core

// Totals carries the income and expense sums for a period.
type Totals struct {
	Income   Money
	Expenses Money
}

// Aggregate folds a snapshot of the transaction feed into income and expense
// totals for the given period. Transactions with unknown types are skipped:
// the feed is owned by the persistence layer and may contain legacy records
// the engine cannot reject.
//
// The reduction is associative and commutative, so the order of the snapshot
// does not matter, and calling it again with the same inputs yields the same
// totals.
func Aggregate(txs []Transaction, p Period) Totals {
	var t Totals
	for _, tx := range txs {
		if !p.Contains(tx.Date.Time) {
			continue
		}
		switch tx.Type {
		case Income:
			t.Income.Cents += tx.Amount.Cents
		case Expense:
			t.Expenses.Cents += tx.Amount.Cents
		}
	}
	return t
}
