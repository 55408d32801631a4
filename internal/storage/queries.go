package storage

import (
	"context"
	"database/sql"
)

// Queries is a thin layer of hand-written SQL over the ledger schema.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type CreditAccountRow struct {
	AccountID        string
	CreditLimitCents int64
	UsedCreditCents  int64
	Version          int64
}

type TransactionRow struct {
	ID          int64
	AccountID   string
	TxType      string
	AmountCents int64
	TxDate      int64 // unix seconds, UTC
	Description string
}

const createAccountSQL = `
INSERT INTO credit_accounts (account_id, credit_limit_cents, used_credit_cents)
VALUES (?, 0, 0)`

func (q *Queries) CreateAccount(ctx context.Context, accountID string) error {
	_, err := q.db.ExecContext(ctx, createAccountSQL, accountID)
	return err
}

const getAccountSQL = `
SELECT account_id, credit_limit_cents, used_credit_cents, version
FROM credit_accounts
WHERE account_id = ?`

func (q *Queries) GetAccount(ctx context.Context, accountID string) (CreditAccountRow, error) {
	var row CreditAccountRow
	err := q.db.QueryRowContext(ctx, getAccountSQL, accountID).Scan(
		&row.AccountID, &row.CreditLimitCents, &row.UsedCreditCents, &row.Version)
	return row, err
}

const updateAccountSQL = `
UPDATE credit_accounts
SET credit_limit_cents = ?, used_credit_cents = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE account_id = ? AND version = ?`

// UpdateAccount applies a compare-and-set write: the update only lands if the
// caller still holds the current version. Returns the number of affected rows.
func (q *Queries) UpdateAccount(ctx context.Context, row CreditAccountRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccountSQL,
		row.CreditLimitCents, row.UsedCreditCents, row.AccountID, row.Version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listAccountIDsSQL = `
SELECT account_id FROM credit_accounts ORDER BY created_at`

func (q *Queries) ListAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listAccountIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const insertTransactionSQL = `
INSERT INTO transactions (account_id, tx_type, amount_cents, tx_date, description)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) InsertTransaction(ctx context.Context, row TransactionRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertTransactionSQL,
		row.AccountID, row.TxType, row.AmountCents, row.TxDate, row.Description).Scan(&id)
	return id, err
}

const listTransactionsSQL = `
SELECT id, account_id, tx_type, amount_cents, tx_date, description
FROM transactions
WHERE account_id = ? AND deleted_at IS NULL
ORDER BY tx_date, id`

const listTransactionsRangeSQL = `
SELECT id, account_id, tx_type, amount_cents, tx_date, description
FROM transactions
WHERE account_id = ? AND deleted_at IS NULL AND tx_date BETWEEN ? AND ?
ORDER BY tx_date, id`

func (q *Queries) ListTransactions(ctx context.Context, accountID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsSQL, accountID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) ListTransactionsInRange(ctx context.Context, accountID string, from, to int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsRangeSQL, accountID, from, to)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var row TransactionRow
		if err := rows.Scan(&row.ID, &row.AccountID, &row.TxType, &row.AmountCents, &row.TxDate, &row.Description); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const softDeleteTransactionSQL = `
UPDATE transactions
SET deleted_at = CURRENT_TIMESTAMP
WHERE id = ? AND account_id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id int64, accountID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteTransactionSQL, id, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
