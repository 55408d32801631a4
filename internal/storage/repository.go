package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the transaction ledger and the per-account credit
// records. Credit mutations go through a versioned compare-and-set write so
// that two concurrent read-modify-write cycles cannot silently lose an
// update.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateAccount inserts a fresh credit account with zero limit and usage.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := r.queries.CreateAccount(ctx, accountID.String()); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", accountID)
	return nil
}

// GetCreditAccount returns the stored credit record plus its version for a
// later compare-and-set update.
func (r *SQLiteRepository) GetCreditAccount(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, int64, error) {
	row, err := r.queries.GetAccount(ctx, accountID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditAccount{}, 0, core.ErrAccountNotFound
	}
	if err != nil {
		return core.CreditAccount{}, 0, fmt.Errorf("get credit account: %w", err)
	}

	return core.CreditAccount{
		AccountID:   accountID,
		CreditLimit: core.Money{Cents: row.CreditLimitCents},
		UsedCredit:  core.Money{Cents: row.UsedCreditCents},
	}, row.Version, nil
}

// UpdateCreditAccount writes back a mutated credit record. The version must
// be the one returned by GetCreditAccount; if another writer got there first
// the call fails with ErrVersionConflict and no state changes.
func (r *SQLiteRepository) UpdateCreditAccount(ctx context.Context, ca core.CreditAccount, version int64) error {
	affected, err := r.queries.UpdateAccount(ctx, CreditAccountRow{
		AccountID:        ca.AccountID.String(),
		CreditLimitCents: ca.CreditLimit.Cents,
		UsedCreditCents:  ca.UsedCredit.Cents,
		Version:          version,
	})
	if err != nil {
		return fmt.Errorf("update credit account: %w", err)
	}
	if affected == 0 {
		return core.ErrVersionConflict
	}

	slog.InfoContext(ctx, "Credit account updated",
		"account_id", ca.AccountID,
		"credit_limit_cents", ca.CreditLimit.Cents,
		"used_credit_cents", ca.UsedCredit.Cents)
	return nil
}

// ListAccountIDs returns every known account, oldest first.
func (r *SQLiteRepository) ListAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	raw, err := r.queries.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list account ids: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			slog.Warn("Skipping malformed account id", "raw", s, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// InsertTransaction appends a ledger record and returns its ID.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := r.queries.InsertTransaction(ctx, TransactionRow{
		AccountID:   tx.AccountID.String(),
		TxType:      string(tx.Type),
		AmountCents: tx.Amount.Cents,
		TxDate:      tx.Date.Unix(),
		Description: tx.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"account_id", tx.AccountID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents)
	return id, nil
}

// ListTransactions returns a snapshot of the account's ledger, restricted to
// the period when it is bounded. Soft-deleted records are excluded.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, accountID uuid.UUID, p core.Period) ([]core.Transaction, error) {
	var (
		rows []TransactionRow
		err  error
	)
	if p.All {
		rows, err = r.queries.ListTransactions(ctx, accountID.String())
	} else {
		rows, err = r.queries.ListTransactionsInRange(ctx, accountID.String(), p.Start.Unix(), p.End.Unix())
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		accID, err := uuid.Parse(row.AccountID)
		if err != nil {
			return nil, fmt.Errorf("parse account id %q: %w", row.AccountID, err)
		}
		txs[i] = core.Transaction{
			ID:          row.ID,
			AccountID:   accID,
			Type:        core.TransactionType(row.TxType),
			Amount:      core.Money{Cents: row.AmountCents},
			Date:        core.Date{Time: time.Unix(row.TxDate, 0).UTC()},
			Description: row.Description,
		}
	}
	return txs, nil
}

// SoftDeleteTransaction marks a transaction deleted without removing the row.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id int64, accountID uuid.UUID) error {
	affected, err := r.queries.SoftDeleteTransaction(ctx, id, accountID.String())
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id, "account_id", accountID)
	return nil
}
