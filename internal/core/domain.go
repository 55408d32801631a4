package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger record. The amount is always
	// non-negative; whether it adds or subtracts is decided by Type alone.
	Transaction struct {
		ID          int64
		AccountID   uuid.UUID
		Type        TransactionType
		Amount      Money
		Date        Date
		Description string
	}

	// CreditAccount holds the revolving credit configuration for one
	// account. Invariant: 0 <= UsedCredit <= CreditLimit.
	CreditAccount struct {
		AccountID   uuid.UUID
		CreditLimit Money
		UsedCredit  Money
	}

	// FinancialSummary is the derived view over a period. It is computed,
	// never stored.
	FinancialSummary struct {
		Income          Money
		Expenses        Money
		CreditLimit     Money
		CreditUsed      Money
		OwnFunds        Money
		AvailableCredit Money
		TotalBalance    Money
	}
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrAccountNotFound = errors.New("account not found")
	ErrVersionConflict = errors.New("concurrent account update")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Valid reports whether the type is one of the known variants. Records with
// other values are tolerated by the aggregator but rejected on write.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// NewCreditAccount returns the initial credit state for a freshly created
// account: zero limit, zero usage.
func NewCreditAccount(accountID uuid.UUID) CreditAccount {
	return CreditAccount{AccountID: accountID}
}

func (ca CreditAccount) Validate() error {
	if ca.CreditLimit.Cents < 0 || ca.UsedCredit.Cents < 0 {
		return ErrInvalidAmount
	}
	if ca.UsedCredit.Cents > ca.CreditLimit.Cents {
		return errors.New("used credit exceeds credit limit")
	}
	return nil
}
