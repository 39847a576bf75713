// Package domain defines the core types shared across the transaction
// processing pipeline and the account registrar.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects between the live AWS-backed execution path and the local
// development path (fallback recipient, SMTP transport, sqlite store).
type Mode string

const (
	ModeLocal Mode = "local"
	ModeProd  Mode = "prod"
)

// ValidateMode checks if mode is a known execution mode
func ValidateMode(m Mode) bool {
	return m == ModeLocal || m == ModeProd
}

// Transaction is one dated, signed monetary movement on an account, produced
// by the parser from a single CSV row and immutable thereafter.
//
// Sign convention:
//
//	Positive = credit (money in)
//	Negative = debit (money out)
//
// Amount is an exact decimal, never a binary float, so sums and averages
// carry no rounding drift.
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewTransaction creates a validated transaction
func NewTransaction(id, accountID string, date time.Time, amount decimal.Decimal) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}
	return &Transaction{
		ID:        id,
		AccountID: accountID,
		Date:      date,
		Amount:    amount,
	}, nil
}

// IsCredit reports whether the transaction amount is strictly positive.
func (t *Transaction) IsCredit() bool { return t.Amount.IsPositive() }

// IsDebit reports whether the transaction amount is strictly negative.
// A zero amount is neither a credit nor a debit.
func (t *Transaction) IsDebit() bool { return t.Amount.IsNegative() }

// Account pairs a unique id with a notification email address. Records are
// created once by the registrar and never updated.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewAccount creates a validated account
func NewAccount(id, email string) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if email == "" {
		return nil, fmt.Errorf("account email cannot be empty")
	}
	return &Account{ID: id, Email: email}, nil
}

// MonthCount is one entry of a monthly summary: a locale-rendered full month
// name and the number of transactions that fell in that month.
type MonthCount struct {
	Month string
	Count int
}

// AccountSummary holds the per-account aggregates for one pipeline run.
// It is ephemeral: computed, rendered into an email, and discarded.
type AccountSummary struct {
	TotalBalance  decimal.Decimal
	AverageCredit decimal.Decimal
	AverageDebit  decimal.Decimal
	// Monthly preserves first-occurrence order of months in the input.
	Monthly []MonthCount
}

// GroupByAccount partitions transactions by account id, preserving input
// order within each group. The returned order slice lists account ids by
// first occurrence so callers iterate deterministically.
func GroupByAccount(txns []Transaction) (map[string][]Transaction, []string) {
	groups := make(map[string][]Transaction)
	var order []string
	for _, txn := range txns {
		if _, ok := groups[txn.AccountID]; !ok {
			order = append(order, txn.AccountID)
		}
		groups[txn.AccountID] = append(groups[txn.AccountID], txn)
	}
	return groups, order
}
