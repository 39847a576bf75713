// Package sqlite implements the store interfaces on a local sqlite file,
// used by the local execution mode where no DynamoDB is available.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id    TEXT PRIMARY KEY,
	email TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT NOT NULL,
	account_id TEXT NOT NULL,
	date       TEXT NOT NULL,
	amount     TEXT NOT NULL
);
`

// Store is a sqlite-backed implementation of store.AccountStore and
// store.TransactionStore.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a sqlite database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and is plenty
	// for the local CLI.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetAccount fetches the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	var acct domain.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email FROM accounts WHERE id = ?`, id,
	).Scan(&acct.ID, &acct.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting account %s: %w", id, err)
	}
	return &acct, nil
}

// CreateAccount inserts the account, relying on the primary key to reject
// duplicates atomically.
func (s *Store) CreateAccount(ctx context.Context, acct domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email) VALUES (?, ?)`, acct.ID, acct.Email,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("saving account %s: %w", acct.ID, err)
	}
	return nil
}

// DeleteAccount removes the account with the given id, if present.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	return nil
}

// PutTransactions writes all transactions in a single sqlite transaction.
func (s *Store) PutTransactions(ctx context.Context, txns []domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (id, account_id, date, amount) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, txn := range txns {
		_, err := stmt.ExecContext(ctx,
			txn.ID, txn.AccountID, txn.Date.Format("2006-01-02T15:04:05"), txn.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting transaction %s: %w", txn.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction batch: %w", err)
	}
	return nil
}

// Transactions returns all stored transactions for an account, oldest row
// first. Used by the local CLI to inspect what a run persisted.
func (s *Store) Transactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, date, amount FROM transactions WHERE account_id = ? ORDER BY rowid`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for %s: %w", accountID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var id, acctID, dateStr, amountStr string
		if err := rows.Scan(&id, &acctID, &dateStr, &amountStr); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		date, err := time.Parse("2006-01-02T15:04:05", dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", dateStr, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
		}
		txns = append(txns, domain.Transaction{ID: id, AccountID: acctID, Date: date, Amount: amount})
	}
	return txns, rows.Err()
}
