// Package store defines the narrow key-value persistence interfaces the
// pipeline and registrar depend on, decoupled from any concrete backend.
package store

import (
	"context"
	"errors"

	"github.com/radamanthiss/transaction-api/internal/domain"
)

// ErrNotFound is returned by lookups when no item exists for the key.
// Callers must distinguish it from infrastructure failures: a storage error
// never means "absent".
var ErrNotFound = errors.New("item not found")

// ErrAlreadyExists is returned by conditional creates when an item with the
// same id is already present.
var ErrAlreadyExists = errors.New("item already exists")

// AccountStore persists account records keyed by account id.
type AccountStore interface {
	// GetAccount returns the account with the given id, or ErrNotFound.
	GetAccount(ctx context.Context, id string) (*domain.Account, error)

	// CreateAccount writes the account only if no account with the same id
	// exists, returning ErrAlreadyExists otherwise. The write is conditional
	// at the store level so concurrent registrations cannot both succeed.
	CreateAccount(ctx context.Context, acct domain.Account) error

	// DeleteAccount removes the account with the given id. Deleting an
	// absent account is not an error.
	DeleteAccount(ctx context.Context, id string) error
}

// TransactionStore persists parsed transactions.
type TransactionStore interface {
	// PutTransactions writes the full transaction list in batches.
	// Best-effort: partial failure behavior is backend-defined.
	PutTransactions(ctx context.Context, txns []domain.Transaction) error
}
