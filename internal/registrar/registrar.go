// Package registrar handles account registration: validate, check for an
// existing account, create if absent.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/store"
)

// ErrMissingFields is returned when id or email is empty.
var ErrMissingFields = errors.New("missing account ID or email")

// ErrAccountExists is returned when an account with the same id is already
// registered.
var ErrAccountExists = errors.New("account already exists")

// StoreOp identifies which store operation failed, so callers can report
// lookup failures and create failures distinctly.
type StoreOp string

const (
	OpLookup StoreOp = "lookup"
	OpCreate StoreOp = "create"
)

// StoreError wraps a backing-store failure with the operation that failed.
type StoreError struct {
	Op  StoreOp
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("account %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Registrar registers accounts against an account store.
type Registrar struct {
	accounts store.AccountStore
}

// New creates a Registrar.
func New(accounts store.AccountStore) *Registrar {
	return &Registrar{accounts: accounts}
}

// Register creates the account if no account with the same id exists. The id
// and email are stored exactly as given, with no normalization.
//
// The existence check and the create are two store calls, but CreateAccount
// is a conditional write, so a concurrent registration racing past the check
// still gets ErrAccountExists rather than silently overwriting.
func (r *Registrar) Register(ctx context.Context, id, email string) error {
	if id == "" || email == "" {
		return ErrMissingFields
	}

	existing, err := r.accounts.GetAccount(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return &StoreError{Op: OpLookup, Err: err}
	}
	if existing != nil {
		log.Printf("account already exists: %s", id)
		return ErrAccountExists
	}

	acct, err := domain.NewAccount(id, email)
	if err != nil {
		return ErrMissingFields
	}
	if err := r.accounts.CreateAccount(ctx, *acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAccountExists
		}
		return &StoreError{Op: OpCreate, Err: err}
	}
	return nil
}

// Email resolves the notification address for an account id. It returns
// store.ErrNotFound when the account is not registered.
func (r *Registrar) Email(ctx context.Context, id string) (string, error) {
	acct, err := r.accounts.GetAccount(ctx, id)
	if err != nil {
		return "", err
	}
	return acct.Email, nil
}
