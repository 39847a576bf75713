package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAccountRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, domain.Account{ID: "1", Email: "a@b.com"}))

	acct, err := s.GetAccount(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "1", acct.ID)
	require.Equal(t, "a@b.com", acct.Email)
}

func TestGetAccount_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetAccount(context.Background(), "missing")
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCreateAccount_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, domain.Account{ID: "1", Email: "a@b.com"}))

	err := s.CreateAccount(ctx, domain.Account{ID: "1", Email: "other@b.com"})
	require.True(t, errors.Is(err, store.ErrAlreadyExists))

	// The original record is untouched.
	acct, err := s.GetAccount(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", acct.Email)
}

func TestDeleteAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, domain.Account{ID: "1", Email: "a@b.com"}))
	require.NoError(t, s.DeleteAccount(ctx, "1"))

	_, err := s.GetAccount(ctx, "1")
	require.True(t, errors.Is(err, store.ErrNotFound))

	// Deleting an absent account is not an error.
	require.NoError(t, s.DeleteAccount(ctx, "1"))
}

func TestPutTransactions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	date := time.Date(2026, time.July, 23, 0, 0, 0, 0, time.UTC)
	txns := []domain.Transaction{
		{ID: "1", AccountID: "1", Date: date, Amount: decimal.RequireFromString("10.1")},
		{ID: "2", AccountID: "1", Date: date, Amount: decimal.RequireFromString("-8.2")},
		{ID: "3", AccountID: "2", Date: date, Amount: decimal.RequireFromString("5")},
	}
	require.NoError(t, s.PutTransactions(ctx, txns))

	stored, err := s.Transactions(ctx, "1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "10.1", stored[0].Amount.String())
	require.Equal(t, "-8.2", stored[1].Amount.String())
	require.True(t, stored[0].Date.Equal(date))
}

func TestPutTransactions_Empty(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutTransactions(context.Background(), nil))
}
