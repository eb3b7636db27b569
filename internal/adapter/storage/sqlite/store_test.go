package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"ipn-relay/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, id, expected string) {
	t.Helper()
	require.NoError(t, s.AddPendingDeposit(context.Background(), domain.PendingDeposit{
		PaymentID:      id,
		ChatID:         "777",
		Currency:       "BTC",
		ExpectedAmount: decimal.RequireFromString(expected),
	}))
}

func TestStore_CreditCommit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, "p-1", "0.01")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	d, err := tx.GetPendingDeposit(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "777", d.ChatID)
	assert.True(t, d.ExpectedAmount.Equal(decimal.RequireFromString("0.01")))

	bal, err := tx.GetWalletBalance(ctx, "777", "BTC")
	require.NoError(t, err)
	assert.Nil(t, bal)

	require.NoError(t, tx.UpsertWalletBalance(ctx, "777", "BTC", domain.Credit(bal, decimal.RequireFromString("0.012"))))
	require.NoError(t, tx.DeletePendingDeposit(ctx, "p-1"))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx), "rollback after commit is a no-op")

	got, err := s.Balance(ctx, "777", "BTC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0.012", got.String())

	tx2, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx) //nolint:errcheck
	d, err = tx2.GetPendingDeposit(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, d, "deposit consumed")
}

func TestStore_UpsertAddsToExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, amount := range []string{"0.5", "0.25"} {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		bal, err := tx.GetWalletBalance(ctx, "777", "USDT_TRC20")
		require.NoError(t, err)
		require.NoError(t, tx.UpsertWalletBalance(ctx, "777", "USDT_TRC20", domain.Credit(bal, decimal.RequireFromString(amount))))
		require.NoError(t, tx.Commit(ctx))
	}

	got, err := s.Balance(ctx, "777", "USDT_TRC20")
	require.NoError(t, err)
	assert.Equal(t, "0.75", got.String())
}

func TestStore_RollbackDiscards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, "p-2", "1")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeletePendingDeposit(ctx, "p-2"))
	require.NoError(t, tx.UpsertWalletBalance(ctx, "777", "BTC", decimal.NewFromInt(1)))
	require.NoError(t, tx.Rollback(ctx))

	bal, err := s.Balance(ctx, "777", "BTC")
	require.NoError(t, err)
	assert.Nil(t, bal)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck
	d, err := tx.GetPendingDeposit(ctx, "p-2")
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestStore_DeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck

	assert.ErrorContains(t, tx.DeletePendingDeposit(ctx, "ghost"), "pending deposit not found")
}

func TestStore_DuplicatePendingDeposit(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, "p-3", "1")

	err := s.AddPendingDeposit(context.Background(), domain.PendingDeposit{
		PaymentID: "p-3", ChatID: "1", Currency: "BTC", ExpectedAmount: decimal.NewFromInt(1),
	})
	assert.Error(t, err)
}

func TestStore_ConcurrentCreditsSerialize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.Begin(ctx)
			if err != nil {
				errs <- err
				return
			}
			defer tx.Rollback(ctx) //nolint:errcheck
			bal, err := tx.GetWalletBalance(ctx, "777", "BTC")
			if err != nil {
				errs <- err
				return
			}
			if err := tx.UpsertWalletBalance(ctx, "777", "BTC", domain.Credit(bal, decimal.NewFromInt(1))); err != nil {
				errs <- err
				return
			}
			errs <- tx.Commit(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Balance(ctx, "777", "BTC")
	require.NoError(t, err)
	assert.Equal(t, "8", got.String())
}

func TestHealthCheck(t *testing.T) {
	s := newTestStore(t)
	hc := NewHealthCheck(s)

	assert.Equal(t, "sqlite", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, hc.Ping(context.Background()))
}
