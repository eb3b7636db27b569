package postgres

import (
	"context"
	"errors"

	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Transactor implements ports.DepositStore on a pgx pool. Each DepositTx
// wraps one pgx.Tx and routes calls to the repositories.
type Transactor struct {
	pool     Pool
	deposits *PendingDepositRepo
	wallets  *WalletRepo
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{
		pool:     pool,
		deposits: NewPendingDepositRepo(),
		wallets:  NewWalletRepo(),
	}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (ports.DepositTx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &depositTx{tx: tx, deposits: t.deposits, wallets: t.wallets}, nil
}

type depositTx struct {
	tx       pgx.Tx
	deposits *PendingDepositRepo
	wallets  *WalletRepo
}

func (d *depositTx) GetPendingDeposit(ctx context.Context, paymentID string) (*domain.PendingDeposit, error) {
	return d.deposits.GetForUpdate(ctx, d.tx, paymentID)
}

func (d *depositTx) DeletePendingDeposit(ctx context.Context, paymentID string) error {
	return d.deposits.Delete(ctx, d.tx, paymentID)
}

func (d *depositTx) GetWalletBalance(ctx context.Context, chatID, currency string) (*decimal.Decimal, error) {
	return d.wallets.GetBalanceForUpdate(ctx, d.tx, chatID, currency)
}

func (d *depositTx) UpsertWalletBalance(ctx context.Context, chatID, currency string, balance decimal.Decimal) error {
	return d.wallets.UpsertBalance(ctx, d.tx, chatID, currency, balance)
}

func (d *depositTx) Commit(ctx context.Context) error {
	return d.tx.Commit(ctx)
}

// Rollback is safe after Commit.
func (d *depositTx) Rollback(ctx context.Context) error {
	if err := d.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
