package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo reads and writes per-(chat, currency) balances inside a
// caller's transaction.
type WalletRepo struct{}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{}
}

// GetBalanceForUpdate fetches a balance with pessimistic locking. A nil
// balance means the wallet does not exist yet.
// This MUST be called within a transaction.
func (r *WalletRepo) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, chatID, currency string) (*decimal.Decimal, error) {
	query := `SELECT balance::text FROM wallets WHERE chat_id = $1 AND currency = $2 FOR UPDATE`

	var balance string
	err := tx.QueryRow(ctx, query, chatID, currency).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}

	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return &b, nil
}

// UpsertBalance creates the wallet or overwrites its balance within a transaction.
func (r *WalletRepo) UpsertBalance(ctx context.Context, tx pgx.Tx, chatID, currency string, balance decimal.Decimal) error {
	query := `INSERT INTO wallets (chat_id, currency, balance, updated_at)
		VALUES ($1, $2, $3::numeric, NOW())
		ON CONFLICT (chat_id, currency) DO UPDATE SET balance = EXCLUDED.balance, updated_at = NOW()`

	if _, err := tx.Exec(ctx, query, chatID, currency, balance.String()); err != nil {
		return fmt.Errorf("upsert wallet balance: %w", err)
	}
	return nil
}
