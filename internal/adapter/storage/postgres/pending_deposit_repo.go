package postgres

import (
	"context"
	"errors"
	"fmt"

	"ipn-relay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PendingDepositRepo reads and consumes pending deposits inside a caller's
// transaction.
type PendingDepositRepo struct{}

// NewPendingDepositRepo creates a new PendingDepositRepo.
func NewPendingDepositRepo() *PendingDepositRepo {
	return &PendingDepositRepo{}
}

// GetForUpdate fetches a pending deposit with pessimistic locking.
// This MUST be called within a transaction.
func (r *PendingDepositRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.PendingDeposit, error) {
	query := `SELECT payment_id, chat_id, currency, expected_amount::text
		FROM pending_deposits WHERE payment_id = $1 FOR UPDATE`

	d := &domain.PendingDeposit{}
	var expected string
	err := tx.QueryRow(ctx, query, paymentID).Scan(&d.PaymentID, &d.ChatID, &d.Currency, &expected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending deposit for update: %w", err)
	}

	d.ExpectedAmount, err = decimal.NewFromString(expected)
	if err != nil {
		return nil, fmt.Errorf("parse expected amount %q: %w", expected, err)
	}
	return d, nil
}

// Delete removes a pending deposit within a transaction.
func (r *PendingDepositRepo) Delete(ctx context.Context, tx pgx.Tx, paymentID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM pending_deposits WHERE payment_id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("delete pending deposit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending deposit not found: %s", paymentID)
	}
	return nil
}
