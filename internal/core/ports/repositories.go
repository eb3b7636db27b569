package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"ipn-relay/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DepositStore opens units of work over pending deposits and wallet balances.
type DepositStore interface {
	Begin(ctx context.Context) (DepositTx, error)
}

// DepositTx is one atomic unit of work. Reads of a pending deposit lock it
// until Commit or Rollback. Rollback after Commit is a no-op.
type DepositTx interface {
	// GetPendingDeposit returns nil, nil when no deposit matches.
	GetPendingDeposit(ctx context.Context, paymentID string) (*domain.PendingDeposit, error)
	DeletePendingDeposit(ctx context.Context, paymentID string) error
	// GetWalletBalance returns nil, nil when the wallet does not exist yet.
	GetWalletBalance(ctx context.Context, chatID, currency string) (*decimal.Decimal, error)
	UpsertWalletBalance(ctx context.Context, chatID, currency string, balance decimal.Decimal) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
