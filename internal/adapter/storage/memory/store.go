// Package memory is an in-process deposit store for tests and single-shot
// local runs. Nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"

	"github.com/shopspring/decimal"
)

var errTxDone = errors.New("memory: transaction already finished")

type walletKey struct {
	chatID   string
	currency string
}

// Store implements ports.DepositStore. A transaction holds the store mutex
// from Begin until Commit or Rollback.
type Store struct {
	mu       sync.Mutex
	deposits map[string]domain.PendingDeposit
	wallets  map[walletKey]decimal.Decimal
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		deposits: make(map[string]domain.PendingDeposit),
		wallets:  make(map[walletKey]decimal.Decimal),
	}
}

// AddPendingDeposit records a deposit awaiting its notification.
func (s *Store) AddPendingDeposit(d domain.PendingDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[d.PaymentID]; ok {
		return fmt.Errorf("memory: pending deposit %s already exists", d.PaymentID)
	}
	s.deposits[d.PaymentID] = d
	return nil
}

// PendingDeposit returns the deposit for paymentID, if any.
func (s *Store) PendingDeposit(paymentID string) (domain.PendingDeposit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deposits[paymentID]
	return d, ok
}

// Balance returns the wallet balance, if the wallet exists.
func (s *Store) Balance(chatID, currency string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.wallets[walletKey{chatID, currency}]
	return b, ok
}

// Begin starts a transaction. Writes are staged and applied on Commit.
func (s *Store) Begin(ctx context.Context) (ports.DepositTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &tx{
		store:   s,
		deleted: make(map[string]bool),
		upserts: make(map[walletKey]decimal.Decimal),
	}, nil
}

type tx struct {
	store   *Store
	done    bool
	deleted map[string]bool
	upserts map[walletKey]decimal.Decimal
}

func (t *tx) GetPendingDeposit(_ context.Context, paymentID string) (*domain.PendingDeposit, error) {
	if t.done {
		return nil, errTxDone
	}
	if t.deleted[paymentID] {
		return nil, nil
	}
	d, ok := t.store.deposits[paymentID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (t *tx) DeletePendingDeposit(_ context.Context, paymentID string) error {
	if t.done {
		return errTxDone
	}
	t.deleted[paymentID] = true
	return nil
}

func (t *tx) GetWalletBalance(_ context.Context, chatID, currency string) (*decimal.Decimal, error) {
	if t.done {
		return nil, errTxDone
	}
	k := walletKey{chatID, currency}
	if b, ok := t.upserts[k]; ok {
		return &b, nil
	}
	b, ok := t.store.wallets[k]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (t *tx) UpsertWalletBalance(_ context.Context, chatID, currency string, balance decimal.Decimal) error {
	if t.done {
		return errTxDone
	}
	t.upserts[walletKey{chatID, currency}] = balance
	return nil
}

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return errTxDone
	}
	for id := range t.deleted {
		delete(t.store.deposits, id)
	}
	for k, b := range t.upserts {
		t.store.wallets[k] = b
	}
	t.finish()
	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *tx) finish() {
	t.done = true
	t.store.mu.Unlock()
}
