// Package sqlite stores pending deposits and wallet balances in a local
// SQLite file, the layout the Telegram bot side shares.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements ports.DepositStore on a SQLite database. Transactions are
// opened with BEGIN IMMEDIATE so a second writer waits on busy_timeout instead
// of failing at commit.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pending_deposits (
			payment_id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			currency TEXT NOT NULL,
			expected_amount TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			chat_id TEXT NOT NULL,
			currency TEXT NOT NULL,
			balance TEXT NOT NULL,
			PRIMARY KEY (chat_id, currency)
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

// AddPendingDeposit inserts a deposit awaiting its notification.
func (s *Store) AddPendingDeposit(ctx context.Context, d domain.PendingDeposit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_deposits (payment_id, chat_id, currency, expected_amount) VALUES (?, ?, ?, ?)`,
		d.PaymentID, d.ChatID, d.Currency, d.ExpectedAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("insert pending deposit: %w", err)
	}
	return nil
}

// Balance reads a wallet outside any transaction. A nil balance means the
// wallet does not exist.
func (s *Store) Balance(ctx context.Context, chatID, currency string) (*decimal.Decimal, error) {
	return scanBalance(s.db.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE chat_id = ? AND currency = ?`, chatID, currency))
}

// Begin starts an immediate transaction.
func (s *Store) Begin(ctx context.Context) (ports.DepositTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sqlite tx: %w", err)
	}
	return &depositTx{tx: tx}, nil
}

type depositTx struct {
	tx *sql.Tx
}

func (d *depositTx) GetPendingDeposit(ctx context.Context, paymentID string) (*domain.PendingDeposit, error) {
	dep := &domain.PendingDeposit{}
	var expected string
	err := d.tx.QueryRowContext(ctx,
		`SELECT payment_id, chat_id, currency, expected_amount FROM pending_deposits WHERE payment_id = ?`,
		paymentID,
	).Scan(&dep.PaymentID, &dep.ChatID, &dep.Currency, &expected)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending deposit: %w", err)
	}

	if dep.ExpectedAmount, err = decimal.NewFromString(expected); err != nil {
		return nil, fmt.Errorf("parse expected amount %q: %w", expected, err)
	}
	return dep, nil
}

func (d *depositTx) DeletePendingDeposit(ctx context.Context, paymentID string) error {
	res, err := d.tx.ExecContext(ctx, `DELETE FROM pending_deposits WHERE payment_id = ?`, paymentID)
	if err != nil {
		return fmt.Errorf("delete pending deposit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pending deposit not found: %s", paymentID)
	}
	return nil
}

func (d *depositTx) GetWalletBalance(ctx context.Context, chatID, currency string) (*decimal.Decimal, error) {
	return scanBalance(d.tx.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE chat_id = ? AND currency = ?`, chatID, currency))
}

func (d *depositTx) UpsertWalletBalance(ctx context.Context, chatID, currency string, balance decimal.Decimal) error {
	_, err := d.tx.ExecContext(ctx,
		`INSERT INTO wallets (chat_id, currency, balance) VALUES (?, ?, ?)
		 ON CONFLICT (chat_id, currency) DO UPDATE SET balance = excluded.balance`,
		chatID, currency, balance.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert wallet balance: %w", err)
	}
	return nil
}

func (d *depositTx) Commit(_ context.Context) error {
	return d.tx.Commit()
}

// Rollback is safe after Commit.
func (d *depositTx) Rollback(_ context.Context) error {
	if err := d.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func scanBalance(row *sql.Row) (*decimal.Decimal, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet balance: %w", err)
	}
	b, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return &b, nil
}

// HealthCheck implements ports.HealthChecker for the SQLite file.
type HealthCheck struct {
	db *sql.DB
}

// NewHealthCheck creates a SQLite health checker.
func NewHealthCheck(s *Store) *HealthCheck {
	return &HealthCheck{db: s.db}
}

// Ping checks the database file is readable.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "sqlite"
}
