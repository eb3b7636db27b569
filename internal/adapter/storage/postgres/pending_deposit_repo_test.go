package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depositRow(id, chat, currency, expected string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"payment_id", "chat_id", "currency", "expected_amount"}).
		AddRow(id, chat, currency, expected)
}

func TestPendingDepositRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPendingDepositRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM pending_deposits WHERE payment_id .+ FOR UPDATE").
		WithArgs("5077125051").
		WillReturnRows(depositRow("5077125051", "777", "BTC", "0.010000000000000000"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	d, err := repo.GetForUpdate(context.Background(), tx, "5077125051")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "777", d.ChatID)
	assert.Equal(t, "BTC", d.Currency)
	assert.True(t, d.ExpectedAmount.Equal(decimal.RequireFromString("0.01")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingDepositRepo_GetForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPendingDepositRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM pending_deposits").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	d, err := repo.GetForUpdate(context.Background(), tx, "nope")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestPendingDepositRepo_GetForUpdate_BadAmount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPendingDepositRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM pending_deposits").
		WithArgs("x").
		WillReturnRows(depositRow("x", "1", "BTC", "NaN"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.GetForUpdate(context.Background(), tx, "x")
	assert.ErrorContains(t, err, "parse expected amount")
}

func TestPendingDepositRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPendingDepositRepo()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pending_deposits").
		WithArgs("5077125051").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Delete(context.Background(), tx, "5077125051"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingDepositRepo_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPendingDepositRepo()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pending_deposits").
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), tx, "gone")
	assert.ErrorContains(t, err, "pending deposit not found")
}
