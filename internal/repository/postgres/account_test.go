package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerrent-backend/internal/domain"
)

func TestAccountGetByID(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "coin_balance_cents", "trust_score", "status", "role", "is_escrow", "created_on", "updated_on"}).
		AddRow(7, "alice", "alice@example.com", 50000, 100, "ACTIVE", "USER", false, now, now)
	mockDB.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, coin_balance_cents, trust_score, status, role, is_escrow, created_on, updated_on`)).
		WithArgs(int32(7)).
		WillReturnRows(rows)

	account, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(50000), account.CoinBalanceCents)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestAccountGetByIDNotFound(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	mockDB.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email`)).
		WithArgs(int32(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountDebitBalance(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	mockDB.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET coin_balance_cents = coin_balance_cents - $1`)).
		WithArgs(int32(35000), sqlmock.AnyArg(), int32(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DebitBalance(context.Background(), 7, 35000)
	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestAccountDebitBalanceGuardFails(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	// The guarded update touches zero rows when the balance is short.
	mockDB.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET coin_balance_cents = coin_balance_cents - $1`)).
		WithArgs(int32(35000), sqlmock.AnyArg(), int32(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DebitBalance(context.Background(), 7, 35000)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestAccountCreditBalance(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	mockDB.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET coin_balance_cents = coin_balance_cents + $1`)).
		WithArgs(int32(35000), sqlmock.AnyArg(), int32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CreditBalance(context.Background(), 1, 35000)
	assert.NoError(t, err)
}
