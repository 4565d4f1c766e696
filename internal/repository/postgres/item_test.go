package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerrent-backend/internal/domain"
)

func TestItemDecrementQuantity(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemRepository(db)
	mockDB.ExpectQuery(regexp.QuoteMeta(`UPDATE items SET quantity = quantity - $1`)).
		WithArgs(int32(1), sqlmock.AnyArg(), int32(10)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))

	remaining, err := repo.DecrementQuantity(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), remaining)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestItemDecrementQuantityExhausted(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemRepository(db)
	// quantity >= $1 guard misses: no row comes back.
	mockDB.ExpectQuery(regexp.QuoteMeta(`UPDATE items SET quantity = quantity - $1`)).
		WithArgs(int32(2), sqlmock.AnyArg(), int32(10)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

	_, err = repo.DecrementQuantity(context.Background(), 10, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestItemUpdateStatus(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemRepository(db)
	mockDB.ExpectExec(regexp.QuoteMeta(`UPDATE items SET status = $1`)).
		WithArgs(domain.ItemStatusRented, sqlmock.AnyArg(), int32(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), 10, domain.ItemStatusRented)
	assert.NoError(t, err)

	mockDB.ExpectExec(regexp.QuoteMeta(`UPDATE items SET status = $1`)).
		WithArgs(domain.ItemStatusRented, sqlmock.AnyArg(), int32(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), 404, domain.ItemStatusRented)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
