package postgres

import (
	"context"
	"testing"
	"time"

	"chain-wallet-gateway/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs("0x1111111111111111111111111111111111111111", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), &domain.Wallet{
		Address:   "0x1111111111111111111111111111111111111111",
		CreatedAt: now,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_CreateBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	now := time.Now().UTC()
	wallets := []domain.Wallet{
		{Address: "0x1111111111111111111111111111111111111111", CreatedAt: now},
		{Address: "0x2222222222222222222222222222222222222222", CreatedAt: now},
	}

	mock.ExpectBegin()
	for _, w := range wallets {
		mock.ExpectExec("INSERT INTO wallets").
			WithArgs(w.Address, w.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreateBatch(context.Background(), dbTx, wallets)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT address, created_at FROM wallets WHERE address").
		WithArgs("0x1111111111111111111111111111111111111111").
		WillReturnRows(pgxmock.NewRows([]string{"address", "created_at"}).
			AddRow("0x1111111111111111111111111111111111111111", now))

	// Lookup is case-insensitive: mixed-case input hits the stored row.
	w, err := repo.GetByAddress(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", w.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAddress_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT address, created_at FROM wallets WHERE address").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"address", "created_at"}))

	w, err := repo.GetByAddress(context.Background(), "0x9999999999999999999999999999999999999999")
	assert.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT address, created_at FROM wallets").
		WillReturnRows(pgxmock.NewRows([]string{"address", "created_at"}).
			AddRow("0x1111111111111111111111111111111111111111", now).
			AddRow("0x2222222222222222222222222222222222222222", now))

	wallets, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
