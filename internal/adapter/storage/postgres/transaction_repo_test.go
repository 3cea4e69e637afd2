package postgres

import (
	"context"
	"math/big"
	"testing"
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoTestHash = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newTestRecord() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		Hash:                   repoTestHash,
		AddressFrom:            "0x1111111111111111111111111111111111111111",
		AddressTo:              "0x2222222222222222222222222222222222222222",
		Asset:                  domain.AssetNative,
		ValueMinorUnits:        big.NewInt(100000000000000),
		Decimals:               18,
		Status:                 domain.TransactionStatusPending,
		EffectiveFeeMinorUnits: big.NewInt(630000000000000),
		Nonce:                  5,
		CreatedAt:              now,
	}
}

func txColumns() []string {
	return []string{"hash", "address_from", "address_to", "asset", "contract_address",
		"value_minor_units", "decimals", "status", "effective_fee_minor_units", "nonce",
		"created_at", "confirmed_at"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumns()).AddRow(
		t.Hash, t.AddressFrom, t.AddressTo, t.Asset, t.ContractAddress,
		t.ValueMinorUnits.String(), t.Decimals, t.Status,
		t.EffectiveFeeMinorUnits.String(), t.Nonce, t.CreatedAt, t.ConfirmedAt,
	)
}

func TestTransactionRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestRecord()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.Hash, txn.AddressFrom, txn.AddressTo, txn.Asset, txn.ContractAddress,
			"100000000000000", txn.Decimals, txn.Status,
			"630000000000000", txn.Nonce, txn.CreatedAt, txn.ConfirmedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Upsert_DuplicateHashIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestRecord()

	// ON CONFLICT DO NOTHING: zero rows affected, still no error.
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.Hash, txn.AddressFrom, txn.AddressTo, txn.Asset, txn.ContractAddress,
			"100000000000000", txn.Decimals, txn.Status,
			"630000000000000", txn.Nonce, txn.CreatedAt, txn.ConfirmedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.Upsert(context.Background(), txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestRecord()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE hash").
		WithArgs(txn.Hash).
		WillReturnRows(txRow(txn))

	result, err := repo.GetByHash(context.Background(), txn.Hash)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.Hash, result.Hash)
	assert.Equal(t, "100000000000000", result.ValueMinorUnits.String())
	assert.Equal(t, "630000000000000", result.EffectiveFeeMinorUnits.String())
	assert.Equal(t, uint64(5), result.Nonce)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE hash").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	result, err := repo.GetByHash(context.Background(), repoTestHash)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestRecord()
	status := domain.TransactionStatusPending

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(status, 20, 0).
		WillReturnRows(txRow(txn))

	items, total, err := repo.List(context.Background(), ports.TransactionListParams{
		Status:   &status,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, txn.Hash, items[0].Hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestRecord()
	cutoff := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(domain.TransactionStatusPending, cutoff).
		WillReturnRows(txRow(txn))

	items, err := repo.ListPending(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.TransactionStatusPending, items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_MarkTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	now := time.Now().UTC()
	fee := big.NewInt(210000000000000)

	mock.ExpectExec("UPDATE transactions").
		WithArgs(repoTestHash, domain.TransactionStatusConfirmed, &now, fee.String(), domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkTerminal(context.Background(), repoTestHash, domain.TransactionStatusConfirmed, &now, fee)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_MarkTerminal_AlreadySettledIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	// The status guard filters the row out; zero affected rows is fine.
	mock.ExpectExec("UPDATE transactions").
		WithArgs(repoTestHash, domain.TransactionStatusFailed, (*time.Time)(nil), "0", domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MarkTerminal(context.Background(), repoTestHash, domain.TransactionStatusFailed, nil, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
