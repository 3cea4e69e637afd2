package service

import (
	"context"
	"errors"
	"testing"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports/mocks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeTx satisfies pgx.Tx for the commit/rollback calls the service makes.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

func TestWalletCreateBatch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	signer := mocks.NewMockSignerGateway(ctrl)
	repo := mocks.NewMockWalletRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	svc := NewWalletService(signer, repo, transactor, zerolog.Nop())

	addrs := []common.Address{
		common.HexToAddress("0x1000000000000000000000000000000000000001"),
		common.HexToAddress("0x1000000000000000000000000000000000000002"),
		common.HexToAddress("0x1000000000000000000000000000000000000003"),
	}
	gomock.InOrder(
		signer.EXPECT().GenerateWallet(gomock.Any()).Return(addrs[0], nil),
		signer.EXPECT().GenerateWallet(gomock.Any()).Return(addrs[1], nil),
		signer.EXPECT().GenerateWallet(gomock.Any()).Return(addrs[2], nil),
	)

	tx := &fakeTx{}
	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	repo.EXPECT().CreateBatch(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, wallets []domain.Wallet) error {
			require.Len(t, wallets, 3)
			return nil
		})

	got, err := svc.CreateBatch(context.Background(), 3)
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, addrs[0].Hex(), got[0])
	assert.True(t, tx.committed)
}

func TestWalletCreateBatch_InvalidCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewWalletService(
		mocks.NewMockSignerGateway(ctrl),
		mocks.NewMockWalletRepository(ctrl),
		mocks.NewMockDBTransactor(ctrl),
		zerolog.Nop(),
	)

	for _, n := range []int{0, -1, 101} {
		_, err := svc.CreateBatch(context.Background(), n)
		assertAppErrorCode(t, err, "TXN_003")
	}
}

func TestWalletCreateBatch_PersistFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	signer := mocks.NewMockSignerGateway(ctrl)
	repo := mocks.NewMockWalletRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	svc := NewWalletService(signer, repo, transactor, zerolog.Nop())

	signer.EXPECT().GenerateWallet(gomock.Any()).
		Return(common.HexToAddress("0x1000000000000000000000000000000000000001"), nil)

	tx := &fakeTx{}
	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	repo.EXPECT().CreateBatch(gomock.Any(), tx, gomock.Any()).Return(errors.New("unique violation"))

	_, err := svc.CreateBatch(context.Background(), 1)
	assertAppErrorCode(t, err, "SYS_001")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWalletList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(mocks.NewMockSignerGateway(ctrl), repo, mocks.NewMockDBTransactor(ctrl), zerolog.Nop())

	repo.EXPECT().List(gomock.Any()).Return([]domain.Wallet{
		{Address: "0x1000000000000000000000000000000000000001"},
	}, nil)

	wallets, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}
