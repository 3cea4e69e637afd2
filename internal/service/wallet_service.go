package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"
	"chain-wallet-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

const maxWalletBatch = 100

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	signer     ports.SignerGateway
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	signer ports.SignerGateway,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		signer:     signer,
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// CreateBatch provisions n wallets. Key material goes to the keystore first;
// the addresses are persisted in a single database transaction so a failed
// batch leaves no partial rows.
func (s *WalletServiceImpl) CreateBatch(ctx context.Context, n int) ([]string, error) {
	if n < 1 || n > maxWalletBatch {
		return nil, apperror.Validation(fmt.Sprintf("n must be between 1 and %d", maxWalletBatch))
	}

	now := time.Now().UTC()
	addresses := make([]string, 0, n)
	wallets := make([]domain.Wallet, 0, n)
	for i := 0; i < n; i++ {
		addr, err := s.signer.GenerateWallet(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate wallet: %w", err))
		}
		addresses = append(addresses, addr.Hex())
		wallets = append(wallets, domain.Wallet{
			Address:   strings.ToLower(addr.Hex()),
			CreatedAt: now,
		})
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.walletRepo.CreateBatch(ctx, dbTx, wallets); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist wallets: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Int("count", n).Msg("wallet batch provisioned")
	return addresses, nil
}

// List returns all provisioned wallets.
func (s *WalletServiceImpl) List(ctx context.Context) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}
