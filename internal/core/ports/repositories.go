package ports

import (
	"context"
	"math/big"
	"time"

	"chain-wallet-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for provisioned wallets.
// CreateBatch runs inside a transaction block so a partially failed batch
// never persists.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	CreateBatch(ctx context.Context, tx pgx.Tx, wallets []domain.Wallet) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
}

// TransactionRepository defines persistence operations for broadcast
// transaction records.
type TransactionRepository interface {
	// Upsert inserts the record, ignoring a duplicate hash. Replayed
	// broadcasts and reconciler races land on the same row.
	Upsert(ctx context.Context, transaction *domain.Transaction) error
	GetByHash(ctx context.Context, hash string) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	// ListPending returns pending records created before the given time.
	ListPending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error)
	// MarkTerminal settles a pending record. It is a no-op when the record
	// is already terminal, so terminal states never flip.
	MarkTerminal(ctx context.Context, hash string, status domain.TransactionStatus, confirmedAt *time.Time, effectiveFee *big.Int) error
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	Status   *domain.TransactionStatus
	Address  *string // matches either side of the transfer
	Page     int
	PageSize int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
