package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chain-wallet-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a single wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (address, created_at) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, strings.ToLower(w.Address), w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// CreateBatch inserts wallets within a database transaction.
func (r *WalletRepo) CreateBatch(ctx context.Context, tx pgx.Tx, wallets []domain.Wallet) error {
	query := `INSERT INTO wallets (address, created_at) VALUES ($1, $2)`

	for _, w := range wallets {
		if _, err := tx.Exec(ctx, query, strings.ToLower(w.Address), w.CreatedAt); err != nil {
			return fmt.Errorf("insert wallet %s: %w", w.Address, err)
		}
	}
	return nil
}

// GetByAddress fetches a wallet, or nil when unknown.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT address, created_at FROM wallets WHERE address = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, strings.ToLower(address)).Scan(&w.Address, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// List fetches all wallets, newest first.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT address, created_at FROM wallets ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.Address, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}
