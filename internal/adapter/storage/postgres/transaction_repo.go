package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
// Minor-unit amounts are stored as decimal strings; Wei values overflow
// every integer column type.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `hash, address_from, address_to, asset, contract_address,
	value_minor_units, decimals, status, effective_fee_minor_units, nonce, created_at, confirmed_at`

// Upsert inserts a transaction record. A duplicate hash is a no-op so
// replayed broadcasts and reconciler races are harmless.
func (r *TransactionRepo) Upsert(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (hash) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		t.Hash, t.AddressFrom, t.AddressTo, t.Asset, t.ContractAddress,
		bigIntText(t.ValueMinorUnits), t.Decimals, t.Status,
		bigIntText(t.EffectiveFeeMinorUnits), t.Nonce, t.CreatedAt, t.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

// GetByHash fetches a transaction record, or nil when unknown.
func (r *TransactionRepo) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE hash = $1`

	return r.scanTransaction(r.pool.QueryRow(ctx, query, hash))
}

// List fetches transaction records with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Address != nil {
		conditions = append(conditions, fmt.Sprintf("(address_from = $%d OR address_to = $%d)", argIdx, argIdx))
		args = append(args, strings.ToLower(*params.Address))
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+transactionColumns+` FROM transactions %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := r.collectRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListPending fetches pending records created before olderThan, oldest first.
func (r *TransactionRepo) ListPending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, domain.TransactionStatusPending, olderThan)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// MarkTerminal settles a pending record. The status guard in the WHERE
// clause makes the update idempotent and keeps terminal states immutable;
// zero affected rows is not an error.
func (r *TransactionRepo) MarkTerminal(ctx context.Context, hash string, status domain.TransactionStatus, confirmedAt *time.Time, effectiveFee *big.Int) error {
	query := `UPDATE transactions
		SET status = $2, confirmed_at = $3, effective_fee_minor_units = $4
		WHERE hash = $1 AND status = $5`

	_, err := r.pool.Exec(ctx, query,
		hash, status, confirmedAt, bigIntText(effectiveFee), domain.TransactionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark transaction terminal: %w", err)
	}
	return nil
}

func (r *TransactionRepo) collectRows(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t, err := scanInto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func scanInto(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var value, fee string
	err := row.Scan(
		&t.Hash, &t.AddressFrom, &t.AddressTo, &t.Asset, &t.ContractAddress,
		&value, &t.Decimals, &t.Status, &fee, &t.Nonce, &t.CreatedAt, &t.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.ValueMinorUnits, err = textBigInt(value); err != nil {
		return nil, err
	}
	if t.EffectiveFeeMinorUnits, err = textBigInt(fee); err != nil {
		return nil, err
	}
	return t, nil
}

func bigIntText(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func textBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored amount %q", s)
	}
	return v, nil
}
