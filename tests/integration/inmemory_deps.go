package integration

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[strings.ToLower(w.Address)] = w
	return nil
}

func (r *inMemoryWalletRepo) CreateBatch(ctx context.Context, tx pgx.Tx, wallets []domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range wallets {
		w := wallets[i]
		r.wallets[strings.ToLower(w.Address)] = &w
	}
	return nil
}

func (r *inMemoryWalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[strings.ToLower(address)]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *inMemoryWalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Upsert(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[t.Hash]; exists {
		return nil
	}
	cp := *t
	r.transactions[t.Hash] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[hash]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Address != nil {
			addr := strings.ToLower(*params.Address)
			if !strings.EqualFold(t.AddressFrom, addr) && !strings.EqualFold(t.AddressTo, addr) {
				continue
			}
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) ListPending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.Status == domain.TransactionStatusPending && t.CreatedAt.Before(olderThan) {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) MarkTerminal(ctx context.Context, hash string, status domain.TransactionStatus, confirmedAt *time.Time, effectiveFee *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[hash]
	if !ok || t.Status != domain.TransactionStatusPending {
		return nil
	}
	t.Status = status
	t.ConfirmedAt = confirmedAt
	if effectiveFee != nil {
		t.EffectiveFeeMinorUnits = new(big.Int).Set(effectiveFee)
	}
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Fake Chain Gateway ---

// fakeChain simulates an EVM node. Nonce accounting mirrors a real node's
// pending state: NextNonce returns the next unused nonce, Broadcast rejects
// any transaction whose nonce is not exactly that value.
type fakeChain struct {
	chainID *big.Int

	mu        sync.Mutex
	nonces    map[common.Address]uint64
	broadcast []*types.Transaction
	receipts  map[common.Hash]*types.Receipt
	txInfos   map[common.Hash]*ports.TxInfo
	head      uint64
	decimals  map[common.Address]int32
	symbols   map[common.Address]string
}

func newFakeChain(chainID int64) *fakeChain {
	return &fakeChain{
		chainID:  big.NewInt(chainID),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		txInfos:  make(map[common.Hash]*ports.TxInfo),
		decimals: make(map[common.Address]int32),
		symbols:  make(map[common.Address]string),
	}
}

func (f *fakeChain) ChainID() *big.Int {
	return new(big.Int).Set(f.chainID)
}

func (f *fakeChain) NextNonce(ctx context.Context, address common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[address], nil
}

func (f *fakeChain) SuggestFees(ctx context.Context) (*ports.FeeSuggestion, error) {
	return &ports.FeeSuggestion{
		TipCap: big.NewInt(2_000_000_000),
		MaxFee: big.NewInt(30_000_000_000),
	}, nil
}

func (f *fakeChain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (f *fakeChain) Broadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	from, err := types.Sender(types.NewLondonSigner(f.chainID), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unsigned transaction: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	expected := f.nonces[from]
	if tx.Nonce() != expected {
		return common.Hash{}, fmt.Errorf("invalid nonce %d for %s, expected %d", tx.Nonce(), from.Hex(), expected)
	}
	f.nonces[from] = expected + 1
	f.broadcast = append(f.broadcast, tx)
	return tx.Hash(), nil
}

func (f *fakeChain) TransactionByHash(ctx context.Context, hash common.Hash) (*ports.TxInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.txInfos[hash]
	if !ok {
		return nil, nil
	}
	return info, nil
}

func (f *fakeChain) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, nil
	}
	return receipt, nil
}

func (f *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeChain) TokenDecimals(ctx context.Context, contract common.Address) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.decimals[contract]
	if !ok {
		return 0, fmt.Errorf("contract %s does not implement decimals()", contract.Hex())
	}
	return d, nil
}

func (f *fakeChain) TokenSymbol(ctx context.Context, contract common.Address) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.symbols[contract]
	if !ok {
		return "", fmt.Errorf("contract %s does not implement symbol()", contract.Hex())
	}
	return s, nil
}

// mineTransaction records a receipt and the transaction body for hash, as if
// it were included in blockNumber with the given status.
func (f *fakeChain) mineTransaction(tx *types.Transaction, blockNumber uint64, status uint64) {
	from, _ := types.Sender(types.NewLondonSigner(f.chainID), tx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:            status,
		BlockNumber:       new(big.Int).SetUint64(blockNumber),
		GasUsed:           21_000,
		EffectiveGasPrice: big.NewInt(10_000_000_000),
	}
	f.txInfos[tx.Hash()] = &ports.TxInfo{
		Hash:  tx.Hash(),
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
	}
}

func (f *fakeChain) setHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *fakeChain) broadcastTxs() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Transaction, len(f.broadcast))
	copy(out, f.broadcast)
	return out
}
