package ports

import (
	"context"
	"time"

	"chain-wallet-gateway/internal/core/domain"
)

// TokenInfo is the cached metadata of an ERC-20 contract.
type TokenInfo struct {
	Decimals int32  `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// DecimalsCache caches token metadata per contract address so the node is
// consulted once per contract. Get returns (nil, nil) on a cache miss.
type DecimalsCache interface {
	Get(ctx context.Context, contract string) (*TokenInfo, error)
	Set(ctx context.Context, contract string, info TokenInfo, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// TransactionService defines the transaction orchestration logic.
type TransactionService interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResult, error)
	Validate(ctx context.Context, req ValidateTransactionRequest) (*ValidationResult, error)
	Status(ctx context.Context, hash string) (*TransactionStatusResult, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// CreateTransactionRequest holds validated input for transaction creation.
// Value is a decimal string in human units.
type CreateTransactionRequest struct {
	AddressFrom     string
	AddressTo       string
	Asset           string
	ContractAddress *string
	Value           string
}

// CreateTransactionResult is the outcome of a broadcast.
// EffectiveFee is a decimal ETH string (fee is always paid in the native
// asset, whatever was transferred).
type CreateTransactionResult struct {
	Hash         string
	Status       domain.TransactionStatus
	EffectiveFee string
	CreatedAt    time.Time
}

// ValidateTransactionRequest holds input for on-chain validation.
type ValidateTransactionRequest struct {
	Hash                 string
	RequireConfirmations bool
	MinConfirmations     uint64
}

// Transfer is one value movement observed in a validated transaction.
// Value is a decimal string in the asset's human units.
type Transfer struct {
	Asset       string `json:"asset"`
	AddressFrom string `json:"address_from"`
	AddressTo   string `json:"address_to"`
	Value       string `json:"value"`
}

// ValidationResult is the outcome of on-chain validation.
type ValidationResult struct {
	IsValid                  bool       `json:"is_valid"`
	Transfers                []Transfer `json:"transfers"`
	Confirmations            uint64     `json:"confirmations"`
	IsConfirmed              bool       `json:"is_confirmed"`
	MinConfirmationsRequired uint64     `json:"min_confirmations_required"`
}

// TransactionStatusResult combines the local record with live chain depth.
type TransactionStatusResult struct {
	Transaction   *domain.Transaction
	Confirmations uint64
	Value         string // decimal, asset units
	EffectiveFee  string // decimal ETH
}

// WalletService defines wallet provisioning logic.
type WalletService interface {
	CreateBatch(ctx context.Context, n int) ([]string, error)
	List(ctx context.Context) ([]domain.Wallet, error)
}
