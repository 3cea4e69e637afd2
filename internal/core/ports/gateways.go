package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FeeSuggestion carries the EIP-1559 fee fields for a new transaction.
type FeeSuggestion struct {
	TipCap *big.Int // max priority fee per gas
	MaxFee *big.Int // max fee per gas (base fee with margin + tip)
}

// TxInfo is the minimal view of an on-chain transaction needed for
// validation. Value is in minor units (Wei).
type TxInfo struct {
	Hash    common.Hash
	From    common.Address
	To      *common.Address
	Value   *big.Int
	Pending bool
}

// ChainGateway abstracts the EVM node RPC surface the service depends on.
// Lookup methods return (nil, nil) when the object is not known to the node.
type ChainGateway interface {
	ChainID() *big.Int
	NextNonce(ctx context.Context, address common.Address) (uint64, error)
	SuggestFees(ctx context.Context) (*FeeSuggestion, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	Broadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*TxInfo, error)
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	TokenDecimals(ctx context.Context, contract common.Address) (int32, error)
	TokenSymbol(ctx context.Context, contract common.Address) (string, error)
}

// SignerGateway abstracts key custody. The gateway never exposes private
// keys; it signs on behalf of addresses it holds material for.
type SignerGateway interface {
	HasKey(ctx context.Context, address common.Address) (bool, error)
	Sign(ctx context.Context, from common.Address, tx *types.Transaction) (*types.Transaction, error)
	GenerateWallet(ctx context.Context) (common.Address, error)
}
