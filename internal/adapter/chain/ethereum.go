package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"chain-wallet-gateway/config"
	"chain-wallet-gateway/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// ERC-20 metadata selectors: decimals() and symbol().
var (
	decimalsCalldata = common.Hex2Bytes("313ce567")
	symbolCalldata   = common.Hex2Bytes("95d89b41")
)

// Gateway implements ports.ChainGateway over an EVM JSON-RPC endpoint.
// Every call is bounded by the configured request timeout.
type Gateway struct {
	client        *ethclient.Client
	chainID       *big.Int
	timeout       time.Duration
	marginPercent int64
	fallbackTip   *big.Int
	log           zerolog.Logger
}

// NewGateway dials the node and verifies the chain ID matches the
// configured one, so a misconfigured RPC URL fails at startup instead of
// producing unsignable transactions.
func NewGateway(ctx context.Context, cfg config.ChainConfig, log zerolog.Logger) (*Gateway, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing node: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	chainID, err := client.ChainID(cctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("node reports chain id %s, configured %d", chainID, cfg.ChainID)
	}

	log.Info().
		Str("rpc_url", cfg.RPCURL).
		Int64("chain_id", chainID.Int64()).
		Msg("chain connection established")

	return &Gateway{
		client:        client,
		chainID:       chainID,
		timeout:       cfg.RequestTimeout,
		marginPercent: cfg.GasPriceMarginPercent,
		fallbackTip:   big.NewInt(cfg.FallbackPriorityFee),
		log:           log,
	}, nil
}

// Close releases the underlying RPC connection.
func (g *Gateway) Close() {
	g.client.Close()
}

// ChainID returns the connected chain's ID.
func (g *Gateway) ChainID() *big.Int {
	return new(big.Int).Set(g.chainID)
}

// NextNonce returns the pending-state nonce for address.
func (g *Gateway) NextNonce(ctx context.Context, address common.Address) (uint64, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return g.client.PendingNonceAt(ctx, address)
}

// SuggestFees derives EIP-1559 fee caps from the current base fee plus the
// configured margin. When the node cannot suggest a tip the configured
// fallback priority fee applies.
func (g *Gateway) SuggestFees(ctx context.Context) (*ports.FeeSuggestion, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	tip, err := g.client.SuggestGasTipCap(ctx)
	if err != nil || tip == nil || tip.Sign() == 0 {
		if err != nil {
			g.log.Debug().Err(err).Msg("tip suggestion failed, using fallback priority fee")
		}
		tip = new(big.Int).Set(g.fallbackTip)
	}

	head, err := g.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching head: %w", err)
	}
	if head.BaseFee == nil {
		// Pre-London network: fall back to the legacy gas price.
		gasPrice, err := g.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggesting gas price: %w", err)
		}
		return &ports.FeeSuggestion{
			TipCap: tip,
			MaxFee: applyMargin(gasPrice, g.marginPercent),
		}, nil
	}

	return &ports.FeeSuggestion{
		TipCap: tip,
		MaxFee: new(big.Int).Add(applyMargin(head.BaseFee, g.marginPercent), tip),
	}, nil
}

// EstimateGas estimates the gas limit for msg.
func (g *Gateway) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return g.client.EstimateGas(ctx, msg)
}

// Broadcast submits a signed transaction and returns its hash.
func (g *Gateway) Broadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	if err := g.client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// TransactionByHash returns the transaction body, or nil when the node
// does not know the hash.
func (g *Gateway) TransactionByHash(ctx context.Context, hash common.Hash) (*ports.TxInfo, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	tx, pending, err := g.client.TransactionByHash(ctx, hash)
	if err == ethereum.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(g.chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("recovering sender: %w", err)
	}
	return &ports.TxInfo{
		Hash:    tx.Hash(),
		From:    from,
		To:      tx.To(),
		Value:   tx.Value(),
		Pending: pending,
	}, nil
}

// Receipt returns the transaction receipt, or nil when not yet mined.
func (g *Gateway) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	receipt, err := g.client.TransactionReceipt(ctx, hash)
	if err == ethereum.NotFound {
		return nil, nil
	}
	return receipt, err
}

// BlockNumber returns the current head height.
func (g *Gateway) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return g.client.BlockNumber(ctx)
}

// TokenDecimals calls decimals() on the contract.
func (g *Gateway) TokenDecimals(ctx context.Context, contract common.Address) (int32, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	ret, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: decimalsCalldata}, nil)
	if err != nil {
		return 0, fmt.Errorf("decimals() call: %w", err)
	}
	if len(ret) == 0 {
		return 0, fmt.Errorf("contract %s returned no decimals", contract.Hex())
	}

	decimals := new(big.Int).SetBytes(ret)
	if !decimals.IsInt64() || decimals.Int64() > 77 {
		return 0, fmt.Errorf("contract %s reports implausible decimals %s", contract.Hex(), decimals)
	}
	return int32(decimals.Int64()), nil
}

// TokenSymbol calls symbol() on the contract.
func (g *Gateway) TokenSymbol(ctx context.Context, contract common.Address) (string, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	ret, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: symbolCalldata}, nil)
	if err != nil {
		return "", fmt.Errorf("symbol() call: %w", err)
	}
	return decodeStringReturn(ret), nil
}

func (g *Gateway) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// applyMargin scales v by (100 + percent) / 100.
func applyMargin(v *big.Int, percent int64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(100+percent))
	return out.Div(out, big.NewInt(100))
}

// decodeStringReturn handles both ABI-encoded string returns and the
// bytes32 symbols some old token contracts use.
func decodeStringReturn(ret []byte) string {
	if len(ret) >= 64 {
		length := new(big.Int).SetBytes(ret[32:64])
		if length.IsInt64() {
			n := length.Int64()
			if n >= 0 && 64+n <= int64(len(ret)) {
				return string(ret[64 : 64+n])
			}
		}
	}
	// bytes32: zero-padded ASCII
	return strings.TrimRight(string(ret), "\x00")
}
