package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"regexp"
	"strings"
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"
	"chain-wallet-gateway/pkg/apperror"
	"chain-wallet-gateway/pkg/units"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

const (
	nativeGasLimit   = 21000
	tokenMetadataTTL = 24 * time.Hour
	fallbackSymbol   = "token"
)

// erc20TransferTopic is keccak256("Transfer(address,address,uint256)").
var erc20TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// transferMethodID is the 4-byte selector of transfer(address,uint256).
var transferMethodID = []byte{0xa9, 0x05, 0x9c, 0xbb}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// TransactionServiceImpl implements ports.TransactionService.
type TransactionServiceImpl struct {
	chain    ports.ChainGateway
	signer   ports.SignerGateway
	txRepo   ports.TransactionRepository
	decimals ports.DecimalsCache
	locker   *AddressLocker
	log      zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	chain ports.ChainGateway,
	signer ports.SignerGateway,
	txRepo ports.TransactionRepository,
	decimals ports.DecimalsCache,
	locker *AddressLocker,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		chain:    chain,
		signer:   signer,
		txRepo:   txRepo,
		decimals: decimals,
		locker:   locker,
		log:      log,
	}
}

// Create validates the transfer request, then signs and broadcasts it under
// the sender's address lock so concurrent requests get strictly increasing
// nonces.
func (s *TransactionServiceImpl) Create(ctx context.Context, req ports.CreateTransactionRequest) (*ports.CreateTransactionResult, error) {
	// Validation happens in a fixed order so the caller always sees the
	// first failing check: addresses, asset spec, amount, key material.
	if !common.IsHexAddress(req.AddressFrom) {
		return nil, apperror.ErrInvalidAddress("address_from")
	}
	if !common.IsHexAddress(req.AddressTo) {
		return nil, apperror.ErrInvalidAddress("address_to")
	}

	asset := strings.ToLower(strings.TrimSpace(req.Asset))
	isNative := asset == string(domain.AssetNative)
	switch {
	case asset == "":
		return nil, apperror.ErrInvalidAssetSpec("asset is required")
	case isNative && req.ContractAddress != nil && *req.ContractAddress != "":
		return nil, apperror.ErrInvalidAssetSpec("contract_address must be empty for eth transfers")
	case !isNative && (req.ContractAddress == nil || *req.ContractAddress == ""):
		return nil, apperror.ErrInvalidAssetSpec("contract_address is required for token transfers")
	case !isNative && !common.IsHexAddress(*req.ContractAddress):
		return nil, apperror.ErrInvalidAssetSpec("contract_address is not a valid address")
	}

	decimals := units.NativeDecimals
	if !isNative {
		info, err := s.tokenInfo(ctx, *req.ContractAddress)
		if err != nil {
			return nil, err
		}
		decimals = info.Decimals
	}

	value, err := units.ToMinorUnits(req.Value, decimals)
	if err != nil {
		switch {
		case errors.Is(err, units.ErrPrecisionExceeded):
			return nil, apperror.ErrPrecisionExceeded()
		default:
			return nil, apperror.ErrInvalidAmount()
		}
	}

	from := common.HexToAddress(req.AddressFrom)
	hasKey, err := s.signer.HasKey(ctx, from)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("key lookup: %w", err))
	}
	if !hasKey {
		return nil, apperror.ErrUnknownWallet(req.AddressFrom)
	}

	// Critical section: nonce -> sign -> broadcast -> persist.
	unlock := s.locker.Lock(req.AddressFrom)
	defer unlock()

	nonce, err := s.chain.NextNonce(ctx, from)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("next nonce: %w", err))
	}

	fees, err := s.chain.SuggestFees(ctx)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("suggest fees: %w", err))
	}

	unsigned, gasLimit, err := s.buildTransfer(ctx, from, req, isNative, value, nonce, fees)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.Sign(ctx, from, unsigned)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, apperror.ErrUnknownWallet(req.AddressFrom)
		}
		return nil, apperror.ErrSigningDenied(err)
	}

	hash, err := s.chain.Broadcast(ctx, signed)
	if err != nil {
		if isNetworkErr(err) {
			// The node may have accepted the transaction before the
			// connection died. Flag it so operators can reconcile.
			s.log.Error().Err(err).
				Str("address_from", req.AddressFrom).
				Uint64("nonce", nonce).
				Bool("broadcast_ambiguous", true).
				Msg("broadcast outcome unknown")
			return nil, apperror.ErrChainUnavailable(err)
		}
		return nil, apperror.ErrBroadcastRejected(err)
	}

	// Upper-bound fee estimate; refined to the actual cost once the
	// receipt lands.
	feeEstimate := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), fees.MaxFee)

	now := time.Now().UTC()
	record := &domain.Transaction{
		Hash:                   hash.Hex(),
		AddressFrom:            strings.ToLower(from.Hex()),
		AddressTo:              strings.ToLower(common.HexToAddress(req.AddressTo).Hex()),
		Asset:                  domain.Asset(asset),
		ContractAddress:        normalizedContract(req.ContractAddress, isNative),
		ValueMinorUnits:        value,
		Decimals:               decimals,
		Status:                 domain.TransactionStatusPending,
		EffectiveFeeMinorUnits: feeEstimate,
		Nonce:                  nonce,
		CreatedAt:              now,
	}
	if err := s.txRepo.Upsert(ctx, record); err != nil {
		// The transaction is on the wire either way. Never fail the
		// request here; the reconciler or a later Validate call
		// settles the record.
		s.log.Error().Err(err).
			Str("hash", record.Hash).
			Uint64("nonce", nonce).
			Msg("persisting broadcast transaction failed, reconciliation required")
	}

	s.log.Info().
		Str("hash", record.Hash).
		Str("address_from", record.AddressFrom).
		Str("asset", asset).
		Uint64("nonce", nonce).
		Msg("transaction broadcast")

	return &ports.CreateTransactionResult{
		Hash:         record.Hash,
		Status:       domain.TransactionStatusPending,
		EffectiveFee: units.ToDecimalString(feeEstimate, units.NativeDecimals),
		CreatedAt:    now,
	}, nil
}

// buildTransfer assembles the unsigned EIP-1559 transaction for either a
// native transfer or an ERC-20 transfer call.
func (s *TransactionServiceImpl) buildTransfer(
	ctx context.Context,
	from common.Address,
	req ports.CreateTransactionRequest,
	isNative bool,
	value *big.Int,
	nonce uint64,
	fees *ports.FeeSuggestion,
) (*types.Transaction, uint64, error) {
	var (
		to       common.Address
		txValue  *big.Int
		data     []byte
		gasLimit uint64
	)

	if isNative {
		to = common.HexToAddress(req.AddressTo)
		txValue = value
		gasLimit = nativeGasLimit
	} else {
		to = common.HexToAddress(*req.ContractAddress)
		txValue = big.NewInt(0)
		data = transferCalldata(common.HexToAddress(req.AddressTo), value)

		estimated, err := s.chain.EstimateGas(ctx, ethereum.CallMsg{
			From: from,
			To:   &to,
			Data: data,
		})
		if err != nil {
			if isNetworkErr(err) {
				return nil, 0, apperror.ErrChainUnavailable(fmt.Errorf("estimate gas: %w", err))
			}
			return nil, 0, apperror.ErrBroadcastRejected(fmt.Errorf("estimate gas: %w", err))
		}
		gasLimit = estimated
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chain.ChainID(),
		Nonce:     nonce,
		GasTipCap: fees.TipCap,
		GasFeeCap: fees.MaxFee,
		Gas:       gasLimit,
		To:        &to,
		Value:     txValue,
		Data:      data,
	})
	return tx, gasLimit, nil
}

// Validate inspects the transaction on chain and settles the local record
// when it has reached a terminal state.
func (s *TransactionServiceImpl) Validate(ctx context.Context, req ports.ValidateTransactionRequest) (*ports.ValidationResult, error) {
	if !txHashPattern.MatchString(req.Hash) {
		return nil, apperror.Validation("tx_hash must be a 0x-prefixed 32-byte hex hash")
	}

	minRequired := uint64(1)
	if req.RequireConfirmations && req.MinConfirmations > 0 {
		minRequired = req.MinConfirmations
	}
	result := &ports.ValidationResult{
		Transfers:                []ports.Transfer{},
		MinConfirmationsRequired: minRequired,
	}

	hash := common.HexToHash(req.Hash)
	receipt, err := s.chain.Receipt(ctx, hash)
	if err != nil {
		return nil, s.chainErr("receipt lookup", err)
	}
	if receipt == nil {
		// Unknown to the chain, or still in the mempool. Either way it
		// proves nothing yet.
		return result, nil
	}

	head, err := s.chain.BlockNumber(ctx)
	if err != nil {
		return nil, s.chainErr("head lookup", err)
	}
	if block := receipt.BlockNumber.Uint64(); head >= block {
		result.Confirmations = head - block + 1
	}

	success := receipt.Status == types.ReceiptStatusSuccessful
	result.IsValid = success && (!req.RequireConfirmations || result.Confirmations >= 1)
	result.IsConfirmed = success && result.Confirmations >= minRequired

	if success {
		result.Transfers = s.collectTransfers(ctx, hash, receipt)
	}

	s.settleLocalRecord(ctx, req.Hash, receipt, success, result.IsConfirmed)

	return result, nil
}

// collectTransfers extracts the direct value transfer plus every ERC-20
// Transfer event from the receipt logs.
func (s *TransactionServiceImpl) collectTransfers(ctx context.Context, hash common.Hash, receipt *types.Receipt) []ports.Transfer {
	transfers := []ports.Transfer{}

	txInfo, err := s.chain.TransactionByHash(ctx, hash)
	if err != nil {
		s.log.Warn().Err(err).Str("hash", hash.Hex()).Msg("transaction body lookup failed")
	}
	if txInfo != nil && txInfo.To != nil && txInfo.Value != nil && txInfo.Value.Sign() > 0 {
		transfers = append(transfers, ports.Transfer{
			Asset:       string(domain.AssetNative),
			AddressFrom: strings.ToLower(txInfo.From.Hex()),
			AddressTo:   strings.ToLower(txInfo.To.Hex()),
			Value:       units.ToDecimalString(txInfo.Value, units.NativeDecimals),
		})
	}

	for _, lg := range receipt.Logs {
		if len(lg.Topics) < 3 || lg.Topics[0] != erc20TransferTopic {
			continue
		}
		info, err := s.tokenInfo(ctx, lg.Address.Hex())
		if err != nil {
			s.log.Warn().Err(err).
				Str("hash", hash.Hex()).
				Str("contract", lg.Address.Hex()).
				Msg("skipping transfer log, token metadata unavailable")
			continue
		}
		transfers = append(transfers, ports.Transfer{
			Asset:       info.Symbol,
			AddressFrom: strings.ToLower(common.BytesToAddress(lg.Topics[1].Bytes()).Hex()),
			AddressTo:   strings.ToLower(common.BytesToAddress(lg.Topics[2].Bytes()).Hex()),
			Value:       units.ToDecimalString(new(big.Int).SetBytes(lg.Data), info.Decimals),
		})
	}

	return transfers
}

// settleLocalRecord applies the terminal transition to a pending local
// record. Best-effort: validation results never depend on local storage.
func (s *TransactionServiceImpl) settleLocalRecord(ctx context.Context, hash string, receipt *types.Receipt, success, isConfirmed bool) {
	local, err := s.txRepo.GetByHash(ctx, hash)
	if err != nil {
		s.log.Warn().Err(err).Str("hash", hash).Msg("local record lookup failed")
		return
	}
	if local == nil || local.Status != domain.TransactionStatusPending {
		return
	}

	actualFee := new(big.Int).Mul(
		new(big.Int).SetUint64(receipt.GasUsed),
		receipt.EffectiveGasPrice,
	)

	switch {
	case !success:
		if err := s.txRepo.MarkTerminal(ctx, hash, domain.TransactionStatusFailed, nil, actualFee); err != nil {
			s.log.Error().Err(err).Str("hash", hash).Msg("marking transaction failed")
		}
	case isConfirmed:
		now := time.Now().UTC()
		if err := s.txRepo.MarkTerminal(ctx, hash, domain.TransactionStatusConfirmed, &now, actualFee); err != nil {
			s.log.Error().Err(err).Str("hash", hash).Msg("marking transaction confirmed")
		}
	}
}

// Status returns the local record combined with the live confirmation depth.
func (s *TransactionServiceImpl) Status(ctx context.Context, hash string) (*ports.TransactionStatusResult, error) {
	if !txHashPattern.MatchString(hash) {
		return nil, apperror.Validation("tx_hash must be a 0x-prefixed 32-byte hex hash")
	}

	local, err := s.txRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("local record lookup: %w", err))
	}
	if local == nil {
		return nil, apperror.ErrTransactionNotFound()
	}

	// Live depth is best-effort; the record is authoritative for the rest.
	var confirmations uint64
	receipt, err := s.chain.Receipt(ctx, common.HexToHash(hash))
	if err != nil {
		s.log.Warn().Err(err).Str("hash", hash).Msg("receipt lookup failed")
	} else if receipt != nil {
		head, err := s.chain.BlockNumber(ctx)
		if err != nil {
			s.log.Warn().Err(err).Str("hash", hash).Msg("head lookup failed")
		} else if block := receipt.BlockNumber.Uint64(); head >= block {
			confirmations = head - block + 1
		}
	}

	return &ports.TransactionStatusResult{
		Transaction:   local,
		Confirmations: confirmations,
		Value:         units.ToDecimalString(local.ValueMinorUnits, local.Decimals),
		EffectiveFee:  units.ToDecimalString(local.EffectiveFeeMinorUnits, units.NativeDecimals),
	}, nil
}

// List returns stored transaction records.
func (s *TransactionServiceImpl) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	items, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return items, total, nil
}

// tokenInfo resolves token metadata through the cache, falling back to the
// contract itself.
func (s *TransactionServiceImpl) tokenInfo(ctx context.Context, contract string) (*ports.TokenInfo, error) {
	key := strings.ToLower(contract)

	info, err := s.decimals.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("contract", key).Msg("token metadata cache read failed")
	}
	if info != nil {
		return info, nil
	}

	addr := common.HexToAddress(contract)
	decimals, err := s.chain.TokenDecimals(ctx, addr)
	if err != nil {
		if isNetworkErr(err) {
			return nil, apperror.ErrChainUnavailable(fmt.Errorf("token decimals: %w", err))
		}
		return nil, apperror.ErrUnknownContract(contract, err)
	}

	symbol, err := s.chain.TokenSymbol(ctx, addr)
	if err != nil || symbol == "" {
		symbol = fallbackSymbol
	}

	info = &ports.TokenInfo{Decimals: decimals, Symbol: strings.ToLower(symbol)}
	if err := s.decimals.Set(ctx, key, *info, tokenMetadataTTL); err != nil {
		s.log.Warn().Err(err).Str("contract", key).Msg("token metadata cache write failed")
	}
	return info, nil
}

func (s *TransactionServiceImpl) chainErr(op string, err error) error {
	if isNetworkErr(err) {
		return apperror.ErrChainUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}

// transferCalldata encodes transfer(address,uint256).
func transferCalldata(to common.Address, value *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, transferMethodID...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(value.Bytes(), 32)...)
	return data
}

func normalizedContract(contract *string, isNative bool) *string {
	if isNative || contract == nil {
		return nil
	}
	c := strings.ToLower(common.HexToAddress(*contract).Hex())
	return &c
}

// isNetworkErr reports whether err looks like a transport failure rather
// than a node-level rejection.
func isNetworkErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
