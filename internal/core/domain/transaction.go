package domain

import (
	"math/big"
	"time"
)

// Asset identifies what is being transferred: the native coin or an
// ERC-20 token.
type Asset string

const (
	AssetNative Asset = "eth"
	AssetToken  Asset = "token"
)

// TransactionStatus represents the lifecycle state of a broadcast transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is the local record of a transaction this service broadcast.
// Amounts are integer minor units; rendering to human decimals happens at
// the boundary.
type Transaction struct {
	Hash                   string            `json:"hash"`
	AddressFrom            string            `json:"address_from"`
	AddressTo              string            `json:"address_to"`
	Asset                  Asset             `json:"asset"`
	ContractAddress        *string           `json:"contract_address,omitempty"`
	ValueMinorUnits        *big.Int          `json:"-"`
	Decimals               int32             `json:"decimals"`
	Status                 TransactionStatus `json:"status"`
	EffectiveFeeMinorUnits *big.Int          `json:"-"`
	Nonce                  uint64            `json:"nonce"`
	CreatedAt              time.Time         `json:"created_at"`
	ConfirmedAt            *time.Time        `json:"confirmed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusConfirmed ||
		t.Status == TransactionStatusFailed
}

// CanTransitionTo reports whether moving to next is allowed. Transitions are
// monotonic: pending may settle either way, terminal states never change.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	if t.Status != TransactionStatusPending {
		return false
	}
	return next == TransactionStatusConfirmed || next == TransactionStatusFailed
}

// IsToken returns true for ERC-20 transfers.
func (t *Transaction) IsToken() bool {
	return t.Asset != AssetNative
}
