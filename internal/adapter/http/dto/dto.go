package dto

import (
	"time"

	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"
)

// CreateTransactionRequest is the request body for transaction creation.
type CreateTransactionRequest struct {
	AddressFrom     string  `json:"address_from" binding:"required,eth_addr"`
	AddressTo       string  `json:"address_to" binding:"required,eth_addr"`
	Asset           string  `json:"asset" binding:"required,max=32"`
	Value           string  `json:"value" binding:"required,max=100"`
	ContractAddress *string `json:"contract_address,omitempty"`
}

// CreateTransactionResponse is the response body for a broadcast transaction.
type CreateTransactionResponse struct {
	Hash         string `json:"hash"`
	Status       string `json:"status"`
	EffectiveFee string `json:"effective_fee"`
	CreatedAt    string `json:"created_at"`
}

// TransferResponse describes one decoded value movement inside a transaction.
type TransferResponse struct {
	Asset       string `json:"asset"`
	AddressFrom string `json:"address_from"`
	AddressTo   string `json:"address_to"`
	Value       string `json:"value"`
}

// ValidateTransactionResponse is the response body for on-chain validation.
type ValidateTransactionResponse struct {
	IsValid                  bool               `json:"is_valid"`
	Transfers                []TransferResponse `json:"transfers"`
	Confirmations            uint64             `json:"confirmations"`
	IsConfirmed              bool               `json:"is_confirmed"`
	MinConfirmationsRequired uint64             `json:"min_confirmations_required"`
}

// TransactionStatusResponse is the response body for a local record with
// its current chain depth.
type TransactionStatusResponse struct {
	Hash            string  `json:"hash"`
	AddressFrom     string  `json:"address_from"`
	AddressTo       string  `json:"address_to"`
	Asset           string  `json:"asset"`
	ContractAddress *string `json:"contract_address,omitempty"`
	Value           string  `json:"value"`
	Status          string  `json:"status"`
	Confirmations   uint64  `json:"confirmations"`
	EffectiveFee    string  `json:"effective_fee"`
	CreatedAt       string  `json:"created_at"`
	ConfirmedAt     *string `json:"confirmed_at,omitempty"`
}

// TransactionListItem is one row in a transaction listing. Amounts stay in
// raw minor units here; the status endpoint renders decimals.
type TransactionListItem struct {
	Hash            string  `json:"hash"`
	AddressFrom     string  `json:"address_from"`
	AddressTo       string  `json:"address_to"`
	Asset           string  `json:"asset"`
	ContractAddress *string `json:"contract_address,omitempty"`
	ValueMinorUnits string  `json:"value_minor_units"`
	Decimals        int32   `json:"decimals"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionListItem `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// CreateWalletsRequest is the request body for batch wallet provisioning.
type CreateWalletsRequest struct {
	Count int `json:"count" binding:"required,gt=0,lte=100"`
}

// CreateWalletsResponse returns the provisioned addresses.
type CreateWalletsResponse struct {
	Addresses []string `json:"addresses"`
	Count     int      `json:"count"`
}

// WalletResponse is one row in a wallet listing.
type WalletResponse struct {
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// FromValidationResult maps a service validation result to its DTO.
func FromValidationResult(r *ports.ValidationResult) ValidateTransactionResponse {
	transfers := make([]TransferResponse, 0, len(r.Transfers))
	for _, t := range r.Transfers {
		transfers = append(transfers, TransferResponse{
			Asset:       t.Asset,
			AddressFrom: t.AddressFrom,
			AddressTo:   t.AddressTo,
			Value:       t.Value,
		})
	}
	return ValidateTransactionResponse{
		IsValid:                  r.IsValid,
		Transfers:                transfers,
		Confirmations:            r.Confirmations,
		IsConfirmed:              r.IsConfirmed,
		MinConfirmationsRequired: r.MinConfirmationsRequired,
	}
}

// FromStatusResult maps a service status result to its DTO.
func FromStatusResult(r *ports.TransactionStatusResult) TransactionStatusResponse {
	tx := r.Transaction
	resp := TransactionStatusResponse{
		Hash:            tx.Hash,
		AddressFrom:     tx.AddressFrom,
		AddressTo:       tx.AddressTo,
		Asset:           string(tx.Asset),
		ContractAddress: tx.ContractAddress,
		Value:           r.Value,
		Status:          string(tx.Status),
		Confirmations:   r.Confirmations,
		EffectiveFee:    r.EffectiveFee,
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.ConfirmedAt != nil {
		s := tx.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &s
	}
	return resp
}

// FromTransaction maps a domain record to a list item.
func FromTransaction(tx domain.Transaction) TransactionListItem {
	value := "0"
	if tx.ValueMinorUnits != nil {
		value = tx.ValueMinorUnits.String()
	}
	return TransactionListItem{
		Hash:            tx.Hash,
		AddressFrom:     tx.AddressFrom,
		AddressTo:       tx.AddressTo,
		Asset:           string(tx.Asset),
		ContractAddress: tx.ContractAddress,
		ValueMinorUnits: value,
		Decimals:        tx.Decimals,
		Status:          string(tx.Status),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
}
