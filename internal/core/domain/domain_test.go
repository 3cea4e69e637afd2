package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"confirmed", TransactionStatusConfirmed, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestTransaction_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from TransactionStatus
		to   TransactionStatus
		want bool
	}{
		{"pending to confirmed", TransactionStatusPending, TransactionStatusConfirmed, true},
		{"pending to failed", TransactionStatusPending, TransactionStatusFailed, true},
		{"pending to pending", TransactionStatusPending, TransactionStatusPending, false},
		{"confirmed to failed", TransactionStatusConfirmed, TransactionStatusFailed, false},
		{"confirmed to pending", TransactionStatusConfirmed, TransactionStatusPending, false},
		{"failed to confirmed", TransactionStatusFailed, TransactionStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.from}
			assert.Equal(t, tt.want, tx.CanTransitionTo(tt.to))
		})
	}
}

func TestTransaction_IsToken(t *testing.T) {
	native := &Transaction{Asset: AssetNative}
	assert.False(t, native.IsToken())

	token := &Transaction{Asset: Asset("usdt")}
	assert.True(t, token.IsToken())
}

func TestTransactionStatus_Constants(t *testing.T) {
	assert.Equal(t, TransactionStatus("pending"), TransactionStatusPending)
	assert.Equal(t, TransactionStatus("confirmed"), TransactionStatusConfirmed)
	assert.Equal(t, TransactionStatus("failed"), TransactionStatusFailed)
}
