package domain

import "time"

// Wallet is a provisioned on-chain account. Only the checksummed address is
// kept here; key material never leaves the keystore.
type Wallet struct {
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
