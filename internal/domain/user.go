package domain

import "time"

// User represents a wallet-authenticated platform user.
// Corresponds to the users table in PostgreSQL.
type User struct {
	WalletAddress string // PRIMARY KEY, base58 public key
	DisplayName   string
	Bio           string
	CreatedAt     time.Time
}

// Name returns the display name if available, otherwise the wallet address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.WalletAddress
}
