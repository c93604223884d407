package domain

import "github.com/shopspring/decimal"

// UserCoinHoldings tracks how much of a coin a user currently holds.
// Unique per (user, coin); derived from net BUY/SELL/COIN_CREATE history.
type UserCoinHoldings struct {
	User       string // FK to users.wallet_address
	Coin       string // FK to coins.address
	AmountHeld decimal.Decimal
}

// HeldPercentage returns the share of total supply this holding represents,
// as a percentage in [0, 100].
func (h *UserCoinHoldings) HeldPercentage(totalSupply decimal.Decimal) decimal.Decimal {
	if totalSupply.IsZero() {
		return decimal.Zero
	}
	return h.AmountHeld.Div(totalSupply).Mul(decimal.NewFromInt(100))
}
