package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coin represents a token launched through the monitored program.
// Corresponds to the coins table in PostgreSQL.
type Coin struct {
	Address      string          // PRIMARY KEY, mint address, immutable
	Name         string          // token name
	Ticker       string          // token symbol, stored uppercase
	Creator      string          // FK to users.wallet_address
	TotalSupply  decimal.Decimal // total token supply
	CurrentPrice decimal.Decimal // latest observed price in SOL
	Decimals     uint8           // mint decimals for amount scaling
	ImageURL     string
	Description  string
	Discord      string
	Website      string
	Twitter      string
	Score        int             // denormalized copy of the latest DRC score
	ATH          decimal.Decimal // all-time-high price, reserved
	CreatedAt    time.Time
}

// Normalize enforces field conventions before persistence.
func (c *Coin) Normalize() {
	c.Ticker = strings.ToUpper(c.Ticker)
}

// Liquidity is total_held * current_price.
func (c *Coin) Liquidity(totalHeld decimal.Decimal) decimal.Decimal {
	return totalHeld.Mul(c.CurrentPrice)
}

// MarketCap is (total_supply - total_held) * current_price.
func (c *Coin) MarketCap(totalHeld decimal.Decimal) decimal.Decimal {
	return c.TotalSupply.Sub(totalHeld).Mul(c.CurrentPrice)
}
