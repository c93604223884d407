package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeType classifies a trade record.
type TradeType string

const (
	TradeBuy        TradeType = "BUY"
	TradeSell       TradeType = "SELL"
	TradeCoinCreate TradeType = "COIN_CREATE"
)

// String returns the string representation of TradeType.
func (t TradeType) String() string {
	return string(t)
}

// IsValid checks if the trade type is a known value.
func (t TradeType) IsValid() bool {
	return t == TradeBuy || t == TradeSell || t == TradeCoinCreate
}

// TradeTypeFromCode maps the on-chain transfer_type field to a TradeType.
// Wire codes: 0 = BUY, 1 = SELL, 2 = COIN_CREATE.
func TradeTypeFromCode(code uint8) (TradeType, error) {
	switch code {
	case 0:
		return TradeBuy, nil
	case 1:
		return TradeSell, nil
	case 2:
		return TradeCoinCreate, nil
	default:
		return "", fmt.Errorf("unregistered transfer type code %d", code)
	}
}

// Trade represents a single on-chain buy/sell/creation transaction.
// Corresponds to the trades table in PostgreSQL. Append-only;
// transaction_hash is globally unique and processed at most once.
type Trade struct {
	TransactionHash string          // PRIMARY KEY, transaction signature
	User            string          // FK to users.wallet_address
	Coin            string          // FK to coins.address
	TradeType       TradeType       // BUY | SELL | COIN_CREATE
	CoinAmount      decimal.Decimal // token amount, scaled by coin decimals
	SolAmount       decimal.Decimal // SOL amount, scaled by coin decimals
	CreatedAt       time.Time
}

// UnitPrice returns sol_amount / coin_amount, or zero when no tokens moved.
func (t *Trade) UnitPrice() decimal.Decimal {
	if t.CoinAmount.IsZero() {
		return decimal.Zero
	}
	return t.SolAmount.Div(t.CoinAmount)
}
