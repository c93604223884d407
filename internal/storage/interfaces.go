package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
)

// BaseScore is the starting score for lazily created score records.
const BaseScore = 150

// UserStore provides access to users storage.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if the wallet exists.
	Insert(ctx context.Context, u *domain.User) error

	// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, wallet string) (*domain.User, error)
}

// CoinStore provides access to coins storage.
type CoinStore interface {
	// Insert adds a new coin. Returns ErrDuplicateKey if the address exists.
	Insert(ctx context.Context, c *domain.Coin) error

	// Get retrieves a coin by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Coin, error)

	// Exists reports whether a coin with the address is stored.
	Exists(ctx context.Context, address string) (bool, error)

	// UpdatePrice sets the coin's current price.
	UpdatePrice(ctx context.Context, address string, price decimal.Decimal) error

	// SetScore syncs the denormalized score mirror on the coin row.
	SetScore(ctx context.Context, address string, score int) error

	// ListByCreator retrieves all coins created by the wallet.
	ListByCreator(ctx context.Context, creator string) ([]*domain.Coin, error)

	// ListAddresses retrieves every stored coin address.
	ListAddresses(ctx context.Context) ([]string, error)

	// ListCreators retrieves the distinct creator wallets across all coins.
	ListCreators(ctx context.Context) ([]string, error)
}

// TradeStore provides access to trades storage. Trades are append-only;
// a transaction signature is stored at most once.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// Exists reports whether a trade with the signature is stored.
	Exists(ctx context.Context, signature string) (bool, error)

	// CountByCoin returns the number of trades recorded for the coin.
	CountByCoin(ctx context.Context, coin string) (int64, error)

	// CountByCoinAndType returns the number of trades of one type for the coin.
	CountByCoinAndType(ctx context.Context, coin string, tt domain.TradeType) (int64, error)

	// VolumeSince sums sol_amount over the coin's trades created at or after since.
	VolumeSince(ctx context.Context, coin string, since time.Time) (decimal.Decimal, error)

	// BuySpendSince sums sol_amount over the user's BUY trades created at
	// or after since, across all coins.
	BuySpendSince(ctx context.Context, user string, since time.Time) (decimal.Decimal, error)

	// ListByUser retrieves the user's trades ordered by created_at ASC.
	ListByUser(ctx context.Context, user string) ([]*domain.Trade, error)

	// ListTraders retrieves the distinct wallets that have traded.
	ListTraders(ctx context.Context) ([]string, error)
}

// HoldingsStore provides access to user coin holdings.
type HoldingsStore interface {
	// Get retrieves the holding for (user, coin). Returns ErrNotFound if not exists.
	Get(ctx context.Context, user, coin string) (*domain.UserCoinHoldings, error)

	// Apply upserts the holding, adding delta to the held amount. A negative
	// delta that would take the balance below zero floors it at zero.
	Apply(ctx context.Context, user, coin string, delta decimal.Decimal) error

	// CountHolders returns the number of users holding a positive amount.
	CountHolders(ctx context.Context, coin string) (int, error)

	// TotalHeld sums the held amount across all holders of the coin.
	TotalHeld(ctx context.Context, coin string) (decimal.Decimal, error)

	// ListByCoin retrieves all positive holdings of the coin.
	ListByCoin(ctx context.Context, coin string) ([]*domain.UserCoinHoldings, error)

	// ListByUser retrieves all positive holdings of the user.
	ListByUser(ctx context.Context, user string) ([]*domain.UserCoinHoldings, error)
}

// ScoreStore provides access to the three reputation score tables. Score
// records are created lazily; GetOrCreate returns a default-initialized
// record on first access.
type ScoreStore interface {
	// GetOrCreateCoinScore retrieves the coin's score record, creating it
	// with the base score if absent.
	GetOrCreateCoinScore(ctx context.Context, coinAddress string) (*domain.CoinDRCScore, error)

	// SaveCoinScore persists the full score record.
	SaveCoinScore(ctx context.Context, s *domain.CoinDRCScore) error

	// GetOrCreateDeveloperScore retrieves the developer's score record,
	// creating it with the base score if absent.
	GetOrCreateDeveloperScore(ctx context.Context, developer string) (*domain.DeveloperScore, error)

	// SaveDeveloperScore persists the full score record.
	SaveDeveloperScore(ctx context.Context, s *domain.DeveloperScore) error

	// GetOrCreateTraderScore retrieves the trader's score record, creating
	// it with the base score if absent.
	GetOrCreateTraderScore(ctx context.Context, trader string) (*domain.TraderScore, error)

	// SaveTraderScore persists the full score record.
	SaveTraderScore(ctx context.Context, s *domain.TraderScore) error

	// GetTraderScore retrieves the trader's score without creating it.
	// Returns ErrNotFound if the trader was never scored.
	GetTraderScore(ctx context.Context, trader string) (*domain.TraderScore, error)

	// FlagCounts aggregates score flags over the given coins: how many are
	// marked successful, token-abandoned, and team-abandoned. Coins without
	// a score record count toward none.
	FlagCounts(ctx context.Context, coins []string) (successful, tokenAbandoned, teamAbandoned int, err error)
}

// ScoreHistoryStore records effective score changes for later analysis.
type ScoreHistoryStore interface {
	// Append adds a snapshot. Duplicates are tolerated.
	Append(ctx context.Context, snap *domain.ScoreSnapshot) error
}
