package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rank converts a DRC score into a 1-5 reputation tier.
func Rank(score int) int {
	switch {
	case score < 150:
		return 1
	case score < 500:
		return 2
	case score < 1000:
		return 3
	case score < 2000:
		return 4
	default:
		return 5
	}
}

// CoinDRCScore holds the per-coin reputation score and the rolling metrics
// the scoring engine maintains across its daily/biweekly/monthly cadences.
// One-to-one with a coin; created lazily on first recalculation.
type CoinDRCScore struct {
	CoinAddress string // PK + FK to coins.address
	Score       int    // clamped >= 0

	// Market metrics
	HoldersCount      int
	AgeInHours        int
	MaxVolumeRecorded decimal.Decimal

	// Price tracking
	PriceBreakoutsPerMonth int
	LastRecordedPrice      decimal.Decimal // monthly baseline (liquidity)
	LastPrice              decimal.Decimal // previous daily price

	// Holder metrics
	HolderRetentionMonths int
	LastRecordedHolders   int

	// Abandonment and fraud flags. Sticky once set.
	TeamAbandonment     bool
	TokenAbandonment    bool
	PumpAndDumpActivity bool
	SuccessfulToken     bool

	// Cadence timestamps. Zero value means the period never ran.
	LastDailyUpdate    time.Time
	LastBiweeklyUpdate time.Time
	LastMonthlyUpdate  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rank returns the coin's reputation tier.
func (s *CoinDRCScore) Rank() int {
	return Rank(s.Score)
}

// DeveloperScore holds the reputation score for a user as coin creator.
// Recomputed from aggregate coin flags, never partially migrated.
type DeveloperScore struct {
	Developer string // PK + FK to users.wallet_address
	Score     int    // clamped >= 0

	SuccessfulLaunch  int // coins flagged successful_token
	AbandonedProjects int // coins flagged token_abandonment
	RugPullOrSellOff  int // coins flagged team_abandonment
	NoRugsCount       int // coins with no abandonment flags

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rank returns the developer's reputation tier.
func (s *DeveloperScore) Rank() int {
	return Rank(s.Score)
}

// TraderScore holds the reputation score for a user as trader, derived from
// behavioral checks over that user's trade history.
type TraderScore struct {
	Trader string // PK + FK to users.wallet_address
	Score  int    // clamped >= 0

	QuickPumpAndDumpsCount int
	SnipingAndDumpsCount   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rank returns the trader's reputation tier.
func (s *TraderScore) Rank() int {
	return Rank(s.Score)
}

// Score entity types recorded in score history snapshots.
const (
	ScoreEntityCoin      = "coin"
	ScoreEntityDeveloper = "developer"
	ScoreEntityTrader    = "trader"
)

// ScoreSnapshot is an append-only record of an effective score change.
// Corresponds to the score_history table in ClickHouse.
type ScoreSnapshot struct {
	EntityType string // coin | developer | trader
	EntityID   string // coin address or wallet address
	Score      int
	RecordedAt time.Time
}
