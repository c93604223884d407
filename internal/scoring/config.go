package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config collects every tunable threshold and cap used by the scoring
// engine. All production values live in DefaultConfig; tests construct
// variants to probe individual rules.
type Config struct {
	// Daily cadence
	BreakoutThreshold  decimal.Decimal // price move fraction counted as a breakout
	DailyVolumeCap     decimal.Decimal // lifetime volume cap for the daily ratchet bonus
	DevDumpGrace       time.Duration   // no dev-dump check before this age
	DevDumpMaxAge      time.Duration   // no dev-dump check after this age
	DevDumpMinPercent  decimal.Decimal // creator holding below this percent flags abandonment
	DevDumpPenalty     int
	AbandonMaxAge      time.Duration // token-abandonment and pump-and-dump checks stop here
	AbandonQuietAge    time.Duration // low-trade-count rule arms after this age
	AbandonMinTrades   int64
	AbandonSellRatio   decimal.Decimal
	AbandonPenalty     int
	PumpBreakouts      int             // monthly breakouts above this is a pump signal
	PumpVolumeRatio    decimal.Decimal // 30-day volume vs prior max above this is a pump signal
	DumpDropRatio      decimal.Decimal // price or holder drop beyond this is a dump signal
	PumpAndDumpPenalty int

	// Biweekly cadence
	BiweeklyInterval time.Duration
	RankMajority     decimal.Decimal // holder share that triggers a rank bonus
	Rank5Bonus       int
	Rank4Bonus       int
	Rank3Bonus       int
	BiweeklyCap      int

	// Monthly cadence
	FairTradingMaxBreakouts int
	FairTradingMinVolume    decimal.Decimal
	FairTradingBonus        int
	PriceGrowthMinRatio     decimal.Decimal
	PriceGrowthBonus        int
	RetentionGrowthRatio    decimal.Decimal
	RetentionStableRatio    decimal.Decimal
	RetentionPerMonth       int
	RetentionCap            int
	RetentionStableBonus    int
	MonthlyCap              int
	SuccessMinHolders       int
	SuccessMinMarketCap     decimal.Decimal

	// Developer score
	DeveloperBase          int
	DevSuccessBonus        int
	DevTokenAbandonPenalty int
	DevTeamAbandonPenalty  int

	// Trader score
	TraderBase           int
	PortfolioWindow      time.Duration
	PortfolioBonus3x     int
	PortfolioBonus2x     int
	PortfolioBonus15x    int
	FlashSellWindow      time.Duration   // sell this close to its buy is a flash trade
	FlashAppreciation    decimal.Decimal // price multiple that marks a flash trade as pump-and-dump
	FlashMinCount        int
	FlashPenalty         int
	SnipeBuyWindow       time.Duration // buy this close to coin creation is a snipe
	SnipeSellWindow      time.Duration // sell this close to the snipe buy is a snipe-and-dump
	SnipePerTradePenalty int
	SnipePenaltyCap      int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		BreakoutThreshold:  decimal.RequireFromString("0.1"),
		DailyVolumeCap:     decimal.NewFromInt(100),
		DevDumpGrace:       24 * time.Hour,
		DevDumpMaxAge:      90 * 24 * time.Hour,
		DevDumpMinPercent:  decimal.NewFromInt(1),
		DevDumpPenalty:     100,
		AbandonMaxAge:      30 * 24 * time.Hour,
		AbandonQuietAge:    7 * 24 * time.Hour,
		AbandonMinTrades:   20,
		AbandonSellRatio:   decimal.RequireFromString("0.7"),
		AbandonPenalty:     200,
		PumpBreakouts:      12,
		PumpVolumeRatio:    decimal.RequireFromString("1.5"),
		DumpDropRatio:      decimal.RequireFromString("0.5"),
		PumpAndDumpPenalty: 100,

		BiweeklyInterval: 14 * 24 * time.Hour,
		RankMajority:     decimal.RequireFromString("0.5"),
		Rank5Bonus:       50,
		Rank4Bonus:       30,
		Rank3Bonus:       20,
		BiweeklyCap:      50,

		FairTradingMaxBreakouts: 6,
		FairTradingMinVolume:    decimal.NewFromInt(15),
		FairTradingBonus:        50,
		PriceGrowthMinRatio:     decimal.RequireFromString("1.5"),
		PriceGrowthBonus:        50,
		RetentionGrowthRatio:    decimal.RequireFromString("1.1"),
		RetentionStableRatio:    decimal.RequireFromString("0.9"),
		RetentionPerMonth:       10,
		RetentionCap:            100,
		RetentionStableBonus:    20,
		MonthlyCap:              300,
		SuccessMinHolders:       500,
		SuccessMinMarketCap:     decimal.NewFromInt(500_000),

		DeveloperBase:          150,
		DevSuccessBonus:        100,
		DevTokenAbandonPenalty: 150,
		DevTeamAbandonPenalty:  100,

		TraderBase:           150,
		PortfolioWindow:      30 * 24 * time.Hour,
		PortfolioBonus3x:     100,
		PortfolioBonus2x:     50,
		PortfolioBonus15x:    25,
		FlashSellWindow:      2 * time.Hour,
		FlashAppreciation:    decimal.NewFromInt(2),
		FlashMinCount:        2,
		FlashPenalty:         100,
		SnipeBuyWindow:       2 * time.Hour,
		SnipeSellWindow:      4 * time.Hour,
		SnipePerTradePenalty: 25,
		SnipePenaltyCap:      100,
	}
}

// clampScore enforces the non-negative score invariant.
func clampScore(score, delta int) int {
	next := score + delta
	if next < 0 {
		return 0
	}
	return next
}
