package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
)

// CoinInputs is the read-only market snapshot a coin recalculation runs
// against. The engine assembles it from the stores; the cadence functions
// below stay pure over (state, inputs).
type CoinInputs struct {
	Now            time.Time
	CoinCreatedAt  time.Time
	CurrentPrice   decimal.Decimal
	HoldersCount   int
	TotalTrades    int64
	SellTrades     int64
	Volume30d      decimal.Decimal
	LifetimeVolume decimal.Decimal
	Liquidity      decimal.Decimal
	MarketCap      decimal.Decimal

	// Creator position, for the dev-dump check.
	CreatorHolds   bool
	CreatorPercent decimal.Decimal

	// Trader ranks of current holders that have a trader score.
	HolderRanks []int
}

// age returns the coin age at the time of the snapshot.
func (in CoinInputs) age() time.Duration {
	return in.Now.Sub(in.CoinCreatedAt)
}

// DailyCheckup refreshes the rolling metrics, runs the abandonment and
// fraud checks, and applies the volume ratchet bonus. Mutates s in place
// and returns the score delta. ran is false when the day already ran;
// the state is then untouched.
func DailyCheckup(cfg Config, s *domain.CoinDRCScore, in CoinInputs) (delta int, ran bool) {
	if !s.LastDailyUpdate.IsZero() && sameDay(s.LastDailyUpdate, in.Now) {
		return 0, false
	}

	s.AgeInHours = int(in.age().Hours())
	s.HoldersCount = in.HoldersCount

	if s.LastPrice.IsPositive() {
		change := in.CurrentPrice.Sub(s.LastPrice).Div(s.LastPrice).Abs()
		if change.GreaterThan(cfg.BreakoutThreshold) {
			s.PriceBreakoutsPerMonth++
		}
	}
	s.LastPrice = in.CurrentPrice

	delta += checkDevDumping(cfg, s, in)
	delta += checkTokenAbandonment(cfg, s, in)
	delta += checkPumpAndDump(cfg, s, in)
	delta += applyVolumeRatchet(cfg, s, in)

	s.LastDailyUpdate = in.Now
	return delta, true
}

// checkDevDumping flags team abandonment when the creator's position has
// shrunk below the minimum share of supply. Fires once; inside the grace
// window and after the age cutoff nothing happens.
func checkDevDumping(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if s.TeamAbandonment {
		return 0
	}
	age := in.age()
	if age < cfg.DevDumpGrace || age >= cfg.DevDumpMaxAge {
		return 0
	}

	if !in.CreatorHolds || in.CreatorPercent.LessThan(cfg.DevDumpMinPercent) {
		s.TeamAbandonment = true
		return -cfg.DevDumpPenalty
	}
	return 0
}

// checkTokenAbandonment flags a coin whose trading has died out or tipped
// into a dump. Fires once, only within the first month.
func checkTokenAbandonment(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if s.TokenAbandonment || in.age() >= cfg.AbandonMaxAge {
		return 0
	}

	switch {
	case in.TotalTrades < cfg.AbandonMinTrades && in.age() > cfg.AbandonQuietAge:
		s.TokenAbandonment = true
	case in.TotalTrades >= cfg.AbandonMinTrades:
		sellRatio := decimal.NewFromInt(in.SellTrades).Div(decimal.NewFromInt(in.TotalTrades))
		if sellRatio.GreaterThan(cfg.AbandonSellRatio) {
			s.TokenAbandonment = true
		}
	}

	if s.TokenAbandonment {
		return -cfg.AbandonPenalty
	}
	return 0
}

// checkPumpAndDump flags a coin showing both a pump signal (breakout burst
// or a volume spike over the prior max) and a dump signal (liquidity or
// holder collapse from the monthly baseline). Fires once, only within the
// first month.
func checkPumpAndDump(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if s.PumpAndDumpActivity || in.age() >= cfg.AbandonMaxAge {
		return 0
	}

	pump := s.PriceBreakoutsPerMonth > cfg.PumpBreakouts
	if !pump && s.MaxVolumeRecorded.IsPositive() {
		pump = in.Volume30d.GreaterThan(s.MaxVolumeRecorded.Mul(cfg.PumpVolumeRatio))
	}
	if !pump {
		return 0
	}

	dump := false
	if s.LastRecordedPrice.IsPositive() {
		floor := s.LastRecordedPrice.Mul(decimal.NewFromInt(1).Sub(cfg.DumpDropRatio))
		dump = in.Liquidity.LessThan(floor)
	}
	if !dump && s.LastRecordedHolders > 0 {
		remaining := decimal.NewFromInt(int64(in.HoldersCount)).
			Div(decimal.NewFromInt(int64(s.LastRecordedHolders)))
		dump = remaining.LessThan(decimal.NewFromInt(1).Sub(cfg.DumpDropRatio))
	}
	if !dump {
		return 0
	}

	s.PumpAndDumpActivity = true
	return -cfg.PumpAndDumpPenalty
}

// applyVolumeRatchet awards the difference each time lifetime volume,
// capped, advances past the recorded maximum. Once the cap is reached the
// bonus is exhausted for good.
func applyVolumeRatchet(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if !s.MaxVolumeRecorded.LessThan(cfg.DailyVolumeCap) {
		return 0
	}

	capped := decimal.Min(in.LifetimeVolume, cfg.DailyVolumeCap)
	if !capped.GreaterThan(s.MaxVolumeRecorded) {
		return 0
	}

	bonus := int(capped.Sub(s.MaxVolumeRecorded).IntPart())
	s.MaxVolumeRecorded = capped
	return bonus
}

// BiweeklyCheckup awards the holder-quality bonus from the rank
// distribution of scored holders. The single highest qualifying tier wins
// and the total is capped per period.
func BiweeklyCheckup(cfg Config, s *domain.CoinDRCScore, in CoinInputs) (delta int, ran bool) {
	// First pass only anchors the cadence; the first bonus lands a full
	// interval after the score record is created.
	if s.LastBiweeklyUpdate.IsZero() {
		s.LastBiweeklyUpdate = in.Now
		return 0, true
	}
	if in.Now.Sub(s.LastBiweeklyUpdate) < cfg.BiweeklyInterval {
		return 0, false
	}

	bonus := holderRankBonus(cfg, in.HolderRanks)
	if bonus > cfg.BiweeklyCap {
		bonus = cfg.BiweeklyCap
	}

	s.LastBiweeklyUpdate = in.Now
	return bonus, true
}

func holderRankBonus(cfg Config, ranks []int) int {
	// Shares are taken over rank 3-5 holders only; low-rank holders do not
	// dilute the quality signal.
	counts := map[int]int{}
	ranked := 0
	for _, r := range ranks {
		if r >= 3 {
			counts[r]++
			ranked++
		}
	}
	if ranked == 0 {
		return 0
	}
	total := decimal.NewFromInt(int64(ranked))

	share := func(rank int) decimal.Decimal {
		return decimal.NewFromInt(int64(counts[rank])).Div(total)
	}

	switch {
	case share(5).GreaterThan(cfg.RankMajority):
		return cfg.Rank5Bonus
	case share(4).GreaterThan(cfg.RankMajority):
		return cfg.Rank4Bonus
	case share(3).GreaterThan(cfg.RankMajority):
		return cfg.Rank3Bonus
	}
	return 0
}

// MonthlyRecalculation sums the fair-trading, price-growth, and retention
// bonuses, evaluates the successful-token promotion, and resets the
// monthly counters. Gated on a calendar month change.
func MonthlyRecalculation(cfg Config, s *domain.CoinDRCScore, in CoinInputs) (delta int, ran bool) {
	// First pass only anchors the cadence; bonuses and baseline resets
	// start with the first full calendar-month rollover.
	if s.LastMonthlyUpdate.IsZero() {
		s.LastMonthlyUpdate = in.Now
		return 0, true
	}
	if sameMonth(s.LastMonthlyUpdate, in.Now) {
		return 0, false
	}

	bonus := fairTradingBonus(cfg, s, in) +
		priceGrowthBonus(cfg, s, in) +
		retentionBonus(cfg, s, in)
	if bonus > cfg.MonthlyCap {
		bonus = cfg.MonthlyCap
	}

	if !s.SuccessfulToken &&
		!s.TeamAbandonment && !s.TokenAbandonment &&
		in.HoldersCount >= cfg.SuccessMinHolders &&
		!in.MarketCap.LessThan(cfg.SuccessMinMarketCap) {
		s.SuccessfulToken = true
	}

	// New month baselines.
	s.PriceBreakoutsPerMonth = 0
	s.LastRecordedPrice = in.Liquidity
	s.LastRecordedHolders = in.HoldersCount

	s.LastMonthlyUpdate = in.Now
	return bonus, true
}

func fairTradingBonus(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if s.PriceBreakoutsPerMonth <= cfg.FairTradingMaxBreakouts &&
		!in.Volume30d.LessThan(cfg.FairTradingMinVolume) {
		return cfg.FairTradingBonus
	}
	return 0
}

func priceGrowthBonus(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if !s.LastRecordedPrice.IsPositive() {
		return 0
	}
	ratio := in.Liquidity.Div(s.LastRecordedPrice)
	if !ratio.LessThan(cfg.PriceGrowthMinRatio) {
		return cfg.PriceGrowthBonus
	}
	return 0
}

func retentionBonus(cfg Config, s *domain.CoinDRCScore, in CoinInputs) int {
	if s.LastRecordedHolders <= 0 {
		return 0
	}

	rate := decimal.NewFromInt(int64(in.HoldersCount)).
		Div(decimal.NewFromInt(int64(s.LastRecordedHolders)))

	switch {
	case !rate.LessThan(cfg.RetentionGrowthRatio):
		s.HolderRetentionMonths++
		bonus := s.HolderRetentionMonths * cfg.RetentionPerMonth
		if bonus > cfg.RetentionCap {
			bonus = cfg.RetentionCap
		}
		return bonus
	case !rate.LessThan(cfg.RetentionStableRatio):
		return cfg.RetentionStableBonus
	}
	return 0
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
