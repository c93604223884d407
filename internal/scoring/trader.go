package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
)

// TraderInputs is the snapshot a trader recalculation runs against.
// Trades are ordered by created_at ASC across all coins.
type TraderInputs struct {
	Now           time.Time
	Trades        []*domain.Trade
	HoldingsValue decimal.Decimal // current holdings priced at current coin prices
	BuySpend30d   decimal.Decimal // SOL spent on buys in the portfolio window
	CoinCreatedAt map[string]time.Time
}

// RecalculateTrader recomputes the trader score from trade history and the
// current portfolio. The behavioral counters on s are refreshed to match.
func RecalculateTrader(cfg Config, s *domain.TraderScore, in TraderInputs) {
	flashCount := countFlashPumpDumps(cfg, in.Trades)
	snipeCount := countSnipeAndDumps(cfg, in.Trades, in.CoinCreatedAt)

	s.QuickPumpAndDumpsCount = flashCount
	s.SnipingAndDumpsCount = snipeCount

	score := cfg.TraderBase + portfolioGrowthBonus(cfg, in)

	if flashCount >= cfg.FlashMinCount {
		score -= cfg.FlashPenalty
	}

	snipePenalty := snipeCount * cfg.SnipePerTradePenalty
	if snipePenalty > cfg.SnipePenaltyCap {
		snipePenalty = cfg.SnipePenaltyCap
	}
	score -= snipePenalty

	s.Score = clampScore(score, 0)
}

func portfolioGrowthBonus(cfg Config, in TraderInputs) int {
	if !in.BuySpend30d.IsPositive() {
		return 0
	}
	ratio := in.HoldingsValue.Div(in.BuySpend30d)

	switch {
	case !ratio.LessThan(decimal.NewFromInt(3)):
		return cfg.PortfolioBonus3x
	case !ratio.LessThan(decimal.NewFromInt(2)):
		return cfg.PortfolioBonus2x
	case !ratio.LessThan(decimal.RequireFromString("1.5")):
		return cfg.PortfolioBonus15x
	}
	return 0
}

// countFlashPumpDumps counts sells that close out the latest prior buy of
// the same coin within the flash window at a price multiple above the
// appreciation threshold.
func countFlashPumpDumps(cfg Config, trades []*domain.Trade) int {
	lastBuy := map[string]*domain.Trade{}
	count := 0

	for _, t := range trades {
		switch t.TradeType {
		case domain.TradeBuy:
			lastBuy[t.Coin] = t
		case domain.TradeSell:
			buy, ok := lastBuy[t.Coin]
			if !ok {
				continue
			}
			if t.CreatedAt.Sub(buy.CreatedAt) >= cfg.FlashSellWindow {
				continue
			}
			buyPrice := buy.UnitPrice()
			if !buyPrice.IsPositive() {
				continue
			}
			if t.UnitPrice().GreaterThan(buyPrice.Mul(cfg.FlashAppreciation)) {
				count++
			}
		}
	}
	return count
}

// countSnipeAndDumps counts buys placed within the snipe window of the
// coin's creation that were flipped by a sell within the dump window. Each
// sell closes out at most one snipe buy.
func countSnipeAndDumps(cfg Config, trades []*domain.Trade, coinCreatedAt map[string]time.Time) int {
	type snipe struct {
		boughtAt time.Time
		dumped   bool
	}
	open := map[string][]*snipe{}
	count := 0

	for _, t := range trades {
		switch t.TradeType {
		case domain.TradeBuy:
			createdAt, ok := coinCreatedAt[t.Coin]
			if !ok {
				continue
			}
			if t.CreatedAt.Sub(createdAt) < cfg.SnipeBuyWindow {
				open[t.Coin] = append(open[t.Coin], &snipe{boughtAt: t.CreatedAt})
			}
		case domain.TradeSell:
			for _, sn := range open[t.Coin] {
				if sn.dumped {
					continue
				}
				held := t.CreatedAt.Sub(sn.boughtAt)
				if held >= 0 && held < cfg.SnipeSellWindow {
					sn.dumped = true
					count++
					break
				}
			}
		}
	}
	return count
}
