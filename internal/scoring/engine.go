package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solana-drc/internal/domain"
	"solana-drc/internal/observability"
	"solana-drc/internal/storage"
)

// Engine drives the periodic reputation recalculations over the stores.
// One pass visits every coin, developer, and trader; per-entity errors are
// logged and do not stop the pass.
type Engine struct {
	coins    storage.CoinStore
	trades   storage.TradeStore
	holdings storage.HoldingsStore
	scores   storage.ScoreStore
	history  storage.ScoreHistoryStore

	cfg Config
	log *zap.Logger
	now func() time.Time
}

// NewEngine creates a scoring engine over the given stores.
func NewEngine(
	coins storage.CoinStore,
	trades storage.TradeStore,
	holdings storage.HoldingsStore,
	scores storage.ScoreStore,
	history storage.ScoreHistoryStore,
	cfg Config,
	log *zap.Logger,
) *Engine {
	return &Engine{
		coins:    coins,
		trades:   trades,
		holdings: holdings,
		scores:   scores,
		history:  history,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Run executes a pass immediately and then on every tick until the context
// is canceled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		e.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce recalculates every coin, developer, and trader score once.
func (e *Engine) RunOnce(ctx context.Context) {
	start := e.now()

	addresses, err := e.coins.ListAddresses(ctx)
	if err != nil {
		e.log.Error("list coins", zap.Error(err))
	}
	for _, addr := range addresses {
		if err := e.RecalculateCoin(ctx, addr); err != nil {
			e.log.Error("recalculate coin score", zap.String("coin", addr), zap.Error(err))
			continue
		}
		observability.RecordScoreRecalculation(domain.ScoreEntityCoin)
	}

	creators, err := e.coins.ListCreators(ctx)
	if err != nil {
		e.log.Error("list creators", zap.Error(err))
	}
	for _, creator := range creators {
		if err := e.RecalculateDeveloper(ctx, creator); err != nil {
			e.log.Error("recalculate developer score", zap.String("developer", creator), zap.Error(err))
			continue
		}
		observability.RecordScoreRecalculation(domain.ScoreEntityDeveloper)
	}

	traders, err := e.trades.ListTraders(ctx)
	if err != nil {
		e.log.Error("list traders", zap.Error(err))
	}
	for _, trader := range traders {
		if err := e.RecalculateTrader(ctx, trader); err != nil {
			e.log.Error("recalculate trader score", zap.String("trader", trader), zap.Error(err))
			continue
		}
		observability.RecordScoreRecalculation(domain.ScoreEntityTrader)
	}

	elapsed := e.now().Sub(start)
	observability.RecordScorePass("ok", elapsed.Seconds())
	observability.DefaultMetrics.LastSuccessfulScorePass.Set(float64(e.now().Unix()))

	e.log.Info("scoring pass finished",
		zap.Int("coins", len(addresses)),
		zap.Int("developers", len(creators)),
		zap.Int("traders", len(traders)),
		zap.Duration("elapsed", elapsed))
}

// RecalculateCoin runs the due cadences for one coin and persists the
// result. A cadence whose period has not elapsed is a no-op.
func (e *Engine) RecalculateCoin(ctx context.Context, address string) error {
	coin, err := e.coins.Get(ctx, address)
	if err != nil {
		return fmt.Errorf("get coin: %w", err)
	}

	s, err := e.scores.GetOrCreateCoinScore(ctx, address)
	if err != nil {
		return fmt.Errorf("get coin score: %w", err)
	}

	in, err := e.assembleCoinInputs(ctx, coin)
	if err != nil {
		return err
	}

	before := s.Score
	delta := 0
	ran := false

	if d, ok := DailyCheckup(e.cfg, s, in); ok {
		delta += d
		ran = true
	}
	if d, ok := BiweeklyCheckup(e.cfg, s, in); ok {
		delta += d
		ran = true
	}
	if d, ok := MonthlyRecalculation(e.cfg, s, in); ok {
		delta += d
		ran = true
	}
	if !ran {
		return nil
	}

	s.Score = clampScore(s.Score, delta)

	if err := e.scores.SaveCoinScore(ctx, s); err != nil {
		return fmt.Errorf("save coin score: %w", err)
	}
	if err := e.coins.SetScore(ctx, address, s.Score); err != nil {
		return fmt.Errorf("sync coin score: %w", err)
	}

	if s.Score != before {
		e.appendSnapshot(ctx, domain.ScoreEntityCoin, address, s.Score)
	}
	return nil
}

func (e *Engine) assembleCoinInputs(ctx context.Context, coin *domain.Coin) (CoinInputs, error) {
	now := e.now()

	holders, err := e.holdings.CountHolders(ctx, coin.Address)
	if err != nil {
		return CoinInputs{}, fmt.Errorf("count holders: %w", err)
	}
	totalHeld, err := e.holdings.TotalHeld(ctx, coin.Address)
	if err != nil {
		return CoinInputs{}, fmt.Errorf("total held: %w", err)
	}

	totalTrades, err := e.trades.CountByCoin(ctx, coin.Address)
	if err != nil {
		return CoinInputs{}, fmt.Errorf("count trades: %w", err)
	}
	sellTrades, err := e.trades.CountByCoinAndType(ctx, coin.Address, domain.TradeSell)
	if err != nil {
		return CoinInputs{}, fmt.Errorf("count sells: %w", err)
	}
	volume30d, err := e.trades.VolumeSince(ctx, coin.Address, now.Add(-30*24*time.Hour))
	if err != nil {
		return CoinInputs{}, fmt.Errorf("volume 30d: %w", err)
	}
	lifetimeVolume, err := e.trades.VolumeSince(ctx, coin.Address, time.Time{})
	if err != nil {
		return CoinInputs{}, fmt.Errorf("lifetime volume: %w", err)
	}

	in := CoinInputs{
		Now:            now,
		CoinCreatedAt:  coin.CreatedAt,
		CurrentPrice:   coin.CurrentPrice,
		HoldersCount:   holders,
		TotalTrades:    totalTrades,
		SellTrades:     sellTrades,
		Volume30d:      volume30d,
		LifetimeVolume: lifetimeVolume,
		Liquidity:      coin.Liquidity(totalHeld),
		MarketCap:      coin.MarketCap(totalHeld),
	}

	creatorPos, err := e.holdings.Get(ctx, coin.Creator, coin.Address)
	switch {
	case err == nil:
		in.CreatorHolds = creatorPos.AmountHeld.IsPositive()
		in.CreatorPercent = creatorPos.HeldPercentage(coin.TotalSupply)
	case errors.Is(err, storage.ErrNotFound):
		// never held
	default:
		return CoinInputs{}, fmt.Errorf("creator holding: %w", err)
	}

	in.HolderRanks, err = e.holderRanks(ctx, coin.Address)
	if err != nil {
		return CoinInputs{}, err
	}
	return in, nil
}

// holderRanks collects the trader ranks of current holders. Holders that
// were never scored as traders are skipped.
func (e *Engine) holderRanks(ctx context.Context, coin string) ([]int, error) {
	positions, err := e.holdings.ListByCoin(ctx, coin)
	if err != nil {
		return nil, fmt.Errorf("list holders: %w", err)
	}

	ranks := make([]int, 0, len(positions))
	for _, pos := range positions {
		ts, err := e.scores.GetTraderScore(ctx, pos.User)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("trader score for holder: %w", err)
		}
		ranks = append(ranks, ts.Rank())
	}
	return ranks, nil
}

// RecalculateDeveloper recomputes one developer score from the flags of
// the coins they created.
func (e *Engine) RecalculateDeveloper(ctx context.Context, developer string) error {
	coins, err := e.coins.ListByCreator(ctx, developer)
	if err != nil {
		return fmt.Errorf("list coins by creator: %w", err)
	}

	addresses := make([]string, len(coins))
	for i, c := range coins {
		addresses[i] = c.Address
	}
	successful, tokenAbandoned, teamAbandoned, err := e.scores.FlagCounts(ctx, addresses)
	if err != nil {
		return fmt.Errorf("flag counts: %w", err)
	}

	s, err := e.scores.GetOrCreateDeveloperScore(ctx, developer)
	if err != nil {
		return fmt.Errorf("get developer score: %w", err)
	}

	before := s.Score
	RecalculateDeveloper(e.cfg, s, DeveloperInputs{
		CoinsCreated:   len(coins),
		Successful:     successful,
		TokenAbandoned: tokenAbandoned,
		TeamAbandoned:  teamAbandoned,
	})

	if err := e.scores.SaveDeveloperScore(ctx, s); err != nil {
		return fmt.Errorf("save developer score: %w", err)
	}
	if s.Score != before {
		e.appendSnapshot(ctx, domain.ScoreEntityDeveloper, developer, s.Score)
	}
	return nil
}

// RecalculateTrader recomputes one trader score from their trade history
// and current portfolio.
func (e *Engine) RecalculateTrader(ctx context.Context, trader string) error {
	now := e.now()

	trades, err := e.trades.ListByUser(ctx, trader)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	value, err := e.portfolioValue(ctx, trader)
	if err != nil {
		return err
	}
	spend, err := e.trades.BuySpendSince(ctx, trader, now.Add(-e.cfg.PortfolioWindow))
	if err != nil {
		return fmt.Errorf("buy spend: %w", err)
	}

	createdAt := map[string]time.Time{}
	for _, t := range trades {
		if _, seen := createdAt[t.Coin]; seen {
			continue
		}
		coin, err := e.coins.Get(ctx, t.Coin)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get traded coin: %w", err)
		}
		createdAt[t.Coin] = coin.CreatedAt
	}

	s, err := e.scores.GetOrCreateTraderScore(ctx, trader)
	if err != nil {
		return fmt.Errorf("get trader score: %w", err)
	}

	before := s.Score
	RecalculateTrader(e.cfg, s, TraderInputs{
		Now:           now,
		Trades:        trades,
		HoldingsValue: value,
		BuySpend30d:   spend,
		CoinCreatedAt: createdAt,
	})

	if err := e.scores.SaveTraderScore(ctx, s); err != nil {
		return fmt.Errorf("save trader score: %w", err)
	}
	if s.Score != before {
		e.appendSnapshot(ctx, domain.ScoreEntityTrader, trader, s.Score)
	}
	return nil
}

// portfolioValue prices the trader's positive holdings at current coin
// prices.
func (e *Engine) portfolioValue(ctx context.Context, trader string) (decimal.Decimal, error) {
	positions, err := e.holdings.ListByUser(ctx, trader)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list holdings: %w", err)
	}

	value := decimal.Zero
	for _, pos := range positions {
		coin, err := e.coins.Get(ctx, pos.Coin)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("get held coin: %w", err)
		}
		value = value.Add(pos.AmountHeld.Mul(coin.CurrentPrice))
	}
	return value, nil
}

// appendSnapshot records an effective score change. History is best
// effort; a failed append is logged and the recalculation still counts.
func (e *Engine) appendSnapshot(ctx context.Context, entityType, entityID string, score int) {
	snap := &domain.ScoreSnapshot{
		EntityType: entityType,
		EntityID:   entityID,
		Score:      score,
		RecordedAt: e.now(),
	}
	observability.RecordScoreChange(entityType)
	if err := e.history.Append(ctx, snap); err != nil {
		e.log.Warn("append score snapshot",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
