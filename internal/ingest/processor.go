package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solana-drc/internal/broadcast"
	"solana-drc/internal/decoder"
	"solana-drc/internal/domain"
	"solana-drc/internal/enricher"
	"solana-drc/internal/observability"
	"solana-drc/internal/solana"
	"solana-drc/internal/storage"
)

// Instruction names emitted by the monitored program.
const (
	InstructionCreateToken = "CreateToken"
	InstructionBuyToken    = "BuyToken"
	InstructionSellToken   = "SellToken"
)

// Defaults applied to newly observed coins until richer market data
// arrives.
var (
	defaultTotalSupply  = decimal.NewFromInt(1_000_000)
	defaultInitialPrice = decimal.NewFromInt(1)
)

const enrichTimeout = 10 * time.Second

// Processor turns normalized log events into repository writes and
// broadcasts. Processing is synchronous per event; a failure drops the
// event, never the stream.
type Processor struct {
	router   *decoder.Router
	users    storage.UserStore
	coins    storage.CoinStore
	trades   storage.TradeStore
	holdings storage.HoldingsStore
	fetcher  *enricher.Fetcher
	bc       broadcast.Broadcaster
	log      *zap.Logger
	now      func() time.Time
}

// NewProcessor wires the event router with the program's instruction
// schemas.
func NewProcessor(
	users storage.UserStore,
	coins storage.CoinStore,
	trades storage.TradeStore,
	holdings storage.HoldingsStore,
	fetcher *enricher.Fetcher,
	bc broadcast.Broadcaster,
	log *zap.Logger,
) *Processor {
	router := decoder.NewRouter()
	router.Register(InstructionCreateToken, decoder.TokenCreatedSchema())
	router.Register(InstructionBuyToken, decoder.TokenTransferSchema())
	router.Register(InstructionSellToken, decoder.TokenTransferSchema())

	return &Processor{
		router:   router,
		users:    users,
		coins:    coins,
		trades:   trades,
		holdings: holdings,
		fetcher:  fetcher,
		bc:       bc,
		log:      log,
		now:      time.Now,
	}
}

// Handle implements Handler.
func (p *Processor) Handle(ctx context.Context, ev *solana.RawLogEvent) {
	observability.RecordMessageReceived()

	instruction, event, ok := p.router.Dispatch(ev.Logs)
	if !ok {
		observability.RecordEventSkipped("no_event")
		return
	}
	observability.RecordEventDecoded(instruction)

	start := time.Now()
	switch instruction {
	case InstructionCreateToken:
		p.handleCoinCreation(ctx, ev.Signature, event)
		observability.DefaultMetrics.EventProcessingLatency.
			WithLabelValues("coin_creation").Observe(time.Since(start).Seconds())
	default:
		p.handleTrade(ctx, ev.Signature, event)
		observability.DefaultMetrics.EventProcessingLatency.
			WithLabelValues("trade").Observe(time.Since(start).Seconds())
	}
}

func (p *Processor) handleCoinCreation(ctx context.Context, signature string, event decoder.Event) {
	mint, _ := event.String("mint_address")
	creator, _ := event.String("creator")
	name, _ := event.String("token_name")
	symbol, _ := event.String("token_symbol")
	uri, _ := event.String("token_uri")
	decimals, _ := event.Uint8("decimals")

	if !decoder.IsOnCurve(creator) {
		p.log.Warn("creator pubkey off curve, dropping event",
			zap.String("signature", signature), zap.String("creator", creator))
		observability.RecordEventSkipped("off_curve_creator")
		return
	}

	if _, err := p.users.Get(ctx, creator); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("creator not registered, dropping event",
				zap.String("signature", signature), zap.String("creator", creator))
			observability.RecordEventSkipped("unknown_user")
			return
		}
		p.logStoreError("coin_creation", "get creator", signature, err)
		return
	}

	exists, err := p.coins.Exists(ctx, mint)
	if err != nil {
		p.logStoreError("coin_creation", "coin exists", signature, err)
		return
	}
	if exists {
		observability.RecordEventSkipped("duplicate_coin")
		return
	}

	processed, err := p.trades.Exists(ctx, signature)
	if err != nil {
		p.logStoreError("coin_creation", "trade exists", signature, err)
		return
	}
	if processed {
		observability.RecordEventSkipped("duplicate_signature")
		return
	}

	coin := &domain.Coin{
		Address:      mint,
		Name:         name,
		Ticker:       symbol,
		Creator:      creator,
		TotalSupply:  defaultTotalSupply,
		CurrentPrice: defaultInitialPrice,
		Decimals:     decimals,
		CreatedAt:    p.now(),
	}
	p.enrichCoin(ctx, coin, uri)
	coin.Normalize()

	err = storage.Retry(ctx, func() error { return p.coins.Insert(ctx, coin) })
	if errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordEventSkipped("duplicate_coin")
		return
	}
	if err != nil {
		p.logStoreError("coin_creation", "insert coin", signature, err)
		return
	}

	trade := &domain.Trade{
		TransactionHash: signature,
		User:            creator,
		Coin:            mint,
		TradeType:       domain.TradeCoinCreate,
		CoinAmount:      coin.TotalSupply,
		SolAmount:       decimal.Zero,
		CreatedAt:       coin.CreatedAt,
	}
	if err := p.recordTrade(ctx, trade); err != nil {
		p.logStoreError("coin_creation", "record trade", signature, err)
		return
	}

	observability.RecordEventStored("coin_creation")
	observability.DefaultMetrics.LastSuccessfulIngestion.Set(float64(p.now().Unix()))

	if err := p.bc.Publish(ctx, broadcast.GroupCoins, coin); err != nil {
		p.log.Warn("broadcast coin failed", zap.String("coin", mint), zap.Error(err))
	}
	p.log.Info("coin created",
		zap.String("coin", mint),
		zap.String("ticker", coin.Ticker),
		zap.String("creator", creator))
}

func (p *Processor) handleTrade(ctx context.Context, signature string, event decoder.Event) {
	code, _ := event.Uint8("transfer_type")
	mint, _ := event.String("mint_address")
	user, _ := event.String("user")
	solRaw, _ := event.Uint64("sol_amount")
	coinRaw, _ := event.Uint64("coin_amount")

	tradeType, err := domain.TradeTypeFromCode(code)
	if err != nil {
		p.log.Error("invalid trade event",
			zap.String("signature", signature), zap.Error(err))
		observability.RecordEventError("trade", "validation")
		return
	}

	processed, err := p.trades.Exists(ctx, signature)
	if err != nil {
		p.logStoreError("trade", "trade exists", signature, err)
		return
	}
	if processed {
		observability.RecordEventSkipped("duplicate_signature")
		return
	}

	coin, err := p.coins.Get(ctx, mint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("trade for unknown coin, dropping event",
				zap.String("signature", signature), zap.String("coin", mint))
			observability.RecordEventSkipped("unknown_coin")
			return
		}
		p.logStoreError("trade", "get coin", signature, err)
		return
	}

	if _, err := p.users.Get(ctx, user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("trade by unregistered user, dropping event",
				zap.String("signature", signature), zap.String("user", user))
			observability.RecordEventSkipped("unknown_user")
			return
		}
		p.logStoreError("trade", "get user", signature, err)
		return
	}

	trade := &domain.Trade{
		TransactionHash: signature,
		User:            user,
		Coin:            mint,
		TradeType:       tradeType,
		CoinAmount:      decoder.ScaleAmount(coinRaw, coin.Decimals),
		SolAmount:       decoder.ScaleAmount(solRaw, coin.Decimals),
		CreatedAt:       p.now(),
	}
	if err := p.recordTrade(ctx, trade); err != nil {
		p.logStoreError("trade", "record trade", signature, err)
		return
	}

	if unitPrice := trade.UnitPrice(); unitPrice.IsPositive() {
		err := storage.Retry(ctx, func() error {
			return p.coins.UpdatePrice(ctx, mint, unitPrice)
		})
		if err != nil {
			p.logStoreError("trade", "update price", signature, err)
		}
	}

	observability.RecordEventStored("trade")
	observability.DefaultMetrics.LastSuccessfulIngestion.Set(float64(p.now().Unix()))

	if err := p.bc.Publish(ctx, broadcast.GroupTrades, trade); err != nil {
		p.log.Warn("broadcast trade failed", zap.String("coin", mint), zap.Error(err))
	}
	p.log.Info("trade recorded",
		zap.String("signature", signature),
		zap.String("coin", mint),
		zap.String("user", user),
		zap.String("type", tradeType.String()))
}

// recordTrade persists the trade and applies the holdings delta. Duplicate
// signatures are treated as already processed.
func (p *Processor) recordTrade(ctx context.Context, trade *domain.Trade) error {
	err := storage.Retry(ctx, func() error { return p.trades.Insert(ctx, trade) })
	if errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordEventSkipped("duplicate_signature")
		return nil
	}
	if err != nil {
		return err
	}

	delta := trade.CoinAmount
	if trade.TradeType == domain.TradeSell {
		delta = delta.Neg()
	}
	return storage.Retry(ctx, func() error {
		return p.holdings.Apply(ctx, trade.User, trade.Coin, delta)
	})
}

// enrichCoin resolves off-chain metadata into the coin's optional fields.
// Failures leave the on-chain fields as they are.
func (p *Processor) enrichCoin(ctx context.Context, coin *domain.Coin, uri string) {
	if p.fetcher == nil || uri == "" {
		return
	}

	enrichCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	start := time.Now()
	base := map[string]interface{}{
		"address": coin.Address,
		"name":    coin.Name,
		"ticker":  coin.Ticker,
	}
	enriched := p.fetcher.Enrich(enrichCtx, uri, base)
	observability.DefaultMetrics.EnrichmentLatency.Observe(time.Since(start).Seconds())

	if len(enriched) == len(base) {
		observability.RecordMetadataFetch("miss")
		return
	}
	observability.RecordMetadataFetch("hit")

	stringField := func(key string) string {
		if v, ok := enriched[key].(string); ok {
			return v
		}
		return ""
	}
	coin.ImageURL = stringField("image")
	coin.Description = stringField("description")
	coin.Discord = stringField("discord")
	coin.Website = stringField("website")
	coin.Twitter = stringField("twitter")
}

func (p *Processor) logStoreError(eventType, op, signature string, err error) {
	p.log.Error("event processing failed",
		zap.String("event_type", eventType),
		zap.String("operation", op),
		zap.String("signature", signature),
		zap.Error(err))
	observability.RecordEventError(eventType, "storage")
}
