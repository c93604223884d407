package ingest

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solana-drc/internal/broadcast"
	"solana-drc/internal/decoder"
	"solana-drc/internal/domain"
	"solana-drc/internal/solana"
	"solana-drc/internal/storage/memory"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// encodePayload serializes field values in schema order using the same
// sequential layout the decoder expects.
func encodePayload(t *testing.T, schema decoder.Schema, values map[string]interface{}) string {
	t.Helper()

	var buf []byte
	for _, field := range schema.Fields {
		v, ok := values[field.Name]
		if !ok {
			t.Fatalf("missing value for field %s", field.Name)
		}
		switch field.Type {
		case decoder.TypeString:
			s := v.(string)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
			buf = append(buf, s...)
		case decoder.TypeU8:
			buf = append(buf, v.(uint8))
		case decoder.TypeU64:
			buf = binary.LittleEndian.AppendUint64(buf, v.(uint64))
		case decoder.TypePubkey:
			raw, err := base58.Decode(v.(string))
			if err != nil {
				t.Fatalf("decode pubkey %v: %v", v, err)
			}
			buf = append(buf, raw...)
		}
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// onCurvePubkey returns the canonical encoding of the ed25519 base point,
// a valid wallet address for the on-curve check.
func onCurvePubkey() string {
	raw := make([]byte, 32)
	raw[0] = 0x58
	for i := 1; i < 32; i++ {
		raw[i] = 0x66
	}
	return base58.Encode(raw)
}

func mintPubkey(b byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = b
	}
	return base58.Encode(raw)
}

type procFixture struct {
	users    *memory.UserStore
	coins    *memory.CoinStore
	trades   *memory.TradeStore
	holdings *memory.HoldingsStore
	bus      *broadcast.Bus
	proc     *Processor
}

func newProcFixture(t *testing.T) *procFixture {
	t.Helper()

	f := &procFixture{
		users:    memory.NewUserStore(),
		coins:    memory.NewCoinStore(),
		trades:   memory.NewTradeStore(),
		holdings: memory.NewHoldingsStore(),
		bus:      broadcast.NewBus(zap.NewNop(), 8),
	}
	t.Cleanup(f.bus.Close)

	f.proc = NewProcessor(f.users, f.coins, f.trades, f.holdings, nil, f.bus, zap.NewNop())
	f.proc.now = func() time.Time { return testNow }
	return f
}

func (f *procFixture) registerUser(t *testing.T, wallet string) {
	t.Helper()
	err := f.users.Insert(context.Background(), &domain.User{WalletAddress: wallet})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func createTokenEvent(t *testing.T, signature, mint, creator string) *solana.RawLogEvent {
	t.Helper()
	payload := encodePayload(t, decoder.TokenCreatedSchema(), map[string]interface{}{
		"token_name":   "Test Coin",
		"token_symbol": "tst",
		"token_uri":    "ipfs://QmTest",
		"mint_address": mint,
		"creator":      creator,
		"decimals":     uint8(9),
	})
	return &solana.RawLogEvent{
		Signature: signature,
		Logs: []string{
			"Program log: Instruction: CreateToken",
			"Program data: " + payload,
		},
	}
}

func transferEvent(t *testing.T, signature, mint, user string, code uint8, solRaw, coinRaw uint64) *solana.RawLogEvent {
	t.Helper()
	instruction := InstructionBuyToken
	if code == 1 {
		instruction = InstructionSellToken
	}
	payload := encodePayload(t, decoder.TokenTransferSchema(), map[string]interface{}{
		"transfer_type": code,
		"mint_address":  mint,
		"user":          user,
		"sol_amount":    solRaw,
		"coin_amount":   coinRaw,
	})
	return &solana.RawLogEvent{
		Signature: signature,
		Logs: []string{
			"Program log: Instruction: " + instruction,
			"Program data: " + payload,
		},
	}
}

func TestProcessor_CoinCreation(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)

	sub := f.bus.Subscribe(broadcast.GroupCoins)

	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))

	coin, err := f.coins.Get(ctx, mint)
	if err != nil {
		t.Fatalf("coin not stored: %v", err)
	}
	if coin.Ticker != "TST" {
		t.Fatalf("ticker = %q, want TST", coin.Ticker)
	}
	if !coin.TotalSupply.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("total supply = %s", coin.TotalSupply)
	}
	if !coin.CurrentPrice.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("current price = %s", coin.CurrentPrice)
	}

	trades, err := f.trades.ListByUser(ctx, creator)
	if err != nil {
		t.Fatalf("list trades: %v", err)
	}
	if len(trades) != 1 || trades[0].TradeType != domain.TradeCoinCreate {
		t.Fatalf("trades = %+v", trades)
	}

	holding, err := f.holdings.Get(ctx, creator, mint)
	if err != nil {
		t.Fatalf("holding not stored: %v", err)
	}
	if !holding.AmountHeld.Equal(coin.TotalSupply) {
		t.Fatalf("creator holds %s, want %s", holding.AmountHeld, coin.TotalSupply)
	}

	select {
	case <-sub.C():
	default:
		t.Fatal("coin creation was not broadcast")
	}
}

func TestProcessor_CoinCreation_UnknownCreator(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	mint := mintPubkey(1)
	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, onCurvePubkey()))

	if exists, _ := f.coins.Exists(ctx, mint); exists {
		t.Fatal("coin must not be stored for an unregistered creator")
	}
}

func TestProcessor_CoinCreation_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)

	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))
	f.proc.Handle(ctx, createTokenEvent(t, "sig2", mint, creator))

	trades, _ := f.trades.ListByUser(ctx, creator)
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
}

func TestProcessor_Trade(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)
	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))

	sub := f.bus.Subscribe(broadcast.GroupTrades)

	// 2 SOL for 1 token at 9 decimals.
	f.proc.Handle(ctx, transferEvent(t, "sig2", mint, creator, 0, 2_000_000_000, 1_000_000_000))

	trades, _ := f.trades.ListByUser(ctx, creator)
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(trades))
	}
	var buy *domain.Trade
	for _, tr := range trades {
		if tr.TradeType == domain.TradeBuy {
			buy = tr
		}
	}
	if buy == nil {
		t.Fatal("buy trade not stored")
	}
	if !buy.SolAmount.Equal(decimal.NewFromInt(2)) || !buy.CoinAmount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("amounts = %s SOL / %s coin", buy.SolAmount, buy.CoinAmount)
	}

	coin, _ := f.coins.Get(ctx, mint)
	if !coin.CurrentPrice.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("price = %s, want 2", coin.CurrentPrice)
	}

	holding, _ := f.holdings.Get(ctx, creator, mint)
	want := decimal.NewFromInt(1_000_001)
	if !holding.AmountHeld.Equal(want) {
		t.Fatalf("holding = %s, want %s", holding.AmountHeld, want)
	}

	select {
	case <-sub.C():
	default:
		t.Fatal("trade was not broadcast")
	}
}

func TestProcessor_Trade_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)
	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))

	ev := transferEvent(t, "sig2", mint, creator, 0, 2_000_000_000, 1_000_000_000)
	f.proc.Handle(ctx, ev)
	f.proc.Handle(ctx, ev)

	trades, _ := f.trades.ListByUser(ctx, creator)
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want 2 (creation + one buy)", len(trades))
	}
	holding, _ := f.holdings.Get(ctx, creator, mint)
	want := decimal.NewFromInt(1_000_001)
	if !holding.AmountHeld.Equal(want) {
		t.Fatalf("holding = %s, want %s (delta applied once)", holding.AmountHeld, want)
	}
}

func TestProcessor_Trade_UnknownCoin(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	user := onCurvePubkey()
	f.registerUser(t, user)

	f.proc.Handle(ctx, transferEvent(t, "sig1", mintPubkey(9), user, 0, 1, 1))

	trades, _ := f.trades.ListByUser(ctx, user)
	if len(trades) != 0 {
		t.Fatalf("trades = %d, want 0", len(trades))
	}
}

func TestProcessor_Trade_InvalidTransferType(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)
	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))

	f.proc.Handle(ctx, transferEvent(t, "sig2", mint, creator, 7, 1, 1))

	trades, _ := f.trades.ListByUser(ctx, creator)
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1 (only the creation)", len(trades))
	}
}

func TestProcessor_Sell(t *testing.T) {
	ctx := context.Background()
	f := newProcFixture(t)

	creator := onCurvePubkey()
	mint := mintPubkey(1)
	f.registerUser(t, creator)
	f.proc.Handle(ctx, createTokenEvent(t, "sig1", mint, creator))

	// Sell 5 tokens for 10 SOL.
	f.proc.Handle(ctx, transferEvent(t, "sig2", mint, creator, 1, 10_000_000_000, 5_000_000_000))

	holding, _ := f.holdings.Get(ctx, creator, mint)
	want := decimal.NewFromInt(999_995)
	if !holding.AmountHeld.Equal(want) {
		t.Fatalf("holding = %s, want %s", holding.AmountHeld, want)
	}
}
