package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

func TestTradeStore_InsertAndExists(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.Trade{
		TransactionHash: "sig1",
		User:            "wallet1",
		Coin:            "mint1",
		TradeType:       domain.TradeBuy,
		CoinAmount:      decimal.NewFromInt(100),
		SolAmount:       decimal.NewFromInt(2),
		CreatedAt:       time.Now(),
	}

	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	exists, err := store.Exists(ctx, "sig1")
	if err != nil || !exists {
		t.Errorf("Exists = (%v, %v), want (true, nil)", exists, err)
	}

	exists, err = store.Exists(ctx, "sig2")
	if err != nil || exists {
		t.Errorf("Exists = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestTradeStore_DuplicateSignature(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.Trade{
		TransactionHash: "sig1",
		User:            "wallet1",
		Coin:            "mint1",
		TradeType:       domain.TradeBuy,
	}

	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, trade)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	cases := []*domain.Trade{
		nil,
		{TransactionHash: "", TradeType: domain.TradeBuy},
		{TransactionHash: "sig1", TradeType: domain.TradeType("BOGUS")},
	}
	for _, trade := range cases {
		if err := store.Insert(ctx, trade); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %+v, got %v", trade, err)
		}
	}
}

func TestTradeStore_Counts(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.Trade{
		{TransactionHash: "s1", User: "u1", Coin: "mint1", TradeType: domain.TradeBuy},
		{TransactionHash: "s2", User: "u2", Coin: "mint1", TradeType: domain.TradeSell},
		{TransactionHash: "s3", User: "u1", Coin: "mint1", TradeType: domain.TradeSell},
		{TransactionHash: "s4", User: "u1", Coin: "mint2", TradeType: domain.TradeBuy},
	}
	for _, tr := range trades {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	total, err := store.CountByCoin(ctx, "mint1")
	if err != nil || total != 3 {
		t.Errorf("CountByCoin = (%d, %v), want (3, nil)", total, err)
	}

	sells, err := store.CountByCoinAndType(ctx, "mint1", domain.TradeSell)
	if err != nil || sells != 2 {
		t.Errorf("CountByCoinAndType = (%d, %v), want (2, nil)", sells, err)
	}

	traders, err := store.ListTraders(ctx)
	if err != nil || len(traders) != 2 {
		t.Errorf("ListTraders = (%v, %v), want 2 wallets", traders, err)
	}
}

func TestTradeStore_VolumeSince(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()
	now := time.Now()

	trades := []*domain.Trade{
		{TransactionHash: "s1", User: "u1", Coin: "mint1", TradeType: domain.TradeBuy,
			SolAmount: decimal.NewFromInt(10), CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{TransactionHash: "s2", User: "u1", Coin: "mint1", TradeType: domain.TradeSell,
			SolAmount: decimal.NewFromInt(5), CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{TransactionHash: "s3", User: "u2", Coin: "mint1", TradeType: domain.TradeBuy,
			SolAmount: decimal.NewFromInt(7), CreatedAt: now.Add(-time.Hour)},
	}
	for _, tr := range trades {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	vol, err := store.VolumeSince(ctx, "mint1", now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("VolumeSince failed: %v", err)
	}
	if !vol.Equal(decimal.NewFromInt(12)) {
		t.Errorf("VolumeSince = %s, want 12", vol)
	}

	spend, err := store.BuySpendSince(ctx, "u1", now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("BuySpendSince failed: %v", err)
	}
	if !spend.IsZero() {
		t.Errorf("BuySpendSince = %s, want 0 (only old buy)", spend)
	}
}

func TestTradeStore_ListByUserOrdered(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()
	base := time.Now()

	trades := []*domain.Trade{
		{TransactionHash: "s2", User: "u1", Coin: "mint1", TradeType: domain.TradeSell, CreatedAt: base.Add(2 * time.Hour)},
		{TransactionHash: "s1", User: "u1", Coin: "mint1", TradeType: domain.TradeBuy, CreatedAt: base},
		{TransactionHash: "s3", User: "u2", Coin: "mint1", TradeType: domain.TradeBuy, CreatedAt: base.Add(time.Hour)},
	}
	for _, tr := range trades {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
	if got[0].TransactionHash != "s1" || got[1].TransactionHash != "s2" {
		t.Errorf("unexpected order: %s, %s", got[0].TransactionHash, got[1].TransactionHash)
	}
}
