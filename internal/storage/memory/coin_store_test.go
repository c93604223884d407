package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

func TestCoinStore_InsertAndGet(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	coin := &domain.Coin{
		Address:      "mint1",
		Name:         "Test Coin",
		Ticker:       "TST",
		Creator:      "wallet1",
		TotalSupply:  decimal.NewFromInt(1_000_000),
		CurrentPrice: decimal.NewFromInt(1),
		Decimals:     9,
	}

	if err := store.Insert(ctx, coin); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "mint1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Ticker != "TST" {
		t.Errorf("Ticker mismatch: got %s", got.Ticker)
	}

	exists, err := store.Exists(ctx, "mint1")
	if err != nil || !exists {
		t.Errorf("Exists = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestCoinStore_DuplicateKey(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	coin := &domain.Coin{Address: "mint1", Creator: "wallet1"}
	if err := store.Insert(ctx, coin); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, coin)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCoinStore_NotFound(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.UpdatePrice(ctx, "nonexistent", decimal.NewFromInt(1)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCoinStore_UpdatePriceTracksATH(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	coin := &domain.Coin{Address: "mint1", Creator: "wallet1"}
	if err := store.Insert(ctx, coin); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.UpdatePrice(ctx, "mint1", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}
	if err := store.UpdatePrice(ctx, "mint1", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}

	got, err := store.Get(ctx, "mint1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.CurrentPrice.Equal(decimal.NewFromInt(3)) {
		t.Errorf("CurrentPrice = %s, want 3", got.CurrentPrice)
	}
	if !got.ATH.Equal(decimal.NewFromInt(5)) {
		t.Errorf("ATH = %s, want 5", got.ATH)
	}
}

func TestCoinStore_ListByCreator(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	for _, c := range []*domain.Coin{
		{Address: "mintB", Creator: "dev1"},
		{Address: "mintA", Creator: "dev1"},
		{Address: "mintC", Creator: "dev2"},
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	coins, err := store.ListByCreator(ctx, "dev1")
	if err != nil {
		t.Fatalf("ListByCreator failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	if coins[0].Address != "mintA" || coins[1].Address != "mintB" {
		t.Errorf("unexpected order: %s, %s", coins[0].Address, coins[1].Address)
	}

	creators, err := store.ListCreators(ctx)
	if err != nil {
		t.Fatalf("ListCreators failed: %v", err)
	}
	if len(creators) != 2 {
		t.Errorf("expected 2 creators, got %v", creators)
	}
}

func TestCoinStore_CopySemantics(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	coin := &domain.Coin{Address: "mint1", Name: "Original", Creator: "wallet1"}
	if err := store.Insert(ctx, coin); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	coin.Name = "Mutated"

	got, err := store.Get(ctx, "mint1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Original" {
		t.Errorf("stored record was mutated through caller pointer")
	}
}
