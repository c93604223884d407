package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"solana-drc/internal/storage"
)

func TestHoldingsStore_ApplyAndGet(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	if err := store.Apply(ctx, "u1", "mint1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := store.Apply(ctx, "u1", "mint1", decimal.NewFromInt(-40)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	h, err := store.Get(ctx, "u1", "mint1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !h.AmountHeld.Equal(decimal.NewFromInt(60)) {
		t.Errorf("AmountHeld = %s, want 60", h.AmountHeld)
	}
}

func TestHoldingsStore_FloorsAtZero(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	if err := store.Apply(ctx, "u1", "mint1", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := store.Apply(ctx, "u1", "mint1", decimal.NewFromInt(-25)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	h, err := store.Get(ctx, "u1", "mint1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !h.AmountHeld.IsZero() {
		t.Errorf("AmountHeld = %s, want 0", h.AmountHeld)
	}
}

func TestHoldingsStore_NotFound(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "u1", "mint1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHoldingsStore_Aggregates(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	if err := store.Apply(ctx, "u1", "mint1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := store.Apply(ctx, "u2", "mint1", decimal.NewFromInt(50)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	// Position fully exited; must not count as a holder.
	if err := store.Apply(ctx, "u3", "mint1", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := store.Apply(ctx, "u3", "mint1", decimal.NewFromInt(-30)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	holders, err := store.CountHolders(ctx, "mint1")
	if err != nil || holders != 2 {
		t.Errorf("CountHolders = (%d, %v), want (2, nil)", holders, err)
	}

	total, err := store.TotalHeld(ctx, "mint1")
	if err != nil {
		t.Fatalf("TotalHeld failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("TotalHeld = %s, want 150", total)
	}

	byCoin, err := store.ListByCoin(ctx, "mint1")
	if err != nil || len(byCoin) != 2 {
		t.Errorf("ListByCoin = (%d, %v), want 2 holdings", len(byCoin), err)
	}

	byUser, err := store.ListByUser(ctx, "u1")
	if err != nil || len(byUser) != 1 {
		t.Errorf("ListByUser = (%d, %v), want 1 holding", len(byUser), err)
	}
}
