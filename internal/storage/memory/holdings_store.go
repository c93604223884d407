package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

type holdingKey struct {
	user string
	coin string
}

// HoldingsStore is an in-memory implementation of storage.HoldingsStore.
type HoldingsStore struct {
	mu   sync.RWMutex
	data map[holdingKey]*domain.UserCoinHoldings
}

// NewHoldingsStore creates a new in-memory holdings store.
func NewHoldingsStore() *HoldingsStore {
	return &HoldingsStore{
		data: make(map[holdingKey]*domain.UserCoinHoldings),
	}
}

// Get retrieves the holding for (user, coin). Returns ErrNotFound if not exists.
func (s *HoldingsStore) Get(_ context.Context, user, coin string) (*domain.UserCoinHoldings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.data[holdingKey{user, coin}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *h
	return &copy, nil
}

// Apply upserts the holding, adding delta to the held amount and flooring
// the balance at zero.
func (s *HoldingsStore) Apply(_ context.Context, user, coin string, delta decimal.Decimal) error {
	if user == "" || coin == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := holdingKey{user, coin}
	h, exists := s.data[key]
	if !exists {
		h = &domain.UserCoinHoldings{User: user, Coin: coin, AmountHeld: decimal.Zero}
		s.data[key] = h
	}

	next := h.AmountHeld.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	h.AmountHeld = next
	return nil
}

// CountHolders returns the number of users holding a positive amount.
func (s *HoldingsStore) CountHolders(_ context.Context, coin string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key, h := range s.data {
		if key.coin == coin && h.AmountHeld.IsPositive() {
			count++
		}
	}
	return count, nil
}

// TotalHeld sums the held amount across all holders of the coin.
func (s *HoldingsStore) TotalHeld(_ context.Context, coin string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for key, h := range s.data {
		if key.coin == coin {
			sum = sum.Add(h.AmountHeld)
		}
	}
	return sum, nil
}

// ListByCoin retrieves all positive holdings of the coin.
func (s *HoldingsStore) ListByCoin(_ context.Context, coin string) ([]*domain.UserCoinHoldings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UserCoinHoldings
	for key, h := range s.data {
		if key.coin == coin && h.AmountHeld.IsPositive() {
			copy := *h
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].User < result[j].User
	})

	return result, nil
}

// ListByUser retrieves all positive holdings of the user.
func (s *HoldingsStore) ListByUser(_ context.Context, user string) ([]*domain.UserCoinHoldings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UserCoinHoldings
	for key, h := range s.data {
		if key.user == user && h.AmountHeld.IsPositive() {
			copy := *h
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Coin < result[j].Coin
	})

	return result, nil
}

var _ storage.HoldingsStore = (*HoldingsStore)(nil)
