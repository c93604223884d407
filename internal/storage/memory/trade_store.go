package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by transaction_hash
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TransactionHash == "" || !t.TradeType.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TransactionHash]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TransactionHash] = &copy
	return nil
}

// Exists reports whether a trade with the signature is stored.
func (s *TradeStore) Exists(_ context.Context, signature string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[signature]
	return exists, nil
}

// CountByCoin returns the number of trades recorded for the coin.
func (s *TradeStore) CountByCoin(_ context.Context, coin string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, t := range s.data {
		if t.Coin == coin {
			count++
		}
	}
	return count, nil
}

// CountByCoinAndType returns the number of trades of one type for the coin.
func (s *TradeStore) CountByCoinAndType(_ context.Context, coin string, tt domain.TradeType) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, t := range s.data {
		if t.Coin == coin && t.TradeType == tt {
			count++
		}
	}
	return count, nil
}

// VolumeSince sums sol_amount over the coin's trades created at or after since.
func (s *TradeStore) VolumeSince(_ context.Context, coin string, since time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, t := range s.data {
		if t.Coin == coin && !t.CreatedAt.Before(since) {
			sum = sum.Add(t.SolAmount)
		}
	}
	return sum, nil
}

// BuySpendSince sums sol_amount over the user's BUY trades created at or
// after since, across all coins.
func (s *TradeStore) BuySpendSince(_ context.Context, user string, since time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, t := range s.data {
		if t.User == user && t.TradeType == domain.TradeBuy && !t.CreatedAt.Before(since) {
			sum = sum.Add(t.SolAmount)
		}
	}
	return sum, nil
}

// ListByUser retrieves the user's trades ordered by created_at ASC.
func (s *TradeStore) ListByUser(_ context.Context, user string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.User == user {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// ListTraders retrieves the distinct wallets that have traded.
func (s *TradeStore) ListTraders(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, t := range s.data {
		if _, ok := seen[t.User]; !ok {
			seen[t.User] = struct{}{}
			result = append(result, t.User)
		}
	}
	sort.Strings(result)

	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
