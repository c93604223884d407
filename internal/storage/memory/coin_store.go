package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// CoinStore is an in-memory implementation of storage.CoinStore.
type CoinStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Coin // keyed by address
}

// NewCoinStore creates a new in-memory coin store.
func NewCoinStore() *CoinStore {
	return &CoinStore{
		data: make(map[string]*domain.Coin),
	}
}

// Insert adds a new coin. Returns ErrDuplicateKey if the address exists.
func (s *CoinStore) Insert(_ context.Context, c *domain.Coin) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Address]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *c
	s.data[c.Address] = &copy
	return nil
}

// Get retrieves a coin by address. Returns ErrNotFound if not exists.
func (s *CoinStore) Get(_ context.Context, address string) (*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *c
	return &copy, nil
}

// Exists reports whether a coin with the address is stored.
func (s *CoinStore) Exists(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[address]
	return exists, nil
}

// UpdatePrice sets the coin's current price.
func (s *CoinStore) UpdatePrice(_ context.Context, address string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[address]
	if !exists {
		return storage.ErrNotFound
	}

	c.CurrentPrice = price
	if price.GreaterThan(c.ATH) {
		c.ATH = price
	}
	return nil
}

// SetScore syncs the denormalized score mirror on the coin row.
func (s *CoinStore) SetScore(_ context.Context, address string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[address]
	if !exists {
		return storage.ErrNotFound
	}

	c.Score = score
	return nil
}

// ListByCreator retrieves all coins created by the wallet.
func (s *CoinStore) ListByCreator(_ context.Context, creator string) ([]*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Coin
	for _, c := range s.data {
		if c.Creator == creator {
			copy := *c
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// ListAddresses retrieves every stored coin address.
func (s *CoinStore) ListAddresses(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.data))
	for addr := range s.data {
		result = append(result, addr)
	}
	sort.Strings(result)

	return result, nil
}

// ListCreators retrieves the distinct creator wallets across all coins.
func (s *CoinStore) ListCreators(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, c := range s.data {
		if _, ok := seen[c.Creator]; !ok {
			seen[c.Creator] = struct{}{}
			result = append(result, c.Creator)
		}
	}
	sort.Strings(result)

	return result, nil
}

var _ storage.CoinStore = (*CoinStore)(nil)
