package memory

import (
	"context"
	"sync"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by wallet_address
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if the wallet exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.WalletAddress]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *u
	s.data[u.WalletAddress] = &copy
	return nil
}

// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(_ context.Context, wallet string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *u
	return &copy, nil
}

var _ storage.UserStore = (*UserStore)(nil)
