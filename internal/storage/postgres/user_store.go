package postgres

import (
	"context"
	"fmt"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the wallet exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	if u == nil || u.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO users (wallet_address, display_name, bio, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		u.WalletAddress,
		u.DisplayName,
		u.Bio,
		u.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(ctx context.Context, wallet string) (*domain.User, error) {
	query := `
		SELECT wallet_address, display_name, bio, created_at
		FROM users
		WHERE wallet_address = $1
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&u.WalletAddress,
		&u.DisplayName,
		&u.Bio,
		&u.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
