package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// CoinStore implements storage.CoinStore using PostgreSQL.
type CoinStore struct {
	pool *Pool
}

// NewCoinStore creates a new CoinStore.
func NewCoinStore(pool *Pool) *CoinStore {
	return &CoinStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CoinStore = (*CoinStore)(nil)

const coinColumns = `
	address, name, ticker, creator, total_supply, current_price, decimals,
	image_url, description, discord, website, twitter, score, ath, created_at
`

// Insert adds a new coin. Returns ErrDuplicateKey if the address exists.
func (s *CoinStore) Insert(ctx context.Context, c *domain.Coin) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO coins (` + coinColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query,
		c.Address,
		c.Name,
		c.Ticker,
		c.Creator,
		c.TotalSupply,
		c.CurrentPrice,
		c.Decimals,
		c.ImageURL,
		c.Description,
		c.Discord,
		c.Website,
		c.Twitter,
		c.Score,
		c.ATH,
		c.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert coin: %w", err)
	}
	return nil
}

// Get retrieves a coin by address. Returns ErrNotFound if not exists.
func (s *CoinStore) Get(ctx context.Context, address string) (*domain.Coin, error) {
	query := `SELECT ` + coinColumns + ` FROM coins WHERE address = $1`

	c, err := scanCoin(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get coin: %w", err)
	}
	return c, nil
}

// Exists reports whether a coin with the address is stored.
func (s *CoinStore) Exists(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM coins WHERE address = $1)`, address,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("coin exists: %w", err)
	}
	return exists, nil
}

// UpdatePrice sets the coin's current price, advancing the all-time high
// when exceeded.
func (s *CoinStore) UpdatePrice(ctx context.Context, address string, price decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE coins
		SET current_price = $2, ath = GREATEST(ath, $2)
		WHERE address = $1
	`, address, price)
	if err != nil {
		return fmt.Errorf("update coin price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetScore syncs the denormalized score mirror on the coin row.
func (s *CoinStore) SetScore(ctx context.Context, address string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE coins SET score = $2 WHERE address = $1`, address, score)
	if err != nil {
		return fmt.Errorf("set coin score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByCreator retrieves all coins created by the wallet.
func (s *CoinStore) ListByCreator(ctx context.Context, creator string) ([]*domain.Coin, error) {
	query := `SELECT ` + coinColumns + ` FROM coins WHERE creator = $1 ORDER BY address ASC`

	rows, err := s.pool.Query(ctx, query, creator)
	if err != nil {
		return nil, fmt.Errorf("list coins by creator: %w", err)
	}
	defer rows.Close()

	return scanCoins(rows)
}

// ListAddresses retrieves every stored coin address.
func (s *CoinStore) ListAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT address FROM coins ORDER BY address ASC`)
	if err != nil {
		return nil, fmt.Errorf("list coin addresses: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// ListCreators retrieves the distinct creator wallets across all coins.
func (s *CoinStore) ListCreators(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT creator FROM coins ORDER BY creator ASC`)
	if err != nil {
		return nil, fmt.Errorf("list coin creators: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func scanCoin(row pgx.Row) (*domain.Coin, error) {
	var c domain.Coin
	err := row.Scan(
		&c.Address,
		&c.Name,
		&c.Ticker,
		&c.Creator,
		&c.TotalSupply,
		&c.CurrentPrice,
		&c.Decimals,
		&c.ImageURL,
		&c.Description,
		&c.Discord,
		&c.Website,
		&c.Twitter,
		&c.Score,
		&c.ATH,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCoins(rows pgx.Rows) ([]*domain.Coin, error) {
	var coins []*domain.Coin

	for rows.Next() {
		c, err := scanCoin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coin row: %w", err)
		}
		coins = append(coins, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin rows: %w", err)
	}
	return coins, nil
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var result []string

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan string row: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate string rows: %w", err)
	}
	return result, nil
}
