package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// HoldingsStore implements storage.HoldingsStore using PostgreSQL.
type HoldingsStore struct {
	pool *Pool
}

// NewHoldingsStore creates a new HoldingsStore.
func NewHoldingsStore(pool *Pool) *HoldingsStore {
	return &HoldingsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HoldingsStore = (*HoldingsStore)(nil)

// Get retrieves the holding for (user, coin). Returns ErrNotFound if not exists.
func (s *HoldingsStore) Get(ctx context.Context, user, coin string) (*domain.UserCoinHoldings, error) {
	query := `
		SELECT "user", coin, amount_held
		FROM user_coin_holdings
		WHERE "user" = $1 AND coin = $2
	`

	var h domain.UserCoinHoldings
	err := s.pool.QueryRow(ctx, query, user, coin).Scan(&h.User, &h.Coin, &h.AmountHeld)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get holding: %w", err)
	}
	return &h, nil
}

// Apply upserts the holding, adding delta to the held amount and flooring
// the balance at zero.
func (s *HoldingsStore) Apply(ctx context.Context, user, coin string, delta decimal.Decimal) error {
	if user == "" || coin == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_coin_holdings ("user", coin, amount_held)
		VALUES ($1, $2, GREATEST($3::numeric, 0))
		ON CONFLICT ("user", coin) DO UPDATE
		SET amount_held = GREATEST(user_coin_holdings.amount_held + $3::numeric, 0)
	`, user, coin, delta)
	if err != nil {
		return fmt.Errorf("apply holding delta: %w", err)
	}
	return nil
}

// CountHolders returns the number of users holding a positive amount.
func (s *HoldingsStore) CountHolders(ctx context.Context, coin string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_coin_holdings WHERE coin = $1 AND amount_held > 0`,
		coin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count holders: %w", err)
	}
	return count, nil
}

// TotalHeld sums the held amount across all holders of the coin.
func (s *HoldingsStore) TotalHeld(ctx context.Context, coin string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_held), 0) FROM user_coin_holdings WHERE coin = $1`,
		coin,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total held: %w", err)
	}
	return total, nil
}

// ListByCoin retrieves all positive holdings of the coin.
func (s *HoldingsStore) ListByCoin(ctx context.Context, coin string) ([]*domain.UserCoinHoldings, error) {
	query := `
		SELECT "user", coin, amount_held
		FROM user_coin_holdings
		WHERE coin = $1 AND amount_held > 0
		ORDER BY "user" ASC
	`

	rows, err := s.pool.Query(ctx, query, coin)
	if err != nil {
		return nil, fmt.Errorf("list holdings by coin: %w", err)
	}
	defer rows.Close()

	return scanHoldings(rows)
}

// ListByUser retrieves all positive holdings of the user.
func (s *HoldingsStore) ListByUser(ctx context.Context, user string) ([]*domain.UserCoinHoldings, error) {
	query := `
		SELECT "user", coin, amount_held
		FROM user_coin_holdings
		WHERE "user" = $1 AND amount_held > 0
		ORDER BY coin ASC
	`

	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("list holdings by user: %w", err)
	}
	defer rows.Close()

	return scanHoldings(rows)
}

func scanHoldings(rows pgx.Rows) ([]*domain.UserCoinHoldings, error) {
	var holdings []*domain.UserCoinHoldings

	for rows.Next() {
		var h domain.UserCoinHoldings
		if err := rows.Scan(&h.User, &h.Coin, &h.AmountHeld); err != nil {
			return nil, fmt.Errorf("scan holding row: %w", err)
		}
		holdings = append(holdings, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holding rows: %w", err)
	}
	return holdings, nil
}
