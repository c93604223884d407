package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TransactionHash == "" || !t.TradeType.IsValid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			transaction_hash, "user", coin, trade_type, coin_amount, sol_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TransactionHash,
		t.User,
		t.Coin,
		string(t.TradeType),
		t.CoinAmount,
		t.SolAmount,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// Exists reports whether a trade with the signature is stored.
func (s *TradeStore) Exists(ctx context.Context, signature string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM trades WHERE transaction_hash = $1)`, signature,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("trade exists: %w", err)
	}
	return exists, nil
}

// CountByCoin returns the number of trades recorded for the coin.
func (s *TradeStore) CountByCoin(ctx context.Context, coin string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trades WHERE coin = $1`, coin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trades by coin: %w", err)
	}
	return count, nil
}

// CountByCoinAndType returns the number of trades of one type for the coin.
func (s *TradeStore) CountByCoinAndType(ctx context.Context, coin string, tt domain.TradeType) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trades WHERE coin = $1 AND trade_type = $2`,
		coin, string(tt),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trades by coin and type: %w", err)
	}
	return count, nil
}

// VolumeSince sums sol_amount over the coin's trades created at or after since.
func (s *TradeStore) VolumeSince(ctx context.Context, coin string, since time.Time) (decimal.Decimal, error) {
	var volume decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(sol_amount), 0)
		FROM trades
		WHERE coin = $1 AND created_at >= $2
	`, coin, since).Scan(&volume)
	if err != nil {
		return decimal.Zero, fmt.Errorf("trade volume since: %w", err)
	}
	return volume, nil
}

// BuySpendSince sums sol_amount over the user's BUY trades created at or
// after since, across all coins.
func (s *TradeStore) BuySpendSince(ctx context.Context, user string, since time.Time) (decimal.Decimal, error) {
	var spend decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(sol_amount), 0)
		FROM trades
		WHERE "user" = $1 AND trade_type = $2 AND created_at >= $3
	`, user, string(domain.TradeBuy), since).Scan(&spend)
	if err != nil {
		return decimal.Zero, fmt.Errorf("buy spend since: %w", err)
	}
	return spend, nil
}

// ListByUser retrieves the user's trades ordered by created_at ASC.
func (s *TradeStore) ListByUser(ctx context.Context, user string) ([]*domain.Trade, error) {
	query := `
		SELECT transaction_hash, "user", coin, trade_type, coin_amount, sol_amount, created_at
		FROM trades
		WHERE "user" = $1
		ORDER BY created_at ASC, transaction_hash ASC
	`

	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("list trades by user: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListTraders retrieves the distinct wallets that have traded.
func (s *TradeStore) ListTraders(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT "user" FROM trades ORDER BY "user" ASC`)
	if err != nil {
		return nil, fmt.Errorf("list traders: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade
		var tradeType string

		err := rows.Scan(
			&t.TransactionHash,
			&t.User,
			&t.Coin,
			&tradeType,
			&t.CoinAmount,
			&t.SolAmount,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		t.TradeType = domain.TradeType(tradeType)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}
