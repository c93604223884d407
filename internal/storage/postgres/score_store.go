package postgres

import (
	"context"
	"fmt"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// ScoreStore implements storage.ScoreStore using PostgreSQL. GetOrCreate
// methods are upsert-backed so concurrent first accesses converge on one row.
type ScoreStore struct {
	pool *Pool
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(pool *Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

const coinScoreColumns = `
	coin_address, score, holders_count, age_in_hours, max_volume_recorded,
	price_breakouts_per_month, last_recorded_price, last_price,
	holder_retention_months, last_recorded_holders,
	team_abandonment, token_abandonment, pump_and_dump_activity, successful_token,
	last_daily_update, last_biweekly_update, last_monthly_update,
	created_at, updated_at
`

// GetOrCreateCoinScore retrieves the coin's score record, creating it with
// the base score if absent.
func (s *ScoreStore) GetOrCreateCoinScore(ctx context.Context, coinAddress string) (*domain.CoinDRCScore, error) {
	if coinAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO coin_drc_scores (coin_address, score)
		VALUES ($1, $2)
		ON CONFLICT (coin_address) DO NOTHING
	`, coinAddress, storage.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("create coin score: %w", err)
	}

	query := `SELECT ` + coinScoreColumns + ` FROM coin_drc_scores WHERE coin_address = $1`

	var rec domain.CoinDRCScore
	err = s.pool.QueryRow(ctx, query, coinAddress).Scan(
		&rec.CoinAddress,
		&rec.Score,
		&rec.HoldersCount,
		&rec.AgeInHours,
		&rec.MaxVolumeRecorded,
		&rec.PriceBreakoutsPerMonth,
		&rec.LastRecordedPrice,
		&rec.LastPrice,
		&rec.HolderRetentionMonths,
		&rec.LastRecordedHolders,
		&rec.TeamAbandonment,
		&rec.TokenAbandonment,
		&rec.PumpAndDumpActivity,
		&rec.SuccessfulToken,
		&rec.LastDailyUpdate,
		&rec.LastBiweeklyUpdate,
		&rec.LastMonthlyUpdate,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get coin score: %w", err)
	}
	return &rec, nil
}

// SaveCoinScore persists the full score record.
func (s *ScoreStore) SaveCoinScore(ctx context.Context, rec *domain.CoinDRCScore) error {
	if rec == nil || rec.CoinAddress == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE coin_drc_scores SET
			score = $2,
			holders_count = $3,
			age_in_hours = $4,
			max_volume_recorded = $5,
			price_breakouts_per_month = $6,
			last_recorded_price = $7,
			last_price = $8,
			holder_retention_months = $9,
			last_recorded_holders = $10,
			team_abandonment = $11,
			token_abandonment = $12,
			pump_and_dump_activity = $13,
			successful_token = $14,
			last_daily_update = $15,
			last_biweekly_update = $16,
			last_monthly_update = $17,
			updated_at = NOW()
		WHERE coin_address = $1
	`,
		rec.CoinAddress,
		rec.Score,
		rec.HoldersCount,
		rec.AgeInHours,
		rec.MaxVolumeRecorded,
		rec.PriceBreakoutsPerMonth,
		rec.LastRecordedPrice,
		rec.LastPrice,
		rec.HolderRetentionMonths,
		rec.LastRecordedHolders,
		rec.TeamAbandonment,
		rec.TokenAbandonment,
		rec.PumpAndDumpActivity,
		rec.SuccessfulToken,
		rec.LastDailyUpdate,
		rec.LastBiweeklyUpdate,
		rec.LastMonthlyUpdate,
	)
	if err != nil {
		return fmt.Errorf("save coin score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetOrCreateDeveloperScore retrieves the developer's score record, creating
// it with the base score if absent.
func (s *ScoreStore) GetOrCreateDeveloperScore(ctx context.Context, developer string) (*domain.DeveloperScore, error) {
	if developer == "" {
		return nil, storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO developer_scores (developer, score)
		VALUES ($1, $2)
		ON CONFLICT (developer) DO NOTHING
	`, developer, storage.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("create developer score: %w", err)
	}

	var rec domain.DeveloperScore
	err = s.pool.QueryRow(ctx, `
		SELECT developer, score, successful_launch, abandoned_projects,
		       rug_pull_or_sell_off, no_rugs_count, created_at, updated_at
		FROM developer_scores
		WHERE developer = $1
	`, developer).Scan(
		&rec.Developer,
		&rec.Score,
		&rec.SuccessfulLaunch,
		&rec.AbandonedProjects,
		&rec.RugPullOrSellOff,
		&rec.NoRugsCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get developer score: %w", err)
	}
	return &rec, nil
}

// SaveDeveloperScore persists the full score record.
func (s *ScoreStore) SaveDeveloperScore(ctx context.Context, rec *domain.DeveloperScore) error {
	if rec == nil || rec.Developer == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE developer_scores SET
			score = $2,
			successful_launch = $3,
			abandoned_projects = $4,
			rug_pull_or_sell_off = $5,
			no_rugs_count = $6,
			updated_at = NOW()
		WHERE developer = $1
	`,
		rec.Developer,
		rec.Score,
		rec.SuccessfulLaunch,
		rec.AbandonedProjects,
		rec.RugPullOrSellOff,
		rec.NoRugsCount,
	)
	if err != nil {
		return fmt.Errorf("save developer score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetOrCreateTraderScore retrieves the trader's score record, creating it
// with the base score if absent.
func (s *ScoreStore) GetOrCreateTraderScore(ctx context.Context, trader string) (*domain.TraderScore, error) {
	if trader == "" {
		return nil, storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trader_scores (trader, score)
		VALUES ($1, $2)
		ON CONFLICT (trader) DO NOTHING
	`, trader, storage.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("create trader score: %w", err)
	}

	return s.GetTraderScore(ctx, trader)
}

// SaveTraderScore persists the full score record.
func (s *ScoreStore) SaveTraderScore(ctx context.Context, rec *domain.TraderScore) error {
	if rec == nil || rec.Trader == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE trader_scores SET
			score = $2,
			quick_pump_and_dumps_count = $3,
			sniping_and_dumps_count = $4,
			updated_at = NOW()
		WHERE trader = $1
	`,
		rec.Trader,
		rec.Score,
		rec.QuickPumpAndDumpsCount,
		rec.SnipingAndDumpsCount,
	)
	if err != nil {
		return fmt.Errorf("save trader score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetTraderScore retrieves the trader's score without creating it.
func (s *ScoreStore) GetTraderScore(ctx context.Context, trader string) (*domain.TraderScore, error) {
	var rec domain.TraderScore
	err := s.pool.QueryRow(ctx, `
		SELECT trader, score, quick_pump_and_dumps_count, sniping_and_dumps_count,
		       created_at, updated_at
		FROM trader_scores
		WHERE trader = $1
	`, trader).Scan(
		&rec.Trader,
		&rec.Score,
		&rec.QuickPumpAndDumpsCount,
		&rec.SnipingAndDumpsCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trader score: %w", err)
	}
	return &rec, nil
}

// FlagCounts aggregates score flags over the given coins.
func (s *ScoreStore) FlagCounts(ctx context.Context, coins []string) (successful, tokenAbandoned, teamAbandoned int, err error) {
	if len(coins) == 0 {
		return 0, 0, 0, nil
	}

	err = s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE successful_token),
			COUNT(*) FILTER (WHERE token_abandonment),
			COUNT(*) FILTER (WHERE team_abandonment)
		FROM coin_drc_scores
		WHERE coin_address = ANY($1)
	`, coins).Scan(&successful, &tokenAbandoned, &teamAbandoned)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("flag counts: %w", err)
	}
	return successful, tokenAbandoned, teamAbandoned, nil
}
