package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu     sync.RWMutex
	coins  map[string]*domain.CoinDRCScore  // keyed by coin address
	devs   map[string]*domain.DeveloperScore // keyed by wallet
	trader map[string]*domain.TraderScore    // keyed by wallet
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		coins:  make(map[string]*domain.CoinDRCScore),
		devs:   make(map[string]*domain.DeveloperScore),
		trader: make(map[string]*domain.TraderScore),
	}
}

// GetOrCreateCoinScore retrieves the coin's score record, creating it with
// the base score if absent.
func (s *ScoreStore) GetOrCreateCoinScore(_ context.Context, coinAddress string) (*domain.CoinDRCScore, error) {
	if coinAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.coins[coinAddress]
	if !exists {
		now := time.Now().UTC()
		rec = &domain.CoinDRCScore{
			CoinAddress:       coinAddress,
			Score:             storage.BaseScore,
			MaxVolumeRecorded: decimal.Zero,
			LastRecordedPrice: decimal.Zero,
			LastPrice:         decimal.Zero,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		s.coins[coinAddress] = rec
	}

	copy := *rec
	return &copy, nil
}

// SaveCoinScore persists the full score record.
func (s *ScoreStore) SaveCoinScore(_ context.Context, rec *domain.CoinDRCScore) error {
	if rec == nil || rec.CoinAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *rec
	copy.UpdatedAt = time.Now().UTC()
	s.coins[rec.CoinAddress] = &copy
	return nil
}

// GetOrCreateDeveloperScore retrieves the developer's score record, creating
// it with the base score if absent.
func (s *ScoreStore) GetOrCreateDeveloperScore(_ context.Context, developer string) (*domain.DeveloperScore, error) {
	if developer == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.devs[developer]
	if !exists {
		now := time.Now().UTC()
		rec = &domain.DeveloperScore{
			Developer: developer,
			Score:     storage.BaseScore,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.devs[developer] = rec
	}

	copy := *rec
	return &copy, nil
}

// SaveDeveloperScore persists the full score record.
func (s *ScoreStore) SaveDeveloperScore(_ context.Context, rec *domain.DeveloperScore) error {
	if rec == nil || rec.Developer == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *rec
	copy.UpdatedAt = time.Now().UTC()
	s.devs[rec.Developer] = &copy
	return nil
}

// GetOrCreateTraderScore retrieves the trader's score record, creating it
// with the base score if absent.
func (s *ScoreStore) GetOrCreateTraderScore(_ context.Context, trader string) (*domain.TraderScore, error) {
	if trader == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.trader[trader]
	if !exists {
		now := time.Now().UTC()
		rec = &domain.TraderScore{
			Trader:    trader,
			Score:     storage.BaseScore,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.trader[trader] = rec
	}

	copy := *rec
	return &copy, nil
}

// SaveTraderScore persists the full score record.
func (s *ScoreStore) SaveTraderScore(_ context.Context, rec *domain.TraderScore) error {
	if rec == nil || rec.Trader == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *rec
	copy.UpdatedAt = time.Now().UTC()
	s.trader[rec.Trader] = &copy
	return nil
}

// GetTraderScore retrieves the trader's score without creating it.
func (s *ScoreStore) GetTraderScore(_ context.Context, trader string) (*domain.TraderScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.trader[trader]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *rec
	return &copy, nil
}

// FlagCounts aggregates score flags over the given coins.
func (s *ScoreStore) FlagCounts(_ context.Context, coins []string) (successful, tokenAbandoned, teamAbandoned int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, addr := range coins {
		rec, exists := s.coins[addr]
		if !exists {
			continue
		}
		if rec.SuccessfulToken {
			successful++
		}
		if rec.TokenAbandonment {
			tokenAbandoned++
		}
		if rec.TeamAbandonment {
			teamAbandoned++
		}
	}
	return successful, tokenAbandoned, teamAbandoned, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
