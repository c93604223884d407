package memory

import (
	"context"
	"sync"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// ScoreHistoryStore is an in-memory implementation of
// storage.ScoreHistoryStore. Snapshots accumulate in insertion order.
type ScoreHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.ScoreSnapshot
}

// NewScoreHistoryStore creates a new in-memory score history store.
func NewScoreHistoryStore() *ScoreHistoryStore {
	return &ScoreHistoryStore{}
}

// Append adds a snapshot.
func (s *ScoreHistoryStore) Append(_ context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.EntityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *snap
	s.data = append(s.data, &copy)
	return nil
}

// All returns the recorded snapshots in insertion order.
func (s *ScoreHistoryStore) All() []*domain.ScoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ScoreSnapshot, len(s.data))
	for i, snap := range s.data {
		copy := *snap
		result[i] = &copy
	}
	return result
}

var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)
