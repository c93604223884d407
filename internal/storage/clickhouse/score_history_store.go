package clickhouse

import (
	"context"
	"fmt"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore using ClickHouse.
// History is append-only; MergeTree tolerates duplicate snapshots.
type ScoreHistoryStore struct {
	conn *Conn
}

// NewScoreHistoryStore creates a new ScoreHistoryStore.
func NewScoreHistoryStore(conn *Conn) *ScoreHistoryStore {
	return &ScoreHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// Append adds a snapshot.
func (s *ScoreHistoryStore) Append(ctx context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.EntityID == "" {
		return storage.ErrInvalidInput
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO score_history (entity_type, entity_id, score, recorded_at)
		VALUES (?, ?, ?, ?)
	`, snap.EntityType, snap.EntityID, int32(snap.Score), snap.RecordedAt)
	if err != nil {
		return fmt.Errorf("append score snapshot: %w", err)
	}
	return nil
}

// ListByEntity retrieves snapshots for one entity ordered by recorded_at ASC.
func (s *ScoreHistoryStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.ScoreSnapshot, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT entity_type, entity_id, score, recorded_at
		FROM score_history
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY recorded_at ASC
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list score snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.ScoreSnapshot
	for rows.Next() {
		var snap domain.ScoreSnapshot
		var score int32
		if err := rows.Scan(&snap.EntityType, &snap.EntityID, &score, &snap.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan score snapshot: %w", err)
		}
		snap.Score = int(score)
		result = append(result, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score snapshots: %w", err)
	}
	return result, nil
}
