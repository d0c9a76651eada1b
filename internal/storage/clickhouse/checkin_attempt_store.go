// Package clickhouse stores check-in attempt audit records for analytics.
package clickhouse

import (
	"context"
	"fmt"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// CheckinAttemptStore implements storage.CheckinAttemptStore using
// ClickHouse. Attempts are append-only; the gate's serving path only
// writes here, analytics queries read.
type CheckinAttemptStore struct {
	conn *Conn
}

// NewCheckinAttemptStore creates a new CheckinAttemptStore.
func NewCheckinAttemptStore(conn *Conn) *CheckinAttemptStore {
	return &CheckinAttemptStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CheckinAttemptStore = (*CheckinAttemptStore)(nil)

// Insert records one attempt.
func (s *CheckinAttemptStore) Insert(ctx context.Context, a *domain.CheckinAttempt) error {
	if a == nil || a.MintAddress == "" || a.Outcome == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO checkin_attempts (
			mint_address, outcome, duration_ms, attempted_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		a.MintAddress, a.Outcome, uint64(a.DurationMs), a.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByOutcome returns attempt counts grouped by outcome tag.
func (s *CheckinAttemptStore) CountByOutcome(ctx context.Context) (map[string]uint64, error) {
	query := `
		SELECT outcome, count()
		FROM checkin_attempts
		GROUP BY outcome
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count attempts by outcome: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var outcome string
		var count uint64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}

	return counts, nil
}
