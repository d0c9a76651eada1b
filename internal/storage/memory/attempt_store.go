package memory

import (
	"context"
	"sync"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// CheckinAttemptStore is an in-memory implementation of
// storage.CheckinAttemptStore.
type CheckinAttemptStore struct {
	mu   sync.Mutex
	data []domain.CheckinAttempt
}

// NewCheckinAttemptStore creates a new in-memory attempt store.
func NewCheckinAttemptStore() *CheckinAttemptStore {
	return &CheckinAttemptStore{}
}

// Compile-time interface check.
var _ storage.CheckinAttemptStore = (*CheckinAttemptStore)(nil)

// Insert records one attempt.
func (s *CheckinAttemptStore) Insert(_ context.Context, a *domain.CheckinAttempt) error {
	if a == nil || a.MintAddress == "" || a.Outcome == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, *a)
	return nil
}

// CountByOutcome returns attempt counts grouped by outcome tag.
func (s *CheckinAttemptStore) CountByOutcome(_ context.Context) (map[string]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]uint64)
	for _, a := range s.data {
		counts[a.Outcome]++
	}
	return counts, nil
}

// Attempts returns a copy of all recorded attempts, oldest first.
func (s *CheckinAttemptStore) Attempts() []domain.CheckinAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CheckinAttempt, len(s.data))
	copy(out, s.data)
	return out
}
