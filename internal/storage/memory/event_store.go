// Package memory provides in-memory storage implementations, used by the
// --use-memory server mode and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Event // keyed by id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.Event),
	}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	eventCopy := *e
	s.data[e.ID] = &eventCopy
	return nil
}

// GetByID retrieves an event by id. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(_ context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	eventCopy := *e
	return &eventCopy, nil
}

// List retrieves all events ordered by date ascending.
func (s *EventStore) List(_ context.Context) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Event, 0, len(s.data))
	for _, e := range s.data {
		eventCopy := *e
		result = append(result, &eventCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
