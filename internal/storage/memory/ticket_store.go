package memory

import (
	"context"
	"sort"
	"sync"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// TicketStore is an in-memory implementation of storage.TicketStore.
// An optional EventStore supplies the event side of ListByOwner joins.
type TicketStore struct {
	mu     sync.Mutex
	data   map[string]*domain.Ticket // keyed by ticket id
	byMint map[string]string         // mint_address -> ticket id
	events *EventStore
}

// NewTicketStore creates a new in-memory ticket store. events may be nil
// when ListByOwner is not needed.
func NewTicketStore(events *EventStore) *TicketStore {
	return &TicketStore{
		data:   make(map[string]*domain.Ticket),
		byMint: make(map[string]string),
		events: events,
	}
}

// Compile-time interface check.
var _ storage.TicketStore = (*TicketStore)(nil)

// Insert adds a new ticket. Returns ErrDuplicateKey if the id or the
// mint address already exists.
func (s *TicketStore) Insert(_ context.Context, t *domain.Ticket) error {
	if t == nil || t.ID == "" || t.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byMint[t.MintAddress]; exists {
		return storage.ErrDuplicateKey
	}

	ticketCopy := *t
	s.data[t.ID] = &ticketCopy
	s.byMint[t.MintAddress] = t.ID
	return nil
}

// GetByMint retrieves a ticket by mint address.
func (s *TicketStore) GetByMint(_ context.Context, mintAddress string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byMint[mintAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	ticketCopy := *s.data[id]
	return &ticketCopy, nil
}

// ListByOwner retrieves tickets held by a wallet, joined to their events,
// ordered by created_at descending.
func (s *TicketStore) ListByOwner(ctx context.Context, ownerWallet string) ([]*domain.UserTicket, error) {
	s.mu.Lock()
	var matched []*domain.Ticket
	for _, t := range s.data {
		if t.OwnerWallet == ownerWallet {
			ticketCopy := *t
			matched = append(matched, &ticketCopy)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	result := make([]*domain.UserTicket, 0, len(matched))
	for _, t := range matched {
		ut := &domain.UserTicket{Ticket: *t}
		if s.events != nil {
			e, err := s.events.GetByID(ctx, t.EventID)
			if err == nil {
				ut.Event = *e
			}
		}
		result = append(result, ut)
	}

	return result, nil
}

// ListUnchecked retrieves all tickets with checked_in = false.
func (s *TicketStore) ListUnchecked(_ context.Context) ([]*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Ticket
	for _, t := range s.data {
		if !t.CheckedIn {
			ticketCopy := *t
			result = append(result, &ticketCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// MarkCheckedIn sets checked_in = true only if it is still false.
// The whole check-and-set happens under the store mutex, giving the same
// exactly-one-winner guarantee as the SQL conditional update.
func (s *TicketStore) MarkCheckedIn(_ context.Context, ticketID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[ticketID]
	if !exists {
		return false, storage.ErrNotFound
	}
	if t.CheckedIn {
		return false, nil
	}

	t.CheckedIn = true
	return true, nil
}
