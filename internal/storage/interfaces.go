// Package storage defines persistence interfaces and shared errors.
// Implementations live in the postgres, memory, and clickhouse subpackages.
package storage

import (
	"context"

	"solana-ticket-gate/internal/domain"
)

// EventStore provides access to events storage. Events are append-only:
// there are no update or delete operations.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// GetByID retrieves an event by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// List retrieves all events ordered by date ascending.
	List(ctx context.Context) ([]*domain.Event, error)
}

// TicketStore provides access to tickets storage. The only mutation is
// MarkCheckedIn, which flips checked_in false to true at most once.
type TicketStore interface {
	// Insert adds a new ticket. Returns ErrDuplicateKey if the id or the
	// mint address already exists.
	Insert(ctx context.Context, t *domain.Ticket) error

	// GetByMint retrieves a ticket by mint address.
	// Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mintAddress string) (*domain.Ticket, error)

	// ListByOwner retrieves tickets held by a wallet, joined to their
	// events, ordered by created_at descending.
	ListByOwner(ctx context.Context, ownerWallet string) ([]*domain.UserTicket, error)

	// ListUnchecked retrieves all tickets with checked_in = false.
	ListUnchecked(ctx context.Context) ([]*domain.Ticket, error)

	// MarkCheckedIn sets checked_in = true for the ticket, but only if it
	// is still false at write time. Returns true when the flag flipped,
	// false when another caller got there first. The conditional write is
	// what makes concurrent check-ins of the same ticket admit exactly one.
	MarkCheckedIn(ctx context.Context, ticketID string) (bool, error)
}

// CheckinAttemptStore records verification attempts for offline analytics.
// Append-only; the serving path never reads from it.
type CheckinAttemptStore interface {
	// Insert records one attempt.
	Insert(ctx context.Context, a *domain.CheckinAttempt) error

	// CountByOutcome returns attempt counts grouped by outcome tag.
	CountByOutcome(ctx context.Context) (map[string]uint64, error)
}
