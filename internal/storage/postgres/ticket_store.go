package postgres

import (
	"context"
	"fmt"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// TicketStore implements storage.TicketStore using PostgreSQL.
type TicketStore struct {
	pool *Pool
}

// NewTicketStore creates a new TicketStore.
func NewTicketStore(pool *Pool) *TicketStore {
	return &TicketStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TicketStore = (*TicketStore)(nil)

// Insert adds a new ticket. Returns ErrDuplicateKey if the id or the
// mint address already exists.
func (s *TicketStore) Insert(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, event_id, mint_address, owner_wallet, checked_in, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.EventID,
		t.MintAddress,
		t.OwnerWallet,
		t.CheckedIn,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByMint retrieves a ticket by mint address. Returns ErrNotFound if
// not exists.
func (s *TicketStore) GetByMint(ctx context.Context, mintAddress string) (*domain.Ticket, error) {
	query := `
		SELECT id, event_id, mint_address, owner_wallet, checked_in, created_at
		FROM tickets
		WHERE mint_address = $1
	`

	var t domain.Ticket
	err := s.pool.QueryRow(ctx, query, mintAddress).Scan(
		&t.ID,
		&t.EventID,
		&t.MintAddress,
		&t.OwnerWallet,
		&t.CheckedIn,
		&t.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket by mint: %w", err)
	}
	return &t, nil
}

// ListByOwner retrieves tickets held by a wallet, joined to their events,
// ordered by created_at descending.
func (s *TicketStore) ListByOwner(ctx context.Context, ownerWallet string) ([]*domain.UserTicket, error) {
	query := `
		SELECT t.id, t.event_id, t.mint_address, t.owner_wallet, t.checked_in, t.created_at,
		       e.id, e.name, e.description, e.date, e.price, e.total_supply, e.created_at
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.owner_wallet = $1
		ORDER BY t.created_at DESC, t.id DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerWallet)
	if err != nil {
		return nil, fmt.Errorf("list tickets by owner: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.UserTicket
	for rows.Next() {
		var ut domain.UserTicket
		err := rows.Scan(
			&ut.ID,
			&ut.EventID,
			&ut.MintAddress,
			&ut.OwnerWallet,
			&ut.CheckedIn,
			&ut.CreatedAt,
			&ut.Event.ID,
			&ut.Event.Name,
			&ut.Event.Description,
			&ut.Event.Date,
			&ut.Event.Price,
			&ut.Event.TotalSupply,
			&ut.Event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user ticket row: %w", err)
		}
		tickets = append(tickets, &ut)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ticket rows: %w", err)
	}

	return tickets, nil
}

// ListUnchecked retrieves all tickets with checked_in = false.
func (s *TicketStore) ListUnchecked(ctx context.Context) ([]*domain.Ticket, error) {
	query := `
		SELECT id, event_id, mint_address, owner_wallet, checked_in, created_at
		FROM tickets
		WHERE checked_in = FALSE
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unchecked tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		err := rows.Scan(
			&t.ID,
			&t.EventID,
			&t.MintAddress,
			&t.OwnerWallet,
			&t.CheckedIn,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

// MarkCheckedIn sets checked_in = true only if it is still false.
// The guard in the WHERE clause makes the write a compare-and-set: two
// concurrent check-ins of the same ticket race on this statement and the
// loser sees zero rows affected.
func (s *TicketStore) MarkCheckedIn(ctx context.Context, ticketID string) (bool, error) {
	query := `
		UPDATE tickets
		SET checked_in = TRUE
		WHERE id = $1 AND checked_in = FALSE
	`

	tag, err := s.pool.Exec(ctx, query, ticketID)
	if err != nil {
		return false, fmt.Errorf("mark ticket checked in: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
