package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			id, name, description, date, price, total_supply, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ID,
		e.Name,
		e.Description,
		e.Date,
		e.Price,
		e.TotalSupply,
		e.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by id. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, name, description, date, price, total_supply, created_at
		FROM events
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	e, err := scanEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return e, nil
}

// List retrieves all events ordered by date ascending.
func (s *EventStore) List(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT id, name, description, date, price, total_supply, created_at
		FROM events
		ORDER BY date ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}

// scanEvent scans a single row into an Event.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.Price,
		&e.TotalSupply,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}
