package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

func newEvent(name string, date time.Time) *domain.Event {
	return &domain.Event{
		ID:          uuid.NewString(),
		Name:        name,
		Date:        date,
		Price:       decimal.NewFromInt(1),
		TotalSupply: 10,
		CreatedAt:   time.Now().UTC(),
	}
}

func newTicket(eventID, mint, owner string, createdAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:          uuid.NewString(),
		EventID:     eventID,
		MintAddress: mint,
		OwnerWallet: owner,
		CreatedAt:   createdAt,
	}
}

func TestEventStore(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	later := newEvent("Later", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC))
	sooner := newEvent("Sooner", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Insert(ctx, later))
	require.NoError(t, store.Insert(ctx, sooner))

	assert.ErrorIs(t, store.Insert(ctx, later), storage.ErrDuplicateKey)
	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)

	got, err := store.GetByID(ctx, sooner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sooner", got.Name)

	_, err = store.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Sooner", events[0].Name)

	// Returned values are copies; mutating them must not touch the store.
	events[0].Name = "Mutated"
	got, err = store.GetByID(ctx, sooner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sooner", got.Name)
}

func TestTicketStoreInsertAndGet(t *testing.T) {
	store := NewTicketStore(nil)
	ctx := context.Background()

	ticket := newTicket(uuid.NewString(), "Mint1", "WalletA", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, ticket))

	assert.ErrorIs(t, store.Insert(ctx, ticket), storage.ErrDuplicateKey)

	dupMint := newTicket(uuid.NewString(), "Mint1", "WalletB", time.Now().UTC())
	assert.ErrorIs(t, store.Insert(ctx, dupMint), storage.ErrDuplicateKey)

	got, err := store.GetByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = store.GetByMint(ctx, "Missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTicketStoreListByOwnerJoinsEvents(t *testing.T) {
	events := NewEventStore()
	store := NewTicketStore(events)
	ctx := context.Background()

	event := newEvent("Joined", time.Now().Add(time.Hour).UTC())
	require.NoError(t, events.Insert(ctx, event))

	now := time.Now().UTC()
	older := newTicket(event.ID, "MintOld", "WalletA", now.Add(-time.Hour))
	newer := newTicket(event.ID, "MintNew", "WalletA", now)
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	tickets, err := store.ListByOwner(ctx, "WalletA")
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "MintNew", tickets[0].MintAddress)
	assert.Equal(t, "Joined", tickets[0].Event.Name)

	none, err := store.ListByOwner(ctx, "WalletZ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTicketStoreMarkCheckedIn(t *testing.T) {
	store := NewTicketStore(nil)
	ctx := context.Background()

	ticket := newTicket(uuid.NewString(), "Mint1", "WalletA", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, ticket))

	flipped, err := store.MarkCheckedIn(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = store.MarkCheckedIn(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	_, err = store.MarkCheckedIn(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	unchecked, err := store.ListUnchecked(ctx)
	require.NoError(t, err)
	assert.Empty(t, unchecked)
}

func TestCheckinAttemptStore(t *testing.T) {
	store := NewCheckinAttemptStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.CheckinAttempt{
		MintAddress: "Mint1",
		Outcome:     "checked_in",
		DurationMs:  12,
		AttemptedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Insert(ctx, &domain.CheckinAttempt{
		MintAddress: "Mint1",
		Outcome:     "already_used",
		AttemptedAt: time.Now().UTC(),
	}))

	assert.ErrorIs(t, store.Insert(ctx, &domain.CheckinAttempt{}), storage.ErrInvalidInput)

	counts, err := store.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counts["checked_in"])
	assert.Equal(t, uint64(1), counts["already_used"])
	assert.Len(t, store.Attempts(), 2)
}
