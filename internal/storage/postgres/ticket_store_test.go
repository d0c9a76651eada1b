package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
)

// createTestEvent inserts an event for tickets to reference.
func createTestEvent(t *testing.T, ctx context.Context, pool *Pool) *domain.Event {
	t.Helper()

	store := NewEventStore(pool)
	event := newTestEvent("Ticketed Event", time.Date(2026, 10, 10, 20, 0, 0, 0, time.UTC))
	require.NoError(t, store.Insert(ctx, event))
	return event
}

func newTestTicket(eventID, mint, owner string) *domain.Ticket {
	return &domain.Ticket{
		ID:          uuid.NewString(),
		EventID:     eventID,
		MintAddress: mint,
		OwnerWallet: owner,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestTicketStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	ticket := newTestTicket(event.ID, "Mint1", "Wallet1")
	require.NoError(t, store.Insert(ctx, ticket))

	got, err := store.GetByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, event.ID, got.EventID)
	assert.Equal(t, "Wallet1", got.OwnerWallet)
	assert.False(t, got.CheckedIn)

	_, err = store.GetByMint(ctx, "NoSuchMint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTicketStore_InsertDuplicateMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	require.NoError(t, store.Insert(ctx, newTestTicket(event.ID, "Mint1", "Wallet1")))

	err := store.Insert(ctx, newTestTicket(event.ID, "Mint1", "Wallet2"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTicketStore_ListByOwner(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	older := newTestTicket(event.ID, "MintOld", "WalletA")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	newer := newTestTicket(event.ID, "MintNew", "WalletA")
	other := newTestTicket(event.ID, "MintOther", "WalletB")

	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))
	require.NoError(t, store.Insert(ctx, other))

	tickets, err := store.ListByOwner(ctx, "WalletA")
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	// Newest first, each joined to its event.
	assert.Equal(t, "MintNew", tickets[0].MintAddress)
	assert.Equal(t, "MintOld", tickets[1].MintAddress)
	assert.Equal(t, event.Name, tickets[0].Event.Name)
	assert.True(t, event.Price.Equal(tickets[0].Event.Price))
}

func TestTicketStore_ListUnchecked(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	open := newTestTicket(event.ID, "MintOpen", "WalletA")
	used := newTestTicket(event.ID, "MintUsed", "WalletA")
	require.NoError(t, store.Insert(ctx, open))
	require.NoError(t, store.Insert(ctx, used))

	flipped, err := store.MarkCheckedIn(ctx, used.ID)
	require.NoError(t, err)
	require.True(t, flipped)

	tickets, err := store.ListUnchecked(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "MintOpen", tickets[0].MintAddress)
}

func TestTicketStore_MarkCheckedIn(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	ticket := newTestTicket(event.ID, "Mint1", "Wallet1")
	require.NoError(t, store.Insert(ctx, ticket))

	flipped, err := store.MarkCheckedIn(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	// Second write loses the compare-and-set.
	flipped, err = store.MarkCheckedIn(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	got, err := store.GetByMint(ctx, "Mint1")
	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
}

func TestTicketStore_MarkCheckedIn_Concurrent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	event := createTestEvent(t, ctx, pool)
	store := NewTicketStore(pool)

	ticket := newTestTicket(event.ID, "MintRace", "Wallet1")
	require.NoError(t, store.Insert(ctx, ticket))

	const writers = 8
	results := make(chan bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flipped, err := store.MarkCheckedIn(ctx, ticket.ID)
			if err != nil {
				t.Errorf("MarkCheckedIn: %v", err)
				return
			}
			results <- flipped
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for flipped := range results {
		if flipped {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent writer may flip the flag")
}

func TestTicketStore_MarkCheckedIn_UnknownID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTicketStore(pool)

	flipped, err := store.MarkCheckedIn(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, flipped)
}
