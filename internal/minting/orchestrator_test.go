package minting

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/storage"
	"solana-ticket-gate/internal/storage/memory"
)

// stubMinter is a Minter for tests.
type stubMinter struct {
	mintAddress string
	err         error
	calls       []MintRequest
}

func (m *stubMinter) Mint(_ context.Context, req MintRequest) (*MintResult, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &MintResult{MintAddress: m.mintAddress}, nil
}

// testWallet generates a base58-encoded ed25519 public key, guaranteed
// on-curve.
func testWallet(t *testing.T) string {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}

func seedEvent(t *testing.T, events *memory.EventStore) *domain.Event {
	t.Helper()

	event := &domain.Event{
		ID:          uuid.NewString(),
		Name:        "Solana Breakpoint",
		Description: "Annual conference",
		Date:        time.Now().Add(30 * 24 * time.Hour).UTC(),
		Price:       decimal.NewFromFloat(0.5),
		TotalSupply: 100,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, events.Insert(context.Background(), event))
	return event
}

func newOrchestrator(t *testing.T, events *memory.EventStore, tickets *memory.TicketStore, minter Minter) *Orchestrator {
	t.Helper()

	o, err := NewOrchestrator(OrchestratorOptions{
		Events:  events,
		Tickets: tickets,
		Minter:  minter,
	})
	require.NoError(t, err)
	return o
}

func TestMintTicketHappyPath(t *testing.T) {
	events := memory.NewEventStore()
	tickets := memory.NewTicketStore(events)
	minter := &stubMinter{mintAddress: "MintedNFT111"}
	o := newOrchestrator(t, events, tickets, minter)

	event := seedEvent(t, events)
	wallet := testWallet(t)

	ticket, err := o.MintTicket(context.Background(), event.ID, wallet)
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, event.ID, ticket.EventID)
	assert.Equal(t, "MintedNFT111", ticket.MintAddress)
	assert.Equal(t, wallet, ticket.OwnerWallet)
	assert.False(t, ticket.CheckedIn)

	// The minter saw the event metadata.
	require.Len(t, minter.calls, 1)
	assert.Equal(t, event.Name, minter.calls[0].EventName)
	assert.Equal(t, wallet, minter.calls[0].BuyerWallet)

	// The ticket row is queryable by mint address.
	stored, err := tickets.GetByMint(context.Background(), "MintedNFT111")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, stored.ID)
}

func TestMintTicketValidation(t *testing.T) {
	events := memory.NewEventStore()
	tickets := memory.NewTicketStore(events)
	o := newOrchestrator(t, events, tickets, &stubMinter{mintAddress: "M"})

	event := seedEvent(t, events)
	wallet := testWallet(t)

	tests := []struct {
		name    string
		eventID string
		wallet  string
		wantErr error
	}{
		{"missing event id", "", wallet, ErrMissingField},
		{"missing wallet", event.ID, "", ErrMissingField},
		{"malformed wallet", event.ID, "not-base58-0OIl", ErrInvalidWallet},
		{"short wallet", event.ID, "abc", ErrInvalidWallet},
		{"unknown event", uuid.NewString(), wallet, ErrEventNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.MintTicket(context.Background(), tt.eventID, tt.wallet)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMintTicketOffCurveWallet(t *testing.T) {
	events := memory.NewEventStore()
	tickets := memory.NewTicketStore(events)
	o := newOrchestrator(t, events, tickets, &stubMinter{mintAddress: "M"})

	event := seedEvent(t, events)

	// A valid 32-byte base58 string whose y coordinate has no matching x,
	// the shape of a program derived address.
	_, err := o.MintTicket(context.Background(), event.ID, "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	assert.ErrorIs(t, err, ErrWalletOffCurve)
}

func TestMintTicketMinterFailure(t *testing.T) {
	events := memory.NewEventStore()
	tickets := memory.NewTicketStore(events)
	minter := &stubMinter{err: errors.New("irys upload failed")}
	o := newOrchestrator(t, events, tickets, minter)

	event := seedEvent(t, events)

	_, err := o.MintTicket(context.Background(), event.ID, testWallet(t))
	require.Error(t, err)

	// No ticket row appears on mint failure.
	unchecked, listErr := tickets.ListUnchecked(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, unchecked)
}

func TestMintTicketDuplicateMintAddress(t *testing.T) {
	events := memory.NewEventStore()
	tickets := memory.NewTicketStore(events)
	minter := &stubMinter{mintAddress: "SameMint"}
	o := newOrchestrator(t, events, tickets, minter)

	event := seedEvent(t, events)

	_, err := o.MintTicket(context.Background(), event.ID, testWallet(t))
	require.NoError(t, err)

	_, err = o.MintTicket(context.Background(), event.ID, testWallet(t))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
