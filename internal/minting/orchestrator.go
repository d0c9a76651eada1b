package minting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/observability"
	"solana-ticket-gate/internal/solana"
	"solana-ticket-gate/internal/storage"
)

// Validation errors. Callers map these to 400 responses.
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidWallet  = errors.New("buyer wallet is not a valid public key")
	ErrWalletOffCurve = errors.New("buyer wallet is not on the ed25519 curve")
	ErrMissingField   = errors.New("eventId and buyerWallet are required")
)

// OrchestratorOptions configures the Orchestrator.
type OrchestratorOptions struct {
	Events  storage.EventStore
	Tickets storage.TicketStore
	Minter  Minter
	Logger  *log.Logger
}

// Orchestrator validates mint requests, drives the Minter, and records
// the resulting ticket row.
type Orchestrator struct {
	events  storage.EventStore
	tickets storage.TicketStore
	minter  Minter
	logger  *log.Logger
}

// NewOrchestrator creates a minting orchestrator.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Events == nil || opts.Tickets == nil || opts.Minter == nil {
		return nil, fmt.Errorf("event store, ticket store, and minter are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Orchestrator{
		events:  opts.Events,
		tickets: opts.Tickets,
		minter:  opts.Minter,
		logger:  logger,
	}, nil
}

// MintTicket mints one ticket for buyerWallet against eventID and stores
// the ticket row. The wallet must be a syntactically valid base58 key on
// the ed25519 curve: off-curve addresses (PDAs) cannot sign and could
// never present the ticket at the gate.
func (o *Orchestrator) MintTicket(ctx context.Context, eventID, buyerWallet string) (*domain.Ticket, error) {
	start := time.Now()

	ticket, err := o.mintTicket(ctx, eventID, buyerWallet)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.RecordMint(status, time.Since(start).Seconds())
	return ticket, err
}

func (o *Orchestrator) mintTicket(ctx context.Context, eventID, buyerWallet string) (*domain.Ticket, error) {
	if eventID == "" || buyerWallet == "" {
		return nil, ErrMissingField
	}
	if err := solana.ValidatePubkey(buyerWallet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	if !solana.IsOnCurve(buyerWallet) {
		return nil, ErrWalletOffCurve
	}

	event, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}

	result, err := o.minter.Mint(ctx, MintRequest{
		EventID:     event.ID,
		EventName:   event.Name,
		BuyerWallet: buyerWallet,
	})
	if err != nil {
		return nil, fmt.Errorf("mint ticket for event %s: %w", eventID, err)
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		EventID:     event.ID,
		MintAddress: result.MintAddress,
		OwnerWallet: buyerWallet,
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.tickets.Insert(ctx, ticket); err != nil {
		// The NFT exists on-chain but the row does not. Surface the
		// mint address so the failure can be reconciled by hand.
		o.logger.Printf("ticket insert failed after mint %s for event %s: %v",
			result.MintAddress, eventID, err)
		return nil, fmt.Errorf("store ticket for mint %s: %w", result.MintAddress, err)
	}

	o.logger.Printf("minted ticket %s (mint %s) for event %s", ticket.ID, ticket.MintAddress, eventID)
	return ticket, nil
}
