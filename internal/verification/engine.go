// Package verification implements the check-in decision procedure: given
// a mint address, decide from the ticket row and live on-chain state
// whether the holder should be admitted.
package verification

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/observability"
	"solana-ticket-gate/internal/solana"
	"solana-ticket-gate/internal/storage"
)

// DefaultCallTimeout bounds each external call made during verification.
const DefaultCallTimeout = 10 * time.Second

// AccountInspector answers whether an on-chain account exists.
type AccountInspector interface {
	// GetAccountInfo returns nil (no error) when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
}

// Options configures the Engine.
type Options struct {
	// Tickets is the ticket store. Required.
	Tickets storage.TicketStore

	// Accounts answers mint-account existence queries. Required.
	Accounts AccountInspector

	// Holdings are the token-program variants to probe for ownership,
	// tried in order, results unioned. Required, at least one.
	Holdings []HoldingsSource

	// Attempts, when set, receives an audit record per verification.
	// Recording is best-effort and never affects the outcome.
	Attempts storage.CheckinAttemptStore

	// CallTimeout bounds each external call. Defaults to DefaultCallTimeout.
	CallTimeout time.Duration

	// Logger receives fail-closed read errors. Defaults to a discard logger.
	Logger *log.Logger
}

// Engine decides check-in outcomes.
type Engine struct {
	tickets     storage.TicketStore
	accounts    AccountInspector
	holdings    []HoldingsSource
	attempts    storage.CheckinAttemptStore
	callTimeout time.Duration
	logger      *log.Logger
}

// New creates a verification engine.
func New(opts Options) (*Engine, error) {
	if opts.Tickets == nil {
		return nil, fmt.Errorf("ticket store is required")
	}
	if opts.Accounts == nil {
		return nil, fmt.Errorf("account inspector is required")
	}
	if len(opts.Holdings) == 0 {
		return nil, fmt.Errorf("at least one holdings source is required")
	}

	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		tickets:     opts.Tickets,
		accounts:    opts.Accounts,
		holdings:    opts.Holdings,
		attempts:    opts.Attempts,
		callTimeout: timeout,
		logger:      logger,
	}, nil
}

// CheckIn verifies the ticket identified by mintAddress and, when the
// ticket is valid and currently owned, marks it used.
//
// Read failures fail closed into the most conservative outcome of the
// step where they occur. The only hard error is a failure of the final
// conditional write: by then validation has passed, and swallowing the
// failure would let a ticket be reused.
func (e *Engine) CheckIn(ctx context.Context, mintAddress string) (Outcome, error) {
	start := time.Now()

	outcome, err := e.checkIn(ctx, mintAddress)
	if err != nil {
		return "", err
	}

	e.record(mintAddress, outcome, time.Since(start))
	observability.RecordCheckin(string(outcome), time.Since(start).Seconds())
	return outcome, nil
}

func (e *Engine) checkIn(ctx context.Context, mintAddress string) (Outcome, error) {
	// Step 1: ticket lookup. A read error is indistinguishable from an
	// absent row for admission purposes.
	ticket, err := e.getTicket(ctx, mintAddress)
	if err != nil {
		if err != storage.ErrNotFound {
			e.logger.Printf("ticket lookup failed for %s: %v", mintAddress, err)
		}
		return OutcomeNotFound, nil
	}

	// Step 2: idempotent rejection, no state change.
	if ticket.CheckedIn {
		return OutcomeAlreadyUsed, nil
	}

	// Step 3: mint account must still exist on-chain. A vanished mint
	// (devnet reset) is indistinguishable from one that never existed.
	if !e.mintExists(ctx, ticket.MintAddress) {
		return OutcomeMintNotFound, nil
	}

	// Steps 4-5: recorded owner must currently hold a positive-balance
	// token account for the mint under some program variant.
	if !e.ownsTicketMint(ctx, ticket) {
		return OutcomeInvalidOwner, nil
	}

	// Step 7: conditional write. Zero rows affected means a concurrent
	// check-in won the race after our step-2 read.
	flipped, err := e.tickets.MarkCheckedIn(ctx, ticket.ID)
	if err != nil {
		return "", fmt.Errorf("mark ticket %s checked in: %w", ticket.ID, err)
	}
	if !flipped {
		return OutcomeAlreadyUsed, nil
	}

	return OutcomeCheckedIn, nil
}

func (e *Engine) getTicket(ctx context.Context, mintAddress string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.tickets.GetByMint(ctx, mintAddress)
}

func (e *Engine) mintExists(ctx context.Context, mintAddress string) bool {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	info, err := e.accounts.GetAccountInfo(ctx, mintAddress)
	if err != nil {
		e.logger.Printf("mint existence check failed for %s: %v", mintAddress, err)
		return false
	}
	return info != nil
}

func (e *Engine) ownsTicketMint(ctx context.Context, ticket *domain.Ticket) bool {
	for _, source := range e.holdings {
		accounts, err := e.listHoldings(ctx, source, ticket.OwnerWallet)
		if err != nil {
			// One program's RPC hiccup must not block verification
			// through the other program.
			e.logger.Printf("holdings query failed for %s under %s: %v",
				ticket.OwnerWallet, source.ProgramID(), err)
			continue
		}

		for _, acct := range accounts {
			if acct.Mint == ticket.MintAddress && acct.Amount > 0 {
				return true
			}
		}
	}
	return false
}

func (e *Engine) listHoldings(ctx context.Context, source HoldingsSource, owner string) ([]solana.TokenAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return source.ListByOwner(ctx, owner)
}

// record writes the audit row. Failures are logged and dropped: the audit
// trail must never change an admission decision.
func (e *Engine) record(mintAddress string, outcome Outcome, took time.Duration) {
	if e.attempts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.callTimeout)
	defer cancel()

	attempt := &domain.CheckinAttempt{
		MintAddress: mintAddress,
		Outcome:     string(outcome),
		DurationMs:  took.Milliseconds(),
		AttemptedAt: time.Now().UTC(),
	}
	if err := e.attempts.Insert(ctx, attempt); err != nil {
		e.logger.Printf("record checkin attempt for %s: %v", mintAddress, err)
	}
}
