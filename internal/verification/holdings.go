package verification

import (
	"context"

	"solana-ticket-gate/internal/solana"
)

// HoldingsSource lists the token accounts a wallet holds under one
// token-program variant. Each source is independently fallible: an error
// from one must not block the ownership check through the others.
type HoldingsSource interface {
	// ProgramID identifies the token program this source queries.
	ProgramID() string

	// ListByOwner returns the owner's token accounts under this program.
	ListByOwner(ctx context.Context, owner string) ([]solana.TokenAccount, error)
}

// TokenProgramHoldings is a HoldingsSource backed by an RPC client.
type TokenProgramHoldings struct {
	rpc       solana.RPCClient
	programID string
}

// NewTokenProgramHoldings creates a HoldingsSource for one token program.
func NewTokenProgramHoldings(rpc solana.RPCClient, programID string) *TokenProgramHoldings {
	return &TokenProgramHoldings{rpc: rpc, programID: programID}
}

// ProgramID identifies the token program this source queries.
func (h *TokenProgramHoldings) ProgramID() string {
	return h.programID
}

// ListByOwner returns the owner's token accounts under this program.
func (h *TokenProgramHoldings) ListByOwner(ctx context.Context, owner string) ([]solana.TokenAccount, error) {
	return h.rpc.GetTokenAccountsByOwner(ctx, owner, h.programID)
}

// DefaultHoldingsSources returns sources for the legacy SPL Token program
// and Token-2022, the two programs ticket mints can live under.
func DefaultHoldingsSources(rpc solana.RPCClient) []HoldingsSource {
	return []HoldingsSource{
		NewTokenProgramHoldings(rpc, solana.TokenProgramID),
		NewTokenProgramHoldings(rpc, solana.Token2022ProgramID),
	}
}
