package solana

import "context"

// RPCClient defines the Solana RPC queries the ticket gate depends on.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key.
	// Returns nil (no error) when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenAccountsByOwner retrieves all token accounts held by owner
	// under the given token program.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error)
}
