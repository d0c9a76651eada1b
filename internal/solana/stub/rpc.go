// Package stub provides in-memory solana client implementations for testing.
package stub

import (
	"context"
	"errors"
	"sync"

	"solana-ticket-gate/internal/solana"
)

// ErrUnavailable simulates an unreachable RPC node.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu sync.Mutex

	// Accounts maps pubkey to account info. Absent keys report "no account".
	Accounts map[string]*solana.AccountInfo

	// TokenAccounts maps owner -> programID -> accounts.
	TokenAccounts map[string]map[string][]solana.TokenAccount

	// AccountInfoErr, when set, makes GetAccountInfo fail.
	AccountInfoErr error

	// TokenAccountsErr maps programID to an error for that program's
	// getTokenAccountsByOwner calls, to simulate one variant failing while
	// the other still answers.
	TokenAccountsErr map[string]error
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:         make(map[string]*solana.AccountInfo),
		TokenAccounts:    make(map[string]map[string][]solana.TokenAccount),
		TokenAccountsErr: make(map[string]error),
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// GetAccountInfo retrieves account info from the stub store.
// Returns nil for unknown accounts, matching the RPC client contract.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AccountInfoErr != nil {
		return nil, c.AccountInfoErr
	}
	return c.Accounts[pubkey], nil
}

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, programID string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.TokenAccountsErr[programID]; err != nil {
		return nil, err
	}

	byProgram, ok := c.TokenAccounts[owner]
	if !ok {
		return nil, nil
	}
	return byProgram[programID], nil
}

// AddAccount registers an existing on-chain account.
func (c *RPCClient) AddAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info == nil {
		info = &solana.AccountInfo{Lamports: 1}
	}
	c.Accounts[pubkey] = info
}

// AddTokenAccount registers a token account for an owner under a program.
func (c *RPCClient) AddTokenAccount(owner, programID string, acct solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byProgram, ok := c.TokenAccounts[owner]
	if !ok {
		byProgram = make(map[string][]solana.TokenAccount)
		c.TokenAccounts[owner] = byProgram
	}
	byProgram[programID] = append(byProgram[programID], acct)
}
