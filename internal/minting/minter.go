// Package minting creates NFT tickets. The actual on-chain mint is
// delegated to an external minting service; this package validates the
// request, drives the mint, and records the resulting ticket.
package minting

import (
	"context"
)

// MintRequest describes one ticket to mint.
type MintRequest struct {
	EventID     string
	EventName   string
	BuyerWallet string
}

// MintResult is a successful mint.
type MintResult struct {
	MintAddress string
}

// Minter performs the on-chain mint for one ticket.
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (*MintResult, error)
}
