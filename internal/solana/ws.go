package solana

import "context"

// AccountSubscriber defines Solana WebSocket account subscription interface.
type AccountSubscriber interface {
	// SubscribeAccount subscribes to state changes of one account.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification represents one account state change.
type AccountNotification struct {
	Pubkey   string
	Slot     int64
	Lamports uint64
	Owner    string
	// Deleted is true when the node reported no account state, i.e. the
	// account has been wiped (devnet reset) or closed.
	Deleted bool
}
