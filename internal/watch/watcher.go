// Package watch monitors the mint accounts of outstanding tickets. On
// devnet the ledger is wiped periodically; a wiped mint means the ticket
// can no longer pass verification, and operators want to know before the
// holder reaches the gate.
package watch

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"solana-ticket-gate/internal/observability"
	"solana-ticket-gate/internal/solana"
	"solana-ticket-gate/internal/storage"
)

// DefaultRefreshInterval is how often the watch set is resynced against
// the ticket store.
const DefaultRefreshInterval = 1 * time.Minute

// Options configures the MintWatcher.
type Options struct {
	// Tickets supplies the outstanding (un-checked-in) tickets. Required.
	Tickets storage.TicketStore

	// Subscriber delivers account change notifications. Required.
	Subscriber solana.AccountSubscriber

	// RefreshInterval is how often the watch set is resynced.
	// Defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration

	Logger *log.Logger
}

// MintWatcher subscribes to every outstanding ticket's mint account and
// reports mints that vanish on-chain.
type MintWatcher struct {
	tickets    storage.TicketStore
	subscriber solana.AccountSubscriber
	interval   time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	watched map[string]context.CancelFunc // mint address -> stop func
}

// New creates a mint watcher.
func New(opts Options) (*MintWatcher, error) {
	if opts.Tickets == nil {
		return nil, fmt.Errorf("ticket store is required")
	}
	if opts.Subscriber == nil {
		return nil, fmt.Errorf("account subscriber is required")
	}

	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &MintWatcher{
		tickets:    opts.Tickets,
		subscriber: opts.Subscriber,
		interval:   interval,
		logger:     logger,
		watched:    make(map[string]context.CancelFunc),
	}, nil
}

// Run resyncs the watch set immediately and then on every tick, until ctx
// is cancelled.
func (w *MintWatcher) Run(ctx context.Context) error {
	if err := w.resync(ctx); err != nil {
		w.logger.Printf("initial watch-set sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.stopAll()
			return ctx.Err()
		case <-ticker.C:
			if err := w.resync(ctx); err != nil {
				w.logger.Printf("watch-set sync failed: %v", err)
			}
		}
	}
}

// resync aligns the subscription set with the store: new unchecked mints
// gain a subscription, checked-in mints lose theirs.
func (w *MintWatcher) resync(ctx context.Context) error {
	tickets, err := w.tickets.ListUnchecked(ctx)
	if err != nil {
		return fmt.Errorf("list unchecked tickets: %w", err)
	}
	observability.RecordWatcherResync()

	current := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		current[t.MintAddress] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for mint, cancel := range w.watched {
		if !current[mint] {
			cancel()
			delete(w.watched, mint)
		}
	}

	for mint := range current {
		if _, ok := w.watched[mint]; ok {
			continue
		}

		subCtx, cancel := context.WithCancel(ctx)
		notifs, err := w.subscriber.SubscribeAccount(subCtx, mint)
		if err != nil {
			cancel()
			w.logger.Printf("subscribe to mint %s failed: %v", mint, err)
			continue
		}

		w.watched[mint] = cancel
		go w.consume(mint, notifs)
	}

	observability.UpdateWatchedMints(len(w.watched))
	return nil
}

func (w *MintWatcher) consume(mint string, notifs <-chan solana.AccountNotification) {
	for n := range notifs {
		if n.Deleted {
			w.logger.Printf("mint %s no longer exists on-chain (slot %d); its ticket will fail check-in", mint, n.Slot)
			observability.RecordMintDeletion()
		}
	}
}

func (w *MintWatcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for mint, cancel := range w.watched {
		cancel()
		delete(w.watched, mint)
	}
	observability.UpdateWatchedMints(0)
}

// WatchedCount returns the number of mints currently under subscription.
func (w *MintWatcher) WatchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}
