package domain

import "time"

// Ticket represents one minted NFT ticket.
// Corresponds to the tickets table in PostgreSQL. The only mutation a
// ticket ever sees is the checked_in flag flipping false to true, exactly
// once, through TicketStore.MarkCheckedIn.
type Ticket struct {
	ID          string // PRIMARY KEY, uuid
	EventID     string // FK to events.id
	MintAddress string // on-chain mint account, unique per ticket
	OwnerWallet string // buyer wallet public key (base58)
	CheckedIn   bool
	CreatedAt   time.Time
}

// UserTicket is a ticket joined to its event, as returned by the
// owner-wallet listing.
type UserTicket struct {
	Ticket
	Event Event
}

// CheckinAttempt is an audit record of a single verification attempt.
// Stored append-only in ClickHouse; never read on the serving path.
type CheckinAttempt struct {
	MintAddress string
	Outcome     string
	DurationMs  int64
	AttemptedAt time.Time
}
