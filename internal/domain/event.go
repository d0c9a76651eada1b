// Package domain defines the core types shared across storage,
// verification, and transport layers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a ticketed event.
// Corresponds to the events table in PostgreSQL.
// Events are immutable after creation: there are no update or delete paths.
type Event struct {
	ID          string          // PRIMARY KEY, uuid
	Name        string
	Description string
	Date        time.Time       // event start time
	Price       decimal.Decimal // ticket price in SOL
	TotalSupply int             // maximum tickets mintable
	CreatedAt   time.Time
}
