package server

import (
	"time"

	"github.com/shopspring/decimal"

	"solana-ticket-gate/internal/domain"
)

// errorResponse is the envelope for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

type createEventRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	TotalSupply int             `json:"totalSupply"`
}

type eventResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	TotalSupply int             `json:"totalSupply"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		Price:       e.Price,
		TotalSupply: e.TotalSupply,
		CreatedAt:   e.CreatedAt,
	}
}

type mintTicketRequest struct {
	EventID     string `json:"eventId"`
	BuyerWallet string `json:"buyerWallet"`
}

// mintTicketResponse mirrors the minting contract: success with a mint
// address, or failure with a message.
type mintTicketResponse struct {
	Success     bool   `json:"success"`
	MintAddress string `json:"mintAddress,omitempty"`
	Error       string `json:"error,omitempty"`
}

type checkInRequest struct {
	MintAddress string `json:"mintAddress"`
}

type checkInResponse struct {
	Outcome string `json:"outcome"`
}

type ticketResponse struct {
	ID          string        `json:"id"`
	EventID     string        `json:"eventId"`
	MintAddress string        `json:"mintAddress"`
	OwnerWallet string        `json:"ownerWallet"`
	CheckedIn   bool          `json:"checkedIn"`
	CreatedAt   time.Time     `json:"createdAt"`
	Event       eventResponse `json:"event"`
}

func toTicketResponse(t *domain.UserTicket) ticketResponse {
	return ticketResponse{
		ID:          t.ID,
		EventID:     t.EventID,
		MintAddress: t.MintAddress,
		OwnerWallet: t.OwnerWallet,
		CheckedIn:   t.CheckedIn,
		CreatedAt:   t.CreatedAt,
		Event:       toEventResponse(&t.Event),
	}
}
