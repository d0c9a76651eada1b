// Package server contains the chi HTTP layer: request decoding, response
// encoding, and the mapping from domain results to status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"solana-ticket-gate/internal/domain"
	"solana-ticket-gate/internal/minting"
	"solana-ticket-gate/internal/storage"
	"solana-ticket-gate/internal/verification"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleCreateEvent handles POST /api/events.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if req.TotalSupply <= 0 {
		writeError(w, http.StatusBadRequest, "totalSupply must be positive")
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	event := &domain.Event{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Price:       req.Price,
		TotalSupply: req.TotalSupply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.Insert(r.Context(), event); err != nil {
		s.logger.Printf("create event: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

// handleListEvents handles GET /api/events.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context())
	if err != nil {
		s.logger.Printf("list events: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Empty array rather than null for client compatibility.
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetEvent handles GET /api/events/{id}.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.Printf("get event %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

// handleMintTicket handles POST /api/mint-ticket.
func (s *Server) handleMintTicket(w http.ResponseWriter, r *http.Request) {
	var req mintTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, mintTicketResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	ticket, err := s.orchestrator.MintTicket(r.Context(), req.EventID, req.BuyerWallet)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, minting.ErrMissingField),
			errors.Is(err, minting.ErrInvalidWallet),
			errors.Is(err, minting.ErrWalletOffCurve),
			errors.Is(err, minting.ErrEventNotFound):
			status = http.StatusBadRequest
		default:
			s.logger.Printf("mint ticket: %v", err)
		}
		writeJSON(w, status, mintTicketResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, mintTicketResponse{
		Success:     true,
		MintAddress: ticket.MintAddress,
	})
}

// handleCheckIn handles POST /api/check-in. All five verification
// outcomes are 200 responses; only a failed state-changing write is an
// error status.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MintAddress == "" {
		writeError(w, http.StatusBadRequest, "mintAddress is required")
		return
	}

	outcome, err := s.engine.CheckIn(r.Context(), req.MintAddress)
	if err != nil {
		s.logger.Printf("check-in %s: %v", req.MintAddress, err)
		writeError(w, http.StatusInternalServerError, "check-in failed, ticket state unchanged")
		return
	}

	writeJSON(w, http.StatusOK, checkInResponse{Outcome: string(outcome)})
}

// handleListTickets handles GET /api/tickets?owner=<wallet>.
func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	tickets, err := s.tickets.ListByOwner(r.Context(), owner)
	if err != nil {
		s.logger.Printf("list tickets for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	resp := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus handles GET /status, reporting readiness of the RPC node.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}

	code := http.StatusOK
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.health.GetHealth(ctx); err != nil {
			status["status"] = "degraded"
			status["rpc"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["rpc"] = "ok"
		}
	}

	writeJSON(w, code, status)
}

// checkInner abstracts the verification engine for the handler layer.
type checkInner interface {
	CheckIn(ctx context.Context, mintAddress string) (verification.Outcome, error)
}

// ticketMinter abstracts the minting orchestrator for the handler layer.
type ticketMinter interface {
	MintTicket(ctx context.Context, eventID, buyerWallet string) (*domain.Ticket, error)
}

// healthChecker reports RPC node health for the status endpoint.
type healthChecker interface {
	GetHealth(ctx context.Context) error
}
