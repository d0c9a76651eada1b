package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"solana-ticket-gate/internal/observability"
	"solana-ticket-gate/internal/storage"
)

// Options configures the Server.
type Options struct {
	Events       storage.EventStore
	Tickets      storage.TicketStore
	Engine       checkInner
	Orchestrator ticketMinter

	// Health, when set, is probed by GET /status.
	Health healthChecker

	Logger *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	events       storage.EventStore
	tickets      storage.TicketStore
	engine       checkInner
	orchestrator ticketMinter
	health       healthChecker
	logger       *log.Logger
	started      time.Time
	router       chi.Router
}

// New creates the API server and builds its router.
func New(opts Options) (*Server, error) {
	if opts.Events == nil || opts.Tickets == nil {
		return nil, fmt.Errorf("event and ticket stores are required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("verification engine is required")
	}
	if opts.Orchestrator == nil {
		return nil, fmt.Errorf("minting orchestrator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		events:       opts.Events,
		tickets:      opts.Tickets,
		engine:       opts.Engine,
		orchestrator: opts.Orchestrator,
		health:       opts.Health,
		logger:       logger,
		started:      time.Now(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestMetrics)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", s.handleCreateEvent)
			r.Get("/", s.handleListEvents)
			r.Get("/{id}", s.handleGetEvent)
		})
		r.Post("/mint-ticket", s.handleMintTicket)
		r.Post("/check-in", s.handleCheckIn)
		r.Get("/tickets", s.handleListTickets)
	})

	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestMetrics records per-route request counts and latency.
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		observability.RecordHTTPRequest(route, ww.Status(), time.Since(start).Seconds())
	})
}
