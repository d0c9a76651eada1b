// Package main runs the ticket-gate API server: event CRUD, ticket
// minting, and the on-chain check-in verification endpoint, plus an
// optional background watcher for outstanding ticket mints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-ticket-gate/internal/minting"
	"solana-ticket-gate/internal/server"
	"solana-ticket-gate/internal/solana"
	"solana-ticket-gate/internal/storage"
	chstore "solana-ticket-gate/internal/storage/clickhouse"
	"solana-ticket-gate/internal/storage/memory"
	"solana-ticket-gate/internal/storage/migrations"
	pgstore "solana-ticket-gate/internal/storage/postgres"
	"solana-ticket-gate/internal/verification"
	"solana-ticket-gate/internal/watch"
)

// appStores holds the storage implementations behind the API.
type appStores struct {
	events   storage.EventStore
	tickets  storage.TicketStore
	attempts storage.CheckinAttemptStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", "https://api.devnet.solana.com"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (enables the mint watcher)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, check-in audit trail)")
	mintServiceURL := flag.String("mint-service-url", os.Getenv("MINT_SERVICE_URL"), "Minting service endpoint")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", false, "Apply migrations on startup")
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	watchInterval := flag.Duration("watch-interval", watch.DefaultRefreshInterval, "Mint watcher refresh interval")
	checkinTimeout := flag.Duration("checkin-timeout", verification.DefaultCallTimeout, "Per-call timeout during check-in verification")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *mintServiceURL == "" {
		logger.Fatal("--mint-service-url is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(*rpcEndpoint)

	engine, err := verification.New(verification.Options{
		Tickets:     stores.tickets,
		Accounts:    rpc,
		Holdings:    verification.DefaultHoldingsSources(rpc),
		Attempts:    stores.attempts,
		CallTimeout: *checkinTimeout,
		Logger:      log.New(os.Stdout, "[checkin] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create verification engine: %v", err)
	}

	orch, err := minting.NewOrchestrator(minting.OrchestratorOptions{
		Events:  stores.events,
		Tickets: stores.tickets,
		Minter:  minting.NewServiceClient(*mintServiceURL),
		Logger:  log.New(os.Stdout, "[minting] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create minting orchestrator: %v", err)
	}

	api, err := server.New(server.Options{
		Events:       stores.events,
		Tickets:      stores.tickets,
		Engine:       engine,
		Orchestrator: orch,
		Health:       rpc,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}

	// Mint watcher is optional: it needs a WebSocket endpoint.
	if *wsEndpoint != "" {
		go runWatcher(ctx, *wsEndpoint, *watchInterval, stores.tickets, logger)
	} else {
		logger.Println("No --ws-endpoint configured, mint watcher disabled")
	}

	srv := &http.Server{
		Addr:         *listenAddr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	cancel()

	go func() {
		sig := <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Graceful shutdown failed: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the storage layer. ClickHouse is optional: without
// a DSN the check-in audit trail is simply not recorded (memory mode
// keeps an in-memory one for local inspection).
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*appStores, func(), error) {
	if useMemory {
		events := memory.NewEventStore()
		stores := &appStores{
			events:   events,
			tickets:  memory.NewTicketStore(events),
			attempts: memory.NewCheckinAttemptStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
	}

	stores := &appStores{
		events:  pgstore.NewEventStore(pool),
		tickets: pgstore.NewTicketStore(pool),
	}
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if migrate {
			if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
				chConn.Close()
				pool.Close()
				return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
			}
		}
		stores.attempts = chstore.NewCheckinAttemptStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// runWatcher connects the WebSocket client and runs the mint watcher
// until the context is cancelled.
func runWatcher(ctx context.Context, wsEndpoint string, interval time.Duration, tickets storage.TicketStore, logger *log.Logger) {
	ws, err := solana.NewWSClient(ctx, wsEndpoint, nil)
	if err != nil {
		logger.Printf("Mint watcher disabled, websocket connect failed: %v", err)
		return
	}
	defer ws.Close()

	watcher, err := watch.New(watch.Options{
		Tickets:         tickets,
		Subscriber:      ws,
		RefreshInterval: interval,
		Logger:          log.New(os.Stdout, "[watch] ", log.LstdFlags),
	})
	if err != nil {
		logger.Printf("Mint watcher disabled: %v", err)
		return
	}

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		logger.Printf("Mint watcher stopped: %v", err)
	}
}

// envOr returns the environment value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
