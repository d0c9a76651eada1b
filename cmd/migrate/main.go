// Package main applies the embedded database migrations. The server can
// also run them at startup with --migrate; this binary exists for
// deployments where schema changes are applied separately.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"solana-ticket-gate/internal/storage/clickhouse"
	"solana-ticket-gate/internal/storage/migrations"
	"solana-ticket-gate/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("at least one of --postgres-dsn or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("Failed to apply postgres migrations: %v", err)
		}
		pool.Close()
		logger.Println("PostgreSQL migrations applied")
	}

	if *clickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to clickhouse: %v", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			logger.Fatalf("Failed to apply clickhouse migrations: %v", err)
		}
		conn.Close()
		logger.Println("ClickHouse migrations applied")
	}
}
