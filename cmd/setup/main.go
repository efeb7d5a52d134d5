package main

import (
	"context"
	"log"
	"os"

	"github.com/Domenick1991/railbooking/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS passengers (
	id BIGSERIAL,
	pnr VARCHAR(10) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	age INTEGER NOT NULL CHECK (age > 0),
	status VARCHAR(10) NOT NULL CHECK (status IN ('confirmed', 'waiting')),
	booking_time TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS passengers_waiting_idx ON passengers (booking_time, id) WHERE status = 'waiting';

CREATE TABLE IF NOT EXISTS seats (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	total INTEGER NOT NULL,
	available INTEGER NOT NULL CHECK (available >= 0)
);
`

// main provisions the schema and seeds the single seat-counter row with
// the configured capacity. Safe to run repeatedly; an existing counter
// row is left untouched.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	if _, err := pool.Exec(ctx, `INSERT INTO seats (id, total, available) VALUES (1, $1, $1) ON CONFLICT (id) DO NOTHING`, cfg.Reservation.MaxSeats); err != nil {
		log.Fatalf("seed seat counter: %v", err)
	}

	log.Printf("database setup completed, capacity %d seats", cfg.Reservation.MaxSeats)
}
