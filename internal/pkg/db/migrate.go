package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is satisfied by *pgxpool.Pool, *Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "users table",
		sql: `
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			join_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_interaction TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			games_played BIGINT NOT NULL DEFAULT 0,
			quotes_read BIGINT NOT NULL DEFAULT 0,
			payments_requested BIGINT NOT NULL DEFAULT 0,
			successful_payments BIGINT NOT NULL DEFAULT 0,
			spam_count BIGINT NOT NULL DEFAULT 0,
			is_banned BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_users_last_interaction ON users(last_interaction DESC);
	`,
	},
	{
		name: "payments table",
		sql: `
		CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			amount TEXT,
			upi_id TEXT,
			transaction_id TEXT,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'processing', 'verified', 'rejected')),
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payments_status_time ON payments(status, timestamp DESC);
	`,
	},
	{
		name: "games table",
		sql: `
		CREATE TABLE IF NOT EXISTS games (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			game_type TEXT NOT NULL,
			result TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`,
	},
	{
		name: "quotes tables",
		sql: `
		CREATE TABLE IF NOT EXISTS quotes (
			id BIGSERIAL PRIMARY KEY,
			quote TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS user_quotes (
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			quote_id BIGINT NOT NULL REFERENCES quotes(id),
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, quote_id)
		);
	`,
	},
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Execer) error {
	log.Info().Msg("Running database migrations...")
	for i, m := range migrations {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Debug().Int("step", i+1).Str("name", m.name).Msg("Migration applied")
	}
	log.Info().Int("steps", len(migrations)).Msg("All migrations completed successfully")
	return nil
}
