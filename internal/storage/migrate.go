// Package storage holds the Postgres-backed stores for user preferences, the
// recommendation ledger, the place catalog and feedback, plus the Redis
// profile cache and the Elasticsearch catalog mirror.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"reco-workers/internal/common/database"
	"reco-workers/internal/common/logger"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		phone_number TEXT UNIQUE NOT NULL,
		preferred_distance_km DOUBLE PRECISION,
		preferred_price_range TEXT,
		preferences_categories TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		rating DOUBLE PRECISION,
		num_reviews INTEGER,
		UNIQUE (name, address)
	)`,
	`CREATE TABLE IF NOT EXISTS user_feedback (
		id SERIAL PRIMARY KEY,
		phone_number TEXT NOT NULL,
		restaurant_name TEXT NOT NULL,
		category TEXT,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		source TEXT,
		comment TEXT,
		time_of_day TEXT,
		restaurant_id INTEGER REFERENCES restaurants(id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendation_logs (
		id SERIAL PRIMARY KEY,
		phone_number TEXT NOT NULL,
		restaurant_name TEXT NOT NULL,
		time_of_day TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		restaurant_id INTEGER REFERENCES restaurants(id)
	)`,
	`ALTER TABLE restaurants ADD COLUMN IF NOT EXISTS place_id TEXT`,
	`ALTER TABLE recommendation_logs ADD COLUMN IF NOT EXISTS place_id TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_recommendation_logs_phone_created
		ON recommendation_logs (phone_number, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_user_feedback_phone ON user_feedback (phone_number)`,
}

// Migrate brings the schema up to date. It runs once at startup; the stores
// assume the tables exist.
func Migrate(ctx context.Context, pg *database.PostgresClient, log logger.Logger) error {
	err := pg.WithTx(ctx, func(tx *sql.Tx) error {
		for i, stmt := range migrations {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("schema migrations applied", map[string]interface{}{"statements": len(migrations)})
	return nil
}
