package database

import (
	"context"

	"github.com/uptrace/bun"
)

// Migrate creates the schema if it does not exist yet. The UNIQUE constraints
// on (source, source_id) and slug are what the ingestion upsert cascade keys on.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

		CREATE TABLE IF NOT EXISTS businesses (
			id           UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name         TEXT NOT NULL,
			slug         TEXT NOT NULL UNIQUE,
			category     TEXT NOT NULL,
			location     TEXT NOT NULL,
			address      TEXT,
			phone        TEXT,
			website      TEXT,
			description  TEXT,
			price_range  TEXT NOT NULL DEFAULT '$$',
			verified     BOOLEAN NOT NULL DEFAULT FALSE,
			latitude     DOUBLE PRECISION,
			longitude    DOUBLE PRECISION,
			source       TEXT NOT NULL,
			source_id    TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (source, source_id)
		);

		CREATE INDEX IF NOT EXISTS idx_businesses_category ON businesses(category);
		CREATE INDEX IF NOT EXISTS idx_businesses_location ON businesses(location);
		CREATE INDEX IF NOT EXISTS idx_businesses_price    ON businesses(price_range);

		CREATE TABLE IF NOT EXISTS business_stats (
			id               UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			business_id      UUID NOT NULL UNIQUE REFERENCES businesses(id) ON DELETE CASCADE,
			total_reviews    INT NOT NULL DEFAULT 0,
			average_rating   NUMERIC(3,2) NOT NULL DEFAULT 0,
			rating_histogram JSONB NOT NULL DEFAULT '{}',
			service_score    INT NOT NULL DEFAULT 0,
			price_score      INT NOT NULL DEFAULT 0,
			ambience_score   INT NOT NULL DEFAULT 0,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			token_version INT NOT NULL DEFAULT 0,
			roles         TEXT[] NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			jti         TEXT NOT NULL,
			token_hash  TEXT NOT NULL,
			device_info TEXT,
			revoked     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at  TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			business_id UUID NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating      INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			title       TEXT,
			body        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews(business_id);
	`)
	return err
}
