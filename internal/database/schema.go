package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the catalog schema. Statements are idempotent so Migrate can
// run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		slug       TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		base_url   TEXT NOT NULL,
		language   TEXT NOT NULL DEFAULT '',
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id   UUID PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id                  UUID PRIMARY KEY,
		url                 TEXT NOT NULL UNIQUE,
		title               TEXT NOT NULL,
		summary             TEXT NOT NULL DEFAULT '',
		body                TEXT NOT NULL DEFAULT '',
		content_mode        TEXT NOT NULL,
		image_url           TEXT NOT NULL DEFAULT '',
		published_at        TIMESTAMPTZ NOT NULL,
		published_estimated BOOLEAN NOT NULL DEFAULT FALSE,
		source_slug         TEXT NOT NULL REFERENCES sources(slug),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_published_at
		ON articles (published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_source_published
		ON articles (source_slug, published_at DESC)`,
	`CREATE TABLE IF NOT EXISTS article_categories (
		article_id  UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (article_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ingestion_runs (
		id          UUID PRIMARY KEY,
		source_slug TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		candidates  INTEGER NOT NULL DEFAULT 0,
		fetched     INTEGER NOT NULL DEFAULT 0,
		parsed      INTEGER NOT NULL DEFAULT 0,
		created     INTEGER NOT NULL DEFAULT 0,
		updated     INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		success     BOOLEAN NOT NULL DEFAULT FALSE,
		errors      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ingestion_runs_source_started
		ON ingestion_runs (source_slug, started_at DESC)`,
}

// Migrate creates the catalog schema if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
