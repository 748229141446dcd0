package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by MigrateUp. Every statement is idempotent.
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS news_feed_seq`,
	`CREATE TABLE IF NOT EXISTS news_articles (
    id            BIGSERIAL PRIMARY KEY,
    author        TEXT NOT NULL DEFAULT '',
    content       TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    published_at  TEXT NOT NULL DEFAULT '',
    source_id     TEXT NOT NULL DEFAULT '',
    source_name   TEXT NOT NULL DEFAULT '',
    title         TEXT NOT NULL DEFAULT '',
    url           TEXT NOT NULL UNIQUE,
    url_to_image  TEXT NOT NULL DEFAULT '',
    is_favorite   BOOLEAN NOT NULL DEFAULT FALSE,
    favorited_at  TIMESTAMPTZ,
    feed_seq      BIGINT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// 既存テーブルへのカラム追加
	`ALTER TABLE news_articles ADD COLUMN IF NOT EXISTS favorited_at TIMESTAMPTZ`,
	`ALTER TABLE news_articles ADD COLUMN IF NOT EXISTS feed_seq BIGINT`,
	`CREATE INDEX IF NOT EXISTS idx_news_articles_feed_seq ON news_articles(feed_seq) WHERE feed_seq IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_news_articles_favorites ON news_articles(favorited_at DESC) WHERE is_favorite`,
	`CREATE TABLE IF NOT EXISTS news_sources (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    language     TEXT NOT NULL DEFAULT '',
    country      TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS feed_remote_keys (
    id            SMALLINT PRIMARY KEY CHECK (id = 1),
    country       TEXT NOT NULL,
    last_page     INT NOT NULL,
    end_reached   BOOLEAN NOT NULL DEFAULT FALSE,
    refreshed_at  TIMESTAMPTZ NOT NULL
)`,
}

// MigrateUp creates the schema.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateUp: statement %d: %w", i, err)
		}
	}
	return nil
}

// MigrateDown drops every table and sequence created by MigrateUp.
// Use with caution: favorites are deleted too.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`DROP TABLE IF EXISTS feed_remote_keys`,
		`DROP TABLE IF EXISTS news_sources`,
		`DROP TABLE IF EXISTS news_articles`,
		`DROP SEQUENCE IF EXISTS news_feed_seq`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateDown: %w", err)
		}
	}
	return nil
}
