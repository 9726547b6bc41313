package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Column type tokens used in the DDL below. Each dialect substitutes its own
// types so that one schema serves MySQL, Postgres and SQLite.
var typeTokens = map[Dialect]*strings.Replacer{
	MySQL: strings.NewReplacer(
		"{{ID}}", "VARCHAR(36)",
		"{{STR}}", "VARCHAR(255)",
		"{{TEXT}}", "TEXT",
		"{{TIME}}", "DATETIME(6)",
		"{{MONEY}}", "DOUBLE",
		"{{INT}}", "BIGINT",
		"{{BOOL}}", "BOOLEAN",
	),
	Postgres: strings.NewReplacer(
		"{{ID}}", "VARCHAR(36)",
		"{{STR}}", "VARCHAR(255)",
		"{{TEXT}}", "TEXT",
		"{{TIME}}", "TIMESTAMPTZ",
		"{{MONEY}}", "DOUBLE PRECISION",
		"{{INT}}", "BIGINT",
		"{{BOOL}}", "BOOLEAN",
	),
	SQLite: strings.NewReplacer(
		"{{ID}}", "TEXT",
		"{{STR}}", "TEXT",
		"{{TEXT}}", "TEXT",
		"{{TIME}}", "DATETIME",
		"{{MONEY}}", "REAL",
		"{{INT}}", "INTEGER",
		"{{BOOL}}", "BOOLEAN",
	),
}

// migrations is the ordered list of schema changes. Each entry is applied
// exactly once and recorded in schema_migrations. Append new migrations at
// the end; never edit an applied one.
var migrations = [][]string{
	// 1: users and sessions
	{
		`CREATE TABLE users (
			id            {{ID}} PRIMARY KEY,
			email         {{STR}} NOT NULL,
			password_hash {{STR}} NOT NULL,
			full_name     {{STR}} NOT NULL,
			phone_number  {{STR}},
			role          {{STR}} NOT NULL,
			status        {{STR}} NOT NULL,
			created_at    {{TIME}} NOT NULL,
			updated_at    {{TIME}} NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_users_email ON users (email)`,
	},
	// 2: marketplace
	{
		`CREATE TABLE marketplace_items (
			id           {{ID}} PRIMARY KEY,
			seller_id    {{ID}} NOT NULL REFERENCES users (id),
			title        {{STR}} NOT NULL,
			slug         {{STR}} NOT NULL,
			description  {{TEXT}},
			price        {{MONEY}} NOT NULL,
			currency     {{STR}} NOT NULL,
			status       {{STR}} NOT NULL,
			category     {{STR}},
			brand        {{STR}},
			coa_code     {{STR}},
			images       {{TEXT}},
			metadata     {{TEXT}},
			status_note  {{TEXT}},
			created_at   {{TIME}} NOT NULL,
			updated_at   {{TIME}} NOT NULL,
			published_at {{TIME}}
		)`,
		`CREATE UNIQUE INDEX idx_marketplace_items_slug ON marketplace_items (slug)`,
		`CREATE INDEX idx_marketplace_items_status ON marketplace_items (status, created_at)`,
		`CREATE INDEX idx_marketplace_items_seller ON marketplace_items (seller_id)`,
	},
	// 3: submissions and verification
	{
		`CREATE TABLE submissions (
			id           {{ID}} PRIMARY KEY,
			user_id      {{ID}},
			kind         {{STR}} NOT NULL,
			status       {{STR}} NOT NULL,
			name         {{STR}} NOT NULL,
			email        {{STR}} NOT NULL,
			phone        {{STR}},
			details      {{TEXT}} NOT NULL,
			item         {{TEXT}},
			admin_note   {{TEXT}},
			created_at   {{TIME}} NOT NULL,
			updated_at   {{TIME}} NOT NULL
		)`,
		`CREATE INDEX idx_submissions_status ON submissions (status, created_at)`,
		`CREATE TABLE verify_records (
			id           {{ID}} PRIMARY KEY,
			code         {{STR}} NOT NULL,
			product_name {{STR}},
			signatures   {{INT}} NOT NULL,
			result       {{STR}} NOT NULL,
			issued_by    {{ID}},
			lookups      {{INT}} NOT NULL,
			created_at   {{TIME}} NOT NULL,
			updated_at   {{TIME}} NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_verify_records_code ON verify_records (code)`,
	},
	// 4: activity and audit
	{
		`CREATE TABLE activity_events (
			id          {{ID}} PRIMARY KEY,
			user_id     {{ID}} NOT NULL,
			action      {{STR}} NOT NULL,
			entity_type {{STR}},
			entity_id   {{ID}},
			summary     {{TEXT}},
			created_at  {{TIME}} NOT NULL
		)`,
		`CREATE INDEX idx_activity_events_user ON activity_events (user_id, created_at)`,
		`CREATE TABLE audit_logs (
			id          {{ID}} PRIMARY KEY,
			actor_id    {{ID}} NOT NULL,
			action      {{STR}} NOT NULL,
			entity_type {{STR}} NOT NULL,
			entity_id   {{ID}} NOT NULL,
			from_status {{STR}},
			to_status   {{STR}},
			payload     {{TEXT}},
			created_at  {{TIME}} NOT NULL
		)`,
		`CREATE INDEX idx_audit_logs_created ON audit_logs (created_at)`,
		`CREATE INDEX idx_audit_logs_entity ON audit_logs (entity_type, entity_id)`,
	},
	// 5: per-user workspace (favorites, saved views, drafts, search history)
	{
		`CREATE TABLE favorites (
			user_id    {{ID}} NOT NULL,
			listing_id {{ID}} NOT NULL,
			created_at {{TIME}} NOT NULL,
			PRIMARY KEY (user_id, listing_id)
		)`,
		`CREATE TABLE saved_views (
			id         {{ID}} PRIMARY KEY,
			user_id    {{ID}} NOT NULL,
			name       {{STR}} NOT NULL,
			scope      {{STR}} NOT NULL,
			filters    {{TEXT}},
			created_at {{TIME}} NOT NULL,
			updated_at {{TIME}} NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_saved_views_user_name ON saved_views (user_id, name)`,
		`CREATE TABLE drafts (
			user_id    {{ID}} NOT NULL,
			draft_key  {{STR}} NOT NULL,
			payload    {{TEXT}} NOT NULL,
			updated_at {{TIME}} NOT NULL,
			PRIMARY KEY (user_id, draft_key)
		)`,
		`CREATE TABLE search_history (
			id         {{ID}} PRIMARY KEY,
			user_id    {{ID}} NOT NULL,
			query      {{STR}} NOT NULL,
			query_norm {{STR}} NOT NULL,
			created_at {{TIME}} NOT NULL
		)`,
		`CREATE INDEX idx_search_history_user ON search_history (user_id, created_at)`,
	},
	// 6: CMS collections, globals and notifications
	{
		`CREATE TABLE posts (
			id           {{ID}} PRIMARY KEY,
			author_id    {{ID}} NOT NULL,
			title        {{STR}} NOT NULL,
			slug         {{STR}} NOT NULL,
			excerpt      {{TEXT}},
			body         {{TEXT}},
			cover_image  {{STR}},
			status       {{STR}} NOT NULL,
			published_at {{TIME}},
			created_at   {{TIME}} NOT NULL,
			updated_at   {{TIME}} NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_posts_slug ON posts (slug)`,
		`CREATE TABLE events (
			id          {{ID}} PRIMARY KEY,
			author_id   {{ID}} NOT NULL,
			title       {{STR}} NOT NULL,
			slug        {{STR}} NOT NULL,
			description {{TEXT}},
			location    {{STR}},
			cover_image {{STR}},
			status      {{STR}} NOT NULL,
			starts_at   {{TIME}} NOT NULL,
			ends_at     {{TIME}},
			created_at  {{TIME}} NOT NULL,
			updated_at  {{TIME}} NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_events_slug ON events (slug)`,
		`CREATE TABLE settings (
			setting_key   {{STR}} PRIMARY KEY,
			setting_value {{TEXT}} NOT NULL,
			description   {{STR}},
			updated_at    {{TIME}} NOT NULL
		)`,
		`CREATE TABLE notifications (
			id         {{ID}} PRIMARY KEY,
			user_id    {{ID}} NOT NULL,
			message    {{TEXT}} NOT NULL,
			link       {{STR}},
			is_read    {{BOOL}} NOT NULL,
			created_at {{TIME}} NOT NULL
		)`,
		`CREATE INDEX idx_notifications_user ON notifications (user_id, is_read, created_at)`,
	},
}

// Migrate applies every migration that has not been recorded yet.
func Migrate(db *sql.DB, dialect Dialect) error {
	replacer, ok := typeTokens[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}

	create := replacer.Replace(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    {{INT}} PRIMARY KEY,
		applied_at {{TIME}} NOT NULL
	)`)
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
		for _, stmt := range migrations[i] {
			if _, err := tx.Exec(replacer.Replace(stmt)); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}
		insert := dialect.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`)
		if _, err := tx.Exec(insert, version, time.Now().UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}
