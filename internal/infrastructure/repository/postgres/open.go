package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	kind TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	text_it TEXT NOT NULL DEFAULT '',
	text_en TEXT NOT NULL DEFAULT '',
	txt_path_it TEXT NOT NULL DEFAULT '',
	txt_path_en TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_uploads_title ON uploads(title);

CREATE TABLE IF NOT EXISTS configs (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	language TEXT NOT NULL,
	questions_json TEXT NOT NULL,
	model_json TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_configs_path ON configs(path);
CREATE INDEX IF NOT EXISTS idx_configs_language ON configs(language);

CREATE TABLE IF NOT EXISTS ner_records (
	id TEXT PRIMARY KEY,
	doc_path TEXT NOT NULL,
	raw_file TEXT NOT NULL,
	dict_path TEXT NOT NULL,
	config_path TEXT NOT NULL,
	dict_json TEXT NOT NULL,
	config_json TEXT NOT NULL,
	model_json TEXT NOT NULL,
	language TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_ner_records_doc_path ON ner_records(doc_path);
CREATE INDEX IF NOT EXISTS idx_ner_records_config_path ON ner_records(config_path);

CREATE TABLE IF NOT EXISTS edit_log (
	id TEXT PRIMARY KEY,
	doc_path TEXT NOT NULL,
	text TEXT NOT NULL,
	edited_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edit_log_doc_path ON edit_log(doc_path, edited_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
