// Package index provides SQLite-backed storage of imported decisions with
// optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	filename    TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	date        DATETIME NOT NULL,
	format      TEXT NOT NULL DEFAULT 'Markdown',
	content     TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	batch_id    TEXT NOT NULL DEFAULT '',
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS decision_links (
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	type     TEXT NOT NULL,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
	position INTEGER PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL DEFAULT '',
	format   TEXT NOT NULL DEFAULT 'Markdown',
	content  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_decisions_status ON decisions(status);
CREATE INDEX IF NOT EXISTS idx_links_source ON decision_links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON decision_links(target);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
