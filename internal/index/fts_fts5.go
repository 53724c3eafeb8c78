//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/decisionlog/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS decisions_fts USING fts5(
			id UNINDEXED,
			title,
			content,
			status,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReset(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM decisions_fts`); err != nil {
		return fmt.Errorf("index: reset fts: %w", err)
	}
	return nil
}

func ftsInsert(tx *sql.Tx, d *models.Decision) error {
	_, err := tx.Exec(`INSERT INTO decisions_fts (id, title, content, status) VALUES (?, ?, ?, ?)`,
		d.ID, d.Title, d.Content, d.Status)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id,
		       title,
		       snippet(decisions_fts, 2, '<b>', '</b>', '...', 64)
		FROM decisions_fts
		WHERE decisions_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
