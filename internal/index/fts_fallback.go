//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/decisionlog/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on decisions.content.
	return nil
}

func ftsReset(_ *sql.Tx) error { return nil }

func ftsInsert(_ *sql.Tx, _ *models.Decision) error {
	// Content is already stored in the decisions table; nothing extra to do.
	return nil
}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, substr(content, 1, 200)
		FROM decisions
		WHERE title LIKE ? OR content LIKE ? OR status LIKE ?
		ORDER BY position
		LIMIT ?
	`, like, like, like, limit)
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
