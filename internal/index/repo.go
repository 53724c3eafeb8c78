package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/checksum"
	"github.com/starford/decisionlog/internal/models"
)

// Batch is one completed import, persisted as a unit.
type Batch struct {
	ID         string
	ImportedAt time.Time
	Decisions  []*models.Decision
	Sections   []*models.Section
}

// DecisionRow is a decision without its content and links.
type DecisionRow struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename"`
	Title      string        `json:"title"`
	Status     string        `json:"status"`
	Date       time.Time     `json:"date"`
	Format     models.Format `json:"format"`
	Checksum   string        `json:"checksum"`
	BatchID    string        `json:"batch_id"`
	ImportedAt time.Time     `json:"imported_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GraphNode is a decision in the link graph.
type GraphNode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// ReplaceAll swaps the stored decision log for batch within one transaction,
// so readers only ever see whole imports.
func (db *DB) ReplaceAll(ctx context.Context, batch Batch) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, stmt := range []string{
		`DELETE FROM decision_links`,
		`DELETE FROM decisions`,
		`DELETE FROM sections`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("index: clear: %w", err)
		}
	}
	if err := ftsReset(tx); err != nil {
		return err
	}

	decStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (id, position, filename, title, status, date, format, content, checksum, batch_id, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			title    = excluded.title,
			status   = excluded.status,
			date     = excluded.date,
			format   = excluded.format,
			content  = excluded.content,
			checksum = excluded.checksum
	`)
	if err != nil {
		return fmt.Errorf("index: prepare decision insert: %w", err)
	}
	defer decStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `INSERT INTO decision_links (source, target, type, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for i, d := range batch.Decisions {
		_, err := decStmt.ExecContext(ctx, d.ID, i, d.Filename, d.Title, d.Status, d.Date,
			string(d.Format), d.Content, checksum.Decision(d), batch.ID, batch.ImportedAt)
		if err != nil {
			return fmt.Errorf("index: insert decision %s: %w", d.ID, err)
		}
		if err := ftsInsert(tx, d); err != nil {
			return err
		}
		for j, l := range d.Links {
			if _, err := linkStmt.ExecContext(ctx, l.Source, l.Target, l.Type, j); err != nil {
				return fmt.Errorf("index: insert link %s -> %s: %w", l.Source, l.Target, err)
			}
		}
	}

	for _, s := range batch.Sections {
		_, err := tx.ExecContext(ctx, `INSERT INTO sections (position, title, filename, format, content) VALUES (?, ?, ?, ?, ?)`,
			s.Order, s.Title, s.Filename, string(s.Format), s.Content)
		if err != nil {
			return fmt.Errorf("index: insert section %s: %w", s.Filename, err)
		}
	}

	return tx.Commit()
}

// GetDecision returns a decision with its content and outgoing links.
func (db *DB) GetDecision(ctx context.Context, id string) (*models.Decision, error) {
	var (
		d      models.Decision
		format string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, filename, title, status, date, format, content
		FROM decisions WHERE id = ?
	`, id).Scan(&d.ID, &d.Filename, &d.Title, &d.Status, &d.Date, &format, &d.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decision %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get decision: %w", err)
	}
	d.Format = models.Format(format)

	links, err := db.Links(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Links = links
	return &d, nil
}

// ListDecisions returns decisions in import order, optionally filtered by
// status (case-insensitive).
func (db *DB) ListDecisions(ctx context.Context, status string) ([]DecisionRow, error) {
	q := `SELECT id, filename, title, status, date, format, checksum, batch_id, imported_at FROM decisions`
	var args []any
	if status != "" {
		q += ` WHERE status = ? COLLATE NOCASE`
		args = append(args, status)
	}
	q += ` ORDER BY position`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var (
			r      DecisionRow
			format string
		)
		if err := rows.Scan(&r.ID, &r.Filename, &r.Title, &r.Status, &r.Date, &format, &r.Checksum, &r.BatchID, &r.ImportedAt); err != nil {
			return nil, err
		}
		r.Format = models.Format(format)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Links returns the outgoing links of a decision in document order.
func (db *DB) Links(ctx context.Context, id string) ([]models.Link, error) {
	return db.queryLinks(ctx, `
		SELECT source, target, type FROM decision_links
		WHERE source = ? ORDER BY position
	`, id)
}

// Backlinks returns all links pointing at the given decision.
func (db *DB) Backlinks(ctx context.Context, id string) ([]models.Link, error) {
	return db.queryLinks(ctx, `
		SELECT l.source, l.target, l.type
		FROM decision_links l JOIN decisions d ON d.id = l.source
		WHERE l.target = ? ORDER BY d.position, l.position
	`, id)
}

// Graph returns every decision and every link.
func (db *DB) Graph(ctx context.Context) ([]GraphNode, []models.Link, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, title, status FROM decisions ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	nodes := []GraphNode{}
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Title, &n.Status); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	links, err := db.queryLinks(ctx, `
		SELECT l.source, l.target, l.type
		FROM decision_links l JOIN decisions d ON d.id = l.source
		ORDER BY d.position, l.position
	`)
	if err != nil {
		return nil, nil, err
	}
	if links == nil {
		links = []models.Link{}
	}
	return nodes, links, nil
}

// Sections returns imported documentation sections in order.
func (db *DB) Sections(ctx context.Context) ([]models.Section, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT position, title, filename, format, content FROM sections ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("index: sections: %w", err)
	}
	defer rows.Close()

	var out []models.Section
	for rows.Next() {
		var (
			s      models.Section
			format string
		)
		if err := rows.Scan(&s.Order, &s.Title, &s.Filename, &format, &s.Content); err != nil {
			return nil, err
		}
		s.Format = models.Format(format)
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllChecksums returns the content checksum of every stored decision by ID.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, checksum FROM decisions`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

func (db *DB) queryLinks(ctx context.Context, query string, args ...any) ([]models.Link, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: links: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.Source, &l.Target, &l.Type); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
