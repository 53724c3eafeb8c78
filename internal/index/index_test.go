package index

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/checksum"
	"github.com/starford/decisionlog/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "decisionlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBatch() Batch {
	date := time.Date(2016, 2, 12, 0, 0, 0, 0, time.UTC)
	one := &models.Decision{ID: "1", Filename: "0001-record.md", Title: "Record decisions",
		Date: date, Status: "Accepted", Content: "We record decisions.", Format: models.FormatMarkdown}
	two := &models.Decision{ID: "2", Filename: "0002-markdown.md", Title: "Use Markdown",
		Date: date, Status: "Superseded", Content: "Plain uniqueword text.", Format: models.FormatMarkdown}
	three := &models.Decision{ID: "3", Filename: "0003-asciidoc.md", Title: "Use AsciiDoc",
		Date: date, Status: "Accepted", Content: "See [2](#2).", Format: models.FormatMarkdown}
	two.AddLink(three, models.LinkSupersededBy)
	three.AddLink(two, models.LinkSupersedes)
	three.AddLink(one, models.LinkReferences)
	return Batch{
		ID:         "batch-1",
		ImportedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Decisions:  []*models.Decision{one, two, three},
		Sections: []*models.Section{
			{Title: "Context", Filename: "01-context.md", Format: models.FormatMarkdown, Content: "## Context", Order: 1},
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"decisions", "decision_links", "sections"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestReplaceAllAndGetDecision(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.ReplaceAll(ctx, sampleBatch()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	d, err := db.GetDecision(ctx, "3")
	if err != nil {
		t.Fatalf("GetDecision: %v", err)
	}
	if d.Title != "Use AsciiDoc" || d.Status != "Accepted" || d.Format != models.FormatMarkdown {
		t.Errorf("decision = %+v", d)
	}
	if !d.Date.Equal(time.Date(2016, 2, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d.Date)
	}
	if len(d.Links) != 2 || d.Links[0].Type != models.LinkSupersedes || d.Links[1].Target != "1" {
		t.Errorf("links = %+v", d.Links)
	}
}

func TestGetDecision_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetDecision(context.Background(), "404")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListDecisions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	batch := sampleBatch()
	_ = db.ReplaceAll(ctx, batch)

	all, err := db.ListDecisions(ctx, "")
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(all) != 3 || all[0].ID != "1" || all[2].ID != "3" {
		t.Errorf("list = %+v", all)
	}
	if all[0].BatchID != "batch-1" {
		t.Errorf("batch id = %q", all[0].BatchID)
	}
	if all[0].Checksum != checksum.Decision(batch.Decisions[0]) {
		t.Errorf("checksum = %q", all[0].Checksum)
	}

	accepted, _ := db.ListDecisions(ctx, "accepted")
	if len(accepted) != 2 {
		t.Errorf("accepted = %+v, want 2", accepted)
	}
}

func TestReplaceAllDropsPreviousBatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.ReplaceAll(ctx, sampleBatch())

	only := &models.Decision{ID: "9", Title: "Only", Date: time.Now(), Status: "Proposed"}
	if err := db.ReplaceAll(ctx, Batch{ID: "batch-2", ImportedAt: time.Now(), Decisions: []*models.Decision{only}}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	list, _ := db.ListDecisions(ctx, "")
	if len(list) != 1 || list[0].ID != "9" {
		t.Errorf("list = %+v", list)
	}
	bl, _ := db.Backlinks(ctx, "2")
	if len(bl) != 0 {
		t.Errorf("stale backlinks = %+v", bl)
	}
	secs, _ := db.Sections(ctx)
	if len(secs) != 0 {
		t.Errorf("stale sections = %+v", secs)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.ReplaceAll(ctx, sampleBatch())

	bl, err := db.Backlinks(ctx, "2")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 1 || bl[0].Source != "3" || bl[0].Type != models.LinkSupersedes {
		t.Errorf("backlinks = %+v", bl)
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.ReplaceAll(ctx, sampleBatch())

	nodes, links, err := db.Graph(ctx)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("nodes = %+v", nodes)
	}
	if len(links) != 3 || links[0].Source != "2" {
		t.Errorf("links = %+v", links)
	}
}

func TestGraph_Empty(t *testing.T) {
	db := testDB(t)
	nodes, links, err := db.Graph(context.Background())
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if nodes == nil || links == nil {
		t.Error("empty graph should use empty slices")
	}
}

func TestSections(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.ReplaceAll(ctx, sampleBatch())

	secs, err := db.Sections(ctx)
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(secs) != 1 || secs[0].Title != "Context" || secs[0].Order != 1 {
		t.Errorf("sections = %+v", secs)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	batch := sampleBatch()
	_ = db.ReplaceAll(ctx, batch)

	cs, err := db.AllChecksums(ctx)
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 3 || cs["2"] != checksum.Decision(batch.Decisions[1]) {
		t.Errorf("checksums = %+v", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.ReplaceAll(ctx, sampleBatch())

	results, err := db.Search(ctx, "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "2" {
		t.Errorf("search results = %+v, want 1 hit for 2", results)
	}
}
