// Package testutil provides shared test helpers for setting up decision
// directories and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/decisionlog/internal/index"
)

// LegacyLog is a small adr-tools decision log with typed and generic links.
var LegacyLog = map[string]string{
	"0001-record-architecture-decisions.md": "# 1. Record architecture decisions\n\nDate: 2016-02-12\n\n" +
		"## Status\n\nAccepted\n\n## Context\n\nWe need to record the architectural decisions made on this project.\n",
	"0002-implement-as-shell-scripts.md": "# 2. Implement as shell scripts\n\nDate: 2016-02-12\n\n" +
		"## Status\n\nAccepted\n\nAmended by [3. Help scripts](0003-help-scripts.md)\n\n" +
		"See [1. Record architecture decisions](0001-record-architecture-decisions.md).\n",
	"0003-help-scripts.md": "# 3. Help scripts\n\nDate: 2016-02-16\n\n## Status\n\nProposed\n\n" +
		"Amends [2. Implement as shell scripts](0002-implement-as-shell-scripts.md)\n",
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "decisionlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// DecisionDir writes files into a temporary directory and returns its path.
// Names may contain slashes to create sub-directories.
func DecisionDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// WriteFiles writes or overwrites files under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
