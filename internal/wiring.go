package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/decisionlog/internal/decisionservice"
	"github.com/starford/decisionlog/internal/importer"
	"github.com/starford/decisionlog/internal/index"
)

// NewLogger returns the JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDecisionService builds the decision service described by cfg on top
// of db. pub may be nil.
func NewDecisionService(cfg *Config, db index.DecisionIndex, logger *slog.Logger, pub decisionservice.Publisher) (*decisionservice.Service, error) {
	imp, err := cfg.Decisions.NewImporter()
	if err != nil {
		return nil, fmt.Errorf("init importer: %w", err)
	}
	opts := []decisionservice.Option{decisionservice.WithLogger(logger)}
	if pub != nil {
		opts = append(opts, decisionservice.WithPublisher(pub))
	}
	if cfg.Decisions.DocsPath != "" {
		sec := importer.NewSectionImporter(nil, cfg.Decisions.DocsRecursive)
		opts = append(opts, decisionservice.WithSections(sec, cfg.Decisions.DocsPath))
	}
	return decisionservice.NewService(imp, cfg.Decisions.Path, db, opts...), nil
}

// watchRoots lists the directories the watcher follows.
func (c *DecisionsConfig) watchRoots() []string {
	roots := []string{c.Path}
	if c.DocsPath != "" {
		roots = append(roots, c.DocsPath)
	}
	return roots
}
