// Package decisionservice coordinates importing the decision log into the
// index and answering queries against it.
package decisionservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/checksum"
	"github.com/starford/decisionlog/internal/importer"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/sse"
)

// Publisher receives import notifications. *sse.Broker implements it.
type Publisher interface {
	Publish(event sse.Event)
	PublishImportEvent(summary sse.ImportSummary)
}

// ImportResult summarises one completed import.
type ImportResult struct {
	BatchID   string        `json:"batch_id" yaml:"batch_id"`
	Decisions int           `json:"decisions" yaml:"decisions"`
	Links     int           `json:"links" yaml:"links"`
	Sections  int           `json:"sections" yaml:"sections"`
	Changed   []string      `json:"changed" yaml:"changed"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`
}

// DecisionDetail is a decision with its anchor and incoming links.
type DecisionDetail struct {
	models.Decision
	Anchor    string        `json:"anchor"`
	Backlinks []models.Link `json:"backlinks"`
}

// Service imports the configured decision directory and serves queries.
type Service struct {
	importer  *importer.Importer
	path      string
	sections  *importer.SectionImporter
	docsPath  string
	db        index.DecisionIndex
	logger    *slog.Logger
	publisher Publisher
	newID     func() string

	mu sync.Mutex // serialises imports
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher sets where import events are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSections also imports free-form documentation from docsPath on every import.
func WithSections(sec *importer.SectionImporter, docsPath string) Option {
	return func(s *Service) {
		s.sections = sec
		s.docsPath = docsPath
	}
}

// WithIDGenerator overrides batch ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a decision service that imports path with imp.
func NewService(imp *importer.Importer, path string, db index.DecisionIndex, opts ...Option) *Service {
	s := &Service{
		importer: imp,
		path:     path,
		db:       db,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import runs a full import of the decision directory and replaces the
// index contents with the result. A failed import leaves the index as it was.
func (s *Service) Import(ctx context.Context) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batchID := s.newID()
	start := time.Now()
	logger := s.logger.With(slog.String("batch_id", batchID))
	logger.Info("import: started",
		slog.String("dialect", s.importer.Dialect()),
		slog.String("path", s.path))

	doc := models.NewDocumentation()
	if err := s.importer.Import(doc, s.path); err != nil {
		return nil, s.fail(logger, batchID, err)
	}
	if s.sections != nil && s.docsPath != "" {
		if err := s.sections.Import(doc, s.docsPath); err != nil {
			return nil, s.fail(logger, batchID, err)
		}
	}

	decisions := doc.Decisions()
	previous, err := s.db.AllChecksums(ctx)
	if err != nil {
		return nil, s.fail(logger, batchID, err)
	}

	err = s.db.ReplaceAll(ctx, index.Batch{
		ID:         batchID,
		ImportedAt: start,
		Decisions:  decisions,
		Sections:   doc.Sections(),
	})
	if err != nil {
		return nil, s.fail(logger, batchID, err)
	}

	res := &ImportResult{
		BatchID:   batchID,
		Decisions: len(decisions),
		Sections:  len(doc.Sections()),
		Changed:   changedIDs(previous, decisions),
		Duration:  time.Since(start),
	}
	for _, d := range decisions {
		res.Links += len(d.Links)
	}

	logger.Info("import: finished",
		slog.Int("decisions", res.Decisions),
		slog.Int("links", res.Links),
		slog.Int("sections", res.Sections),
		slog.Int("changed", len(res.Changed)),
		slog.Duration("duration", res.Duration))

	if s.publisher != nil {
		s.publisher.PublishImportEvent(sse.ImportSummary{
			BatchID:   batchID,
			Decisions: res.Decisions,
			Links:     res.Links,
			Changed:   res.Changed,
		})
	}
	return res, nil
}

func (s *Service) fail(logger *slog.Logger, batchID string, err error) error {
	logger.Error("import: failed", slog.String("error", err.Error()))
	if s.publisher != nil {
		s.publisher.Publish(sse.Event{
			Type: sse.EventImportFailed,
			Data: map[string]string{"batch_id": batchID, "error": err.Error()},
		})
	}
	return err
}

// changedIDs lists decisions that are new, changed or gone since the last
// import, sorted.
func changedIDs(previous map[string]string, decisions []*models.Decision) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(decisions))
	for _, d := range decisions {
		seen[d.ID] = struct{}{}
		if cs, ok := previous[d.ID]; !ok || cs != checksum.Decision(d) {
			out = append(out, d.ID)
		}
	}
	for id := range previous {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// GetDecision returns a decision with its backlinks.
func (s *Service) GetDecision(ctx context.Context, id string) (*DecisionDetail, error) {
	d, err := s.db.GetDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Links = nonNilSlice(d.Links)
	return &DecisionDetail{
		Decision:  *d,
		Anchor:    importer.Anchor(d),
		Backlinks: nonNilSlice(bl),
	}, nil
}

// ListDecisions returns all decisions, optionally filtered by status.
func (s *Service) ListDecisions(ctx context.Context, status string) ([]index.DecisionRow, error) {
	rows, err := s.db.ListDecisions(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	return nonNilSlice(rows), nil
}

// Links returns the outgoing links of an existing decision.
func (s *Service) Links(ctx context.Context, id string) ([]models.Link, error) {
	d, err := s.db.GetDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(d.Links), nil
}

// Backlinks returns the links pointing at an existing decision.
func (s *Service) Backlinks(ctx context.Context, id string) ([]models.Link, error) {
	if _, err := s.db.GetDecision(ctx, id); err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(ctx, id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(bl), nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalidArgument)
	}
	res, err := s.db.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Graph returns all decisions and links.
func (s *Service) Graph(ctx context.Context) ([]index.GraphNode, []models.Link, error) {
	return s.db.Graph(ctx)
}

// Sections returns the imported documentation sections.
func (s *Service) Sections(ctx context.Context) ([]models.Section, error) {
	secs, err := s.db.Sections(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(secs), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
