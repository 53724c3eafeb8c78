package index

import (
	"context"

	"github.com/starford/decisionlog/internal/models"
)

// DecisionIndex defines the interface for decision storage and queries.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DecisionIndex interface {
	ReplaceAll(ctx context.Context, batch Batch) error
	GetDecision(ctx context.Context, id string) (*models.Decision, error)
	ListDecisions(ctx context.Context, status string) ([]DecisionRow, error)
	Links(ctx context.Context, id string) ([]models.Link, error)
	Backlinks(ctx context.Context, id string) ([]models.Link, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Graph(ctx context.Context) ([]GraphNode, []models.Link, error)
	Sections(ctx context.Context) ([]models.Section, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DecisionIndex at compile time.
var _ DecisionIndex = (*DB)(nil)
