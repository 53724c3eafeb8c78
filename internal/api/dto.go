package api

import (
	"github.com/starford/decisionlog/internal/decisionservice"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/models"
)

// DecisionDetail is the full decision response type (aliased from the domain layer).
type DecisionDetail = decisionservice.DecisionDetail

// DecisionListItem is a lightweight item in a list response (aliased from the index layer).
type DecisionListItem = index.DecisionRow

// ImportResponse is returned after a re-import (aliased from the domain layer).
type ImportResponse = decisionservice.ImportResult

// DecisionListResponse wraps decision listings.
type DecisionListResponse struct {
	Decisions []DecisionListItem `json:"decisions" validate:"required"`
	Total     int                `json:"total" example:"12" validate:"required"`
}

// LinksResponse wraps the links of one decision.
type LinksResponse struct {
	ID    string        `json:"id" example:"5" validate:"required"`
	Links []models.Link `json:"links" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the decision graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes" validate:"required"`
	Links []models.Link     `json:"links" validate:"required"`
}

// SectionsResponse wraps imported documentation sections.
type SectionsResponse struct {
	Sections []models.Section `json:"sections" validate:"required"`
}
