package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/decisionlog/internal/decisionservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *decisionservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Decisions.
	r.Get("/decisions", h.ListDecisions)
	r.Get("/decisions/{id}", h.GetDecision)
	r.Get("/decisions/{id}/links", h.Links)
	r.Get("/decisions/{id}/backlinks", h.Backlinks)

	// Documentation sections.
	r.Get("/sections", h.Sections)

	// Search.
	r.Get("/search", h.Search)

	// Graph.
	r.Get("/graph", h.Graph)

	// Re-import.
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
