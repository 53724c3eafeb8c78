package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/decisionlog/internal/decisionservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *decisionservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *decisionservice.Service) *Handler {
	return &Handler{svc: svc}
}

// decisionID extracts the decision ID from the URL. MADR IDs are filenames
// and may arrive percent-encoded.
func decisionID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDecisions handles GET /api/decisions.
//
//	@Summary		List decisions in import order
//	@Tags			decisions
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status (case-insensitive)"
//	@Success		200		{object}	DecisionListResponse
//	@Security		BearerAuth
//	@Router			/decisions [get]
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDecisions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, "list decisions", err)
		return
	}
	writeJSON(w, http.StatusOK, DecisionListResponse{
		Decisions: items,
		Total:     len(items),
	})
}

// GetDecision handles GET /api/decisions/{id}.
//
//	@Summary		Get a single decision by ID
//	@Tags			decisions
//	@Produce		json
//	@Param			id	path		string	true	"Decision ID"
//	@Success		200	{object}	DecisionDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decisions/{id} [get]
func (h *Handler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id := decisionID(r)
	d, err := h.svc.GetDecision(r.Context(), id)
	if err != nil {
		writeError(w, "get decision", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Links handles GET /api/decisions/{id}/links.
//
//	@Summary		Outgoing links of a decision
//	@Tags			decisions
//	@Produce		json
//	@Param			id	path		string	true	"Decision ID"
//	@Success		200	{object}	LinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decisions/{id}/links [get]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	id := decisionID(r)
	links, err := h.svc.Links(r.Context(), id)
	if err != nil {
		writeError(w, "links", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{ID: id, Links: links})
}

// Backlinks handles GET /api/decisions/{id}/backlinks.
//
//	@Summary		Incoming links of a decision
//	@Tags			decisions
//	@Produce		json
//	@Param			id	path		string	true	"Decision ID"
//	@Success		200	{object}	LinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decisions/{id}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	id := decisionID(r)
	links, err := h.svc.Backlinks(r.Context(), id)
	if err != nil {
		writeError(w, "backlinks", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{ID: id, Links: links})
}

// Sections handles GET /api/sections.
//
//	@Summary		Imported documentation sections
//	@Tags			sections
//	@Produce		json
//	@Success		200	{object}	SectionsResponse
//	@Security		BearerAuth
//	@Router			/sections [get]
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	secs, err := h.svc.Sections(r.Context())
	if err != nil {
		writeError(w, "sections", err)
		return
	}
	writeJSON(w, http.StatusOK, SectionsResponse{Sections: secs})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across decisions
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the decision graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Import handles POST /api/import.
//
//	@Summary		Re-import the decision directory
//	@Tags			import
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Import(r.Context())
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
