// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes decision log tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/decisionservice"
)

// FormatResourceURI addresses the decision format contract resource.
const FormatResourceURI = "decisionlog://format"

// Server wraps the MCP server with decision log tools.
type Server struct {
	mcp *server.MCPServer
	svc *decisionservice.Service
}

// New creates a new MCP server with all decision log tools registered.
func New(svc *decisionservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"decisionlog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_decisions",
		mcp.WithDescription("List imported architecture decisions in order, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Optional status filter, e.g. Accepted or Superseded")),
	), s.listDecisions)

	s.mcp.AddTool(mcp.NewTool("read_decision",
		mcp.WithDescription("Read one decision with its content, links and backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Decision ID, e.g. 8 or 20230530-use-madr.md")),
	), s.readDecision)

	s.mcp.AddTool(mcp.NewTool("decision_links",
		mcp.WithDescription("List the links of a decision. direction=out (default) returns links it makes, "+
			"direction=in returns links pointing at it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Decision ID")),
		mcp.WithString("direction", mcp.Description("out or in"), mcp.Enum("out", "in")),
	), s.decisionLinks)

	s.mcp.AddTool(mcp.NewTool("search_decisions",
		mcp.WithDescription("Full-text search through decision titles, statuses and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchDecisions)

	s.mcp.AddTool(mcp.NewTool("import_decisions",
		mcp.WithDescription("Re-import the decision directory and replace the index with the result."),
	), s.importDecisions)

	s.mcp.AddTool(mcp.NewTool("get_decision_format",
		mcp.WithDescription("Returns the decision record format contract. "+
			"Call this before writing decision files so they import cleanly."),
	), s.getDecisionFormat)

	// Resource: decision format contract.
	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Decision Format Contract",
			mcp.WithResourceDescription("File layouts understood by the decision importer."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listDecisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.ListDecisions(ctx, req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rows)
}

func (s *Server) readDecision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetDecision(ctx, id)
	if err != nil {
		return errorResult(id, err), nil
	}
	return jsonResult(d)
}

func (s *Server) decisionLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links := s.svc.Links
	switch dir := req.GetString("direction", "out"); dir {
	case "out", "":
	case "in":
		links = s.svc.Backlinks
	default:
		return mcp.NewToolResultError(fmt.Sprintf("direction must be out or in, got %q", dir)), nil
	}
	out, err := links(ctx, id)
	if err != nil {
		return errorResult(id, err), nil
	}
	if len(out) == 0 {
		return mcp.NewToolResultText("no links found"), nil
	}
	return jsonResult(out)
}

func (s *Server) searchDecisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) importDecisions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Import(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) getDecisionFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DecisionFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     DecisionFormatContract,
		},
	}, nil
}
