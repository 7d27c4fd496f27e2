package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/export"
	"github.com/iamsuganthi/log-sniffer/internal/service"
)

// Tool names.
const (
	ToolFetch      = "audit_logs_fetch"
	ToolQueryCache = "audit_logs_query_cache"
	ToolExport     = "audit_logs_export"
	ToolSummary    = "audit_logs_summary"
)

// Server exposes the audit-log operations as Model Context Protocol tools
// for external AI agents.
type Server struct {
	audit    *service.AuditService
	insights *service.InsightService
	port     string
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server and registers its tools.
func NewServer(audit *service.AuditService, insights *service.InsightService, name, version, port string) *Server {
	s := &Server{
		audit:    audit,
		insights: insights,
		port:     port,
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// Start serves the tools over HTTP/SSE under /mcp. It blocks.
func (s *Server) Start() error {
	addr := ":" + s.port
	slog.Info("MCP server starting", "port", s.port, "base_path", "/mcp")
	sse := server.NewSSEServer(s.mcp,
		server.WithBaseURL("http://localhost"+addr),
		server.WithStaticBasePath("/mcp"),
	)
	return sse.Start(addr)
}

func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("from", mcp.Description("Inclusive start date, e.g. 2024-05-01 or 2024-05-01T00:00:00Z")),
		mcp.WithString("to", mcp.Description("Exclusive end date")),
		mcp.WithString("events", mcp.Description("Comma-separated event names to include")),
		mcp.WithString("exclude_events", mcp.Description("Comma-separated event names to exclude")),
		mcp.WithNumber("size", mcp.Description("Page size between 1 and 100 (default 50)")),
		mcp.WithString("cursor", mcp.Description("Continuation cursor from a previous page")),
	}
}

func (s *Server) registerTools() {
	fetchOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Fetch one page of Snyk audit logs for the configured organization or group and mirror it into the local cache"),
	}, filterOptions()...)
	s.mcp.AddTool(mcp.NewTool(ToolFetch, fetchOpts...), s.handleFetch)

	cacheOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Query previously fetched audit logs from the local cache, with free-text search"),
		mcp.WithString("search", mcp.Description("Case-insensitive text matched against event names and content")),
	}, filterOptions()...)
	s.mcp.AddTool(mcp.NewTool(ToolQueryCache, cacheOpts...), s.handleQueryCache)

	exportOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Export up to 1000 Snyk audit logs as JSON or CSV text"),
		mcp.WithString("format", mcp.Description("json (default) or csv")),
	}, filterOptions()...)
	s.mcp.AddTool(mcp.NewTool(ToolExport, exportOpts...), s.handleExport)

	s.mcp.AddTool(mcp.NewTool(ToolSummary,
		mcp.WithDescription("Generate an executive security summary of the last 24 hours of audit activity"),
	), s.handleSummary)
}

func (s *Server) handleFetch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.audit.FetchAuditLogs(ctx, filterFromRequest(request))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(page)
}

func (s *Server) handleQueryCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := filterFromRequest(request)
	params.Search = request.GetString("search", "")

	page, err := s.audit.QueryCache(ctx, params)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(page)
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := export.ParseKind(request.GetString("format", "json"))
	if err != nil {
		return toolError(err), nil
	}
	items, err := s.audit.CollectForExport(ctx, filterFromRequest(request))
	if err != nil {
		return toolError(err), nil
	}
	body, err := export.Format(items, kind)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.insights.ExecutiveSummary(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func filterFromRequest(request mcp.CallToolRequest) domain.FilterParams {
	return domain.FilterParams{
		From:          request.GetString("from", ""),
		To:            request.GetString("to", ""),
		Events:        splitList(request.GetString("events", "")),
		ExcludeEvents: splitList(request.GetString("exclude_events", "")),
		Size:          request.GetInt("size", 0),
		Cursor:        request.GetString("cursor", ""),
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError reports domain errors to the agent as tool errors rather than
// protocol failures.
func toolError(err error) *mcp.CallToolResult {
	slog.Warn("MCP tool failed", "error", err)
	return mcp.NewToolResultError(err.Error())
}
