package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsuganthi/log-sniffer/internal/adapter/store"
	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
	"github.com/iamsuganthi/log-sniffer/internal/service"
)

type stubSource struct {
	filters []domain.QueryFilter
	items   []domain.LogRecord
}

func (s *stubSource) FetchPage(_ context.Context, _ domain.Scope, f domain.QueryFilter) (*domain.ResultPage, error) {
	s.filters = append(s.filters, f)
	return &domain.ResultPage{Items: s.items, Total: len(s.items)}, nil
}

func (s *stubSource) TestConnectivity(context.Context) port.ConnectivityResult {
	return port.ConnectivityResult{Success: true}
}

type stubFactory struct{ src *stubSource }

func (f stubFactory) NewSource(string, string) port.LogSource { return f.src }

func newTestServer(t *testing.T) (*Server, *stubSource, *store.MemoryLogCache) {
	t.Helper()
	src := &stubSource{items: []domain.LogRecord{
		{ID: "a", Event: "org.create", Created: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Content: map[string]any{"who": "alice"}},
		{ID: "b", Event: "api.access", Created: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Content: map[string]any{}},
	}}
	settings := store.NewSettingsStore()
	_, err := settings.CreateConfiguration(context.Background(), &domain.APIConfiguration{SnykAPIToken: "t", GroupID: "g"})
	require.NoError(t, err)

	cache := store.NewMemoryLogCache(0)
	audit := service.NewAuditService(settings, stubFactory{src: src}, cache)
	insights := service.NewInsightService(audit, settings, cache, store.NewChatStore(), nil)
	return NewServer(audit, insights, "test", "0.0.1", "0"), src, cache
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleFetch(t *testing.T) {
	s, src, cache := newTestServer(t)

	result, err := s.handleFetch(context.Background(), call(ToolFetch, map[string]interface{}{
		"events": "org.create,api.access",
		"size":   float64(10),
		"from":   "2024-05-01",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var page domain.ResultPage
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, cache.Len())

	require.Len(t, src.filters, 1)
	assert.Equal(t, 10, src.filters[0].Size)
	assert.Equal(t, []string{"org.create", "api.access"}, src.filters[0].Events)
}

func TestHandleFetch_ValidationError(t *testing.T) {
	s, src, _ := newTestServer(t)

	result, err := s.handleFetch(context.Background(), call(ToolFetch, map[string]interface{}{"size": float64(500)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "size")
	assert.Empty(t, src.filters)
}

func TestHandleQueryCache(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleFetch(ctx, call(ToolFetch, map[string]interface{}{}))
	require.NoError(t, err)

	result, err := s.handleQueryCache(ctx, call(ToolQueryCache, map[string]interface{}{"search": "ALICE"}))
	require.NoError(t, err)

	var page domain.ResultPage
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)
}

func TestHandleExport(t *testing.T) {
	s, _, _ := newTestServer(t)

	result, err := s.handleExport(context.Background(), call(ToolExport, map[string]interface{}{"format": "csv"}))
	require.NoError(t, err)
	out := text(t, result)
	assert.True(t, strings.HasPrefix(out, "Timestamp,Event,Organization ID,Group ID,Project ID,Content\n"))
	assert.Len(t, strings.Split(out, "\n"), 3)

	result, err = s.handleExport(context.Background(), call(ToolExport, map[string]interface{}{"format": "pdf"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleSummary_AIDisabled(t *testing.T) {
	s, _, _ := newTestServer(t)

	result, err := s.handleSummary(context.Background(), call(ToolSummary, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, text(t, result), "AI analysis unavailable")
}
