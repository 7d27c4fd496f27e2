package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/pkg/config"
)

const searchBody = `{
	"data": [
		{"id": "evt-1", "attributes": {"event": "org.user.invite", "created": "2024-05-01T10:00:00Z", "content": {"user_email": "a@example.com"}}},
		{"id": "evt-2", "attributes": {"event": "api.access", "created": "2024-05-01T09:00:00Z", "content": {}}}
	],
	"meta": {"count": 2}
}`

type fakeSnyk struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (f *fakeSnyk) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/vnd.api+json")
	if r.Header.Get("Authorization") != "token good" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{}`))
		return
	}
	if r.URL.Path == "/orgs" {
		_, _ = w.Write([]byte(`{"data": []}`))
		return
	}
	_, _ = w.Write([]byte(searchBody))
}

func (f *fakeSnyk) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// newTestRootCmd builds a root command pointed at a fake Snyk API.
func newTestRootCmd(t *testing.T, args ...string) (*cobra.Command, *fakeSnyk, *bytes.Buffer) {
	t.Helper()
	fake := &fakeSnyk{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SnykBaseURL:     srv.URL,
		SnykAPIVersion:  domain.DefaultAPIVersion,
		SnykHTTPTimeout: 5 * time.Second,
	}

	out := &bytes.Buffer{}
	cmd := newRootCmd(cfg)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd, fake, out
}

func TestPing(t *testing.T) {
	cmd, fake, out := newTestRootCmd(t, "ping", "--token", "good")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Connection successful\n", out.String())
	assert.Equal(t, "/orgs", fake.last().URL.Path)
}

func TestPing_BadToken(t *testing.T) {
	cmd, _, _ := newTestRootCmd(t, "ping", "--token", "bad")
	err := cmd.Execute()
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestFetch(t *testing.T) {
	cmd, fake, out := newTestRootCmd(t,
		"fetch", "--token", "good", "--org", "org-1",
		"--from", "2024-05-01", "--event", "org.user.invite,api.access", "--size", "10",
	)
	require.NoError(t, cmd.Execute())

	var page domain.ResultPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "evt-1", page.Items[0].ID)
	assert.Equal(t, 2, page.Total)

	req := fake.last()
	assert.Equal(t, "/orgs/org-1/audit_logs/search", req.URL.Path)
	assert.Equal(t, "10", req.URL.Query().Get("limit"))
	assert.Equal(t, []string{"org.user.invite", "api.access"}, req.URL.Query()["filter[event]"])
	assert.NotEmpty(t, req.URL.Query().Get("filter[from]"))
}

func TestFetch_GroupScope(t *testing.T) {
	cmd, fake, _ := newTestRootCmd(t, "fetch", "--token", "good", "--group", "grp-1")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/groups/grp-1/audit_logs/search", fake.last().URL.Path)
}

func TestFetch_Validation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		cmd, fake, _ := newTestRootCmd(t, "fetch", "--org", "org-1")
		err := cmd.Execute()
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "token", vErr.Field)
		assert.Nil(t, fake.last())
	})

	t.Run("size out of range", func(t *testing.T) {
		cmd, fake, _ := newTestRootCmd(t, "fetch", "--token", "good", "--org", "org-1", "--size", "101")
		err := cmd.Execute()
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "size", vErr.Field)
		assert.Nil(t, fake.last())
	})

	t.Run("no scope", func(t *testing.T) {
		cmd, _, _ := newTestRootCmd(t, "fetch", "--token", "good")
		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, cmd.Execute(), &cfgErr)
	})
}

func TestExport_CSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	cmd, fake, out := newTestRootCmd(t, "export", "--token", "good", "--org", "org-1", "--format", "csv", "--out", path)
	require.NoError(t, cmd.Execute())
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,Event,Organization ID,Group ID,Project ID,Content", lines[0])
	assert.Contains(t, lines[1], "org.user.invite")

	assert.Equal(t, "100", fake.last().URL.Query().Get("limit"))
}

func TestExport_JSONToStdout(t *testing.T) {
	cmd, _, out := newTestRootCmd(t, "export", "--token", "good", "--org", "org-1")
	require.NoError(t, cmd.Execute())

	var items []domain.LogRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	assert.Len(t, items, 2)
}

func TestExport_UnknownFormat(t *testing.T) {
	cmd, fake, _ := newTestRootCmd(t, "export", "--token", "good", "--org", "org-1", "--format", "xml")
	var vErr *domain.ValidationError
	require.ErrorAs(t, cmd.Execute(), &vErr)
	assert.Equal(t, "format", vErr.Field)
	assert.Nil(t, fake.last())
}

func TestVersion(t *testing.T) {
	cmd, _, out := newTestRootCmd(t, "version")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "snykctl version dev\n", out.String())
}
