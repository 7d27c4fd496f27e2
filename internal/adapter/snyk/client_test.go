package snyk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, Token: "tok-123", APIVersion: "2024-10-15"})
}

func mustTime(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := domain.ParseTime(s)
	require.NoError(t, err)
	return &ts
}

func TestClient_FetchPage_RequestParams(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	filter := domain.QueryFilter{
		From:          mustTime(t, "2024-01-01T00:00:00Z"),
		To:            mustTime(t, "2024-01-02T00:00:00Z"),
		Events:        []string{"org.user.invite", "org.create"},
		ExcludeEvents: []string{"api.access"},
		Size:          25,
		Cursor:        "abc",
		Search:        "alice",
	}
	_, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeOrganization, ID: "org-1"}, filter)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "/orgs/org-1/audit_logs/search", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "2024-10-15", q.Get("version"))
	assert.Equal(t, "25", q.Get("limit"))
	assert.Equal(t, "abc", q.Get("starting_after"))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", q.Get("filter[from]"))
	assert.Equal(t, "2024-01-02T00:00:00.000Z", q.Get("filter[to]"))
	assert.Equal(t, []string{"org.user.invite", "org.create"}, q["filter[event]"])
	assert.Equal(t, []string{"api.access"}, q["filter[exclude_event]"])
	_, hasSearch := q["search"]
	assert.False(t, hasSearch, "search must never be forwarded")

	assert.Equal(t, "token tok-123", got.Header.Get("Authorization"))
	assert.Equal(t, "application/vnd.api+json", got.Header.Get("Content-Type"))
	assert.Equal(t, "2024-10-15", got.Header.Get("version"))
}

func TestClient_FetchPage_MinimalParams(t *testing.T) {
	var q url.Values
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		path = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeGroup, ID: "grp-9"}, domain.QueryFilter{})
	require.NoError(t, err)

	assert.Equal(t, "/groups/grp-9/audit_logs/search", path)
	assert.Equal(t, "50", q.Get("limit"))
	for _, key := range []string{"starting_after", "filter[from]", "filter[to]", "filter[event]", "filter[exclude_event]"} {
		_, ok := q[key]
		assert.False(t, ok, key)
	}
}

func TestClient_FetchPage_JSONAPIShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": [
				{
					"id": "evt-1",
					"attributes": {
						"event": "org.user.invite",
						"created": "2024-05-01T10:00:00Z",
						"content": {"user_email": "a@example.com"}
					},
					"relationships": {
						"org": {"data": {"id": "org-1"}},
						"project": {"data": {"id": "prj-1"}}
					}
				}
			],
			"meta": {"count": 42},
			"links": {"next": "/orgs/org-1/audit_logs/search?version=2024-10-15&starting_after=evt-1"}
		}`))
	})

	page, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeOrganization, ID: "org-1"}, domain.QueryFilter{Size: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	rec := page.Items[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "org.user.invite", rec.Event)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), rec.Created)
	assert.Equal(t, "org-1", domain.Deref(rec.OrgID))
	assert.Nil(t, rec.GroupID)
	assert.Equal(t, "prj-1", domain.Deref(rec.ProjectID))
	assert.Equal(t, "a@example.com", rec.Content["user_email"])
	assert.Equal(t, 42, page.Total)
	assert.Equal(t, "evt-1", page.NextCursor)
}

func TestClient_FetchPage_FlatWrappedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"items": [
				{"uuid": "u-1", "event": "user.login", "timestamp": "2024-02-02T00:00:00Z", "org_id": "o", "groupId": "g", "data": {"ip": "10.0.0.1"}},
				{"id": "u-2", "event": "api.access", "created": "2024-02-01T00:00:00Z"}
			],
			"total": 7
		}`))
	})

	page, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeGroup, ID: "g"}, domain.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, "u-1", first.ID)
	assert.Equal(t, "o", domain.Deref(first.OrgID))
	assert.Equal(t, "g", domain.Deref(first.GroupID))
	assert.Equal(t, "10.0.0.1", first.Content["ip"])
	assert.Equal(t, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), first.Created)

	second := page.Items[1]
	assert.Equal(t, map[string]any{}, second.Content)
	assert.Equal(t, 7, page.Total)
	assert.Empty(t, page.NextCursor)
}

func TestClient_FetchPage_Errors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json_api_detail", http.StatusUnauthorized, `{"errors":[{"detail":"Invalid token"}]}`, "Invalid token"},
		{"message_field", http.StatusForbidden, `{"message":"Forbidden org"}`, "Forbidden org"},
		{"raw_body", http.StatusBadGateway, `upstream exploded`, "upstream exploded"},
		{"empty_body", http.StatusInternalServerError, ``, "Snyk API error: 500"},
		{"json_without_message", http.StatusNotFound, `{"foo":"bar"}`, "Snyk API error: 404"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeOrganization, ID: "o"}, domain.QueryFilter{})
			var rErr *domain.RemoteSourceError
			require.True(t, errors.As(err, &rErr))
			assert.Equal(t, tc.status, rErr.Status)
			assert.Equal(t, tc.message, rErr.Message)
		})
	}
}

func TestClient_FetchPage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(ClientConfig{BaseURL: srv.URL, Token: "t"})

	_, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeOrganization, ID: "o"}, domain.QueryFilter{})
	var rErr *domain.RemoteSourceError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, 0, rErr.Status)
}

func TestClient_FetchPage_MissingScopeID(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:0", Token: "t"})
	_, err := c.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeOrganization}, domain.QueryFilter{})
	var cErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cErr))
}

func TestClient_TestConnectivity(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var path string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_, _ = w.Write([]byte(`{"data":[]}`))
		})
		res := c.TestConnectivity(context.Background())
		assert.True(t, res.Success)
		assert.Equal(t, "Connection successful", res.Message)
		assert.Equal(t, "/orgs", path)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"detail":"bad credentials"}]}`))
		})
		res := c.TestConnectivity(context.Background())
		assert.False(t, res.Success)
		assert.Equal(t, "bad credentials", res.Message)
	})
}

func TestFactory_NewSource(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := NewFactory(srv.URL, 5*time.Second, 100, 10)
	src := f.NewSource("secret", "")
	_, err := src.FetchPage(context.Background(), domain.Scope{Kind: domain.ScopeGroup, ID: "g"}, domain.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "token secret", auth)
}
