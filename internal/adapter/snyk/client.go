package snyk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

const (
	// DefaultBaseURL is the Snyk REST API root.
	DefaultBaseURL = "https://api.snyk.io/rest"

	userAgent   = "Snyk-Audit-Dashboard/1.0"
	contentType = "application/vnd.api+json"
)

// ClientConfig holds the settings for a single Snyk API client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	APIVersion string
	HTTPClient *http.Client
	// Limiter paces outgoing calls. Nil disables pacing.
	Limiter *rate.Limiter
}

// Client implements port.LogSource against the Snyk audit-log search API.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	limiter    *rate.Limiter
	norm       normalizer
}

// NewClient creates a Snyk client. Empty fields fall back to defaults.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = domain.DefaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		version:    version,
		httpClient: httpClient,
		limiter:    cfg.Limiter,
		norm:       normalizer{now: time.Now, newID: domain.NewID},
	}
}

// FetchPage runs one audit-log search for the scope. The filter's Search field
// is not forwarded: the Snyk API has no free-text search.
func (c *Client) FetchPage(ctx context.Context, scope domain.Scope, filter domain.QueryFilter) (*domain.ResultPage, error) {
	path, err := searchPath(scope)
	if err != nil {
		return nil, err
	}

	params := searchParams(c.version, filter)
	slog.Debug("snyk audit log search", "scope", scope.String(), "params", params.Encode())

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	page, err := c.norm.page(body)
	if err != nil {
		return nil, domain.ErrRemote(0, "failed to fetch %s audit logs: %v", scope.Kind, err)
	}
	return page, nil
}

// TestConnectivity lists organizations to verify the token and network path.
func (c *Client) TestConnectivity(ctx context.Context) port.ConnectivityResult {
	params := url.Values{}
	params.Set("version", c.version)
	if _, err := c.get(ctx, "/orgs", params); err != nil {
		var rErr *domain.RemoteSourceError
		if errors.As(err, &rErr) {
			return port.ConnectivityResult{Success: false, Message: rErr.Message}
		}
		return port.ConnectivityResult{Success: false, Message: "Failed to connect to Snyk API"}
	}
	return port.ConnectivityResult{Success: true, Message: "Connection successful"}
}

func searchPath(scope domain.Scope) (string, error) {
	if scope.ID == "" {
		return "", domain.ErrConfiguration("no %s ID configured", scope.Kind)
	}
	switch scope.Kind {
	case domain.ScopeOrganization:
		return "/orgs/" + url.PathEscape(scope.ID) + "/audit_logs/search", nil
	case domain.ScopeGroup:
		return "/groups/" + url.PathEscape(scope.ID) + "/audit_logs/search", nil
	default:
		return "", domain.ErrConfiguration("unknown scope kind %q", scope.Kind)
	}
}

func searchParams(version string, f domain.QueryFilter) url.Values {
	size := f.Size
	if size <= 0 {
		size = domain.DefaultPageSize
	}

	params := url.Values{}
	params.Set("version", version)
	params.Set("limit", strconv.Itoa(size))
	if f.Cursor != "" {
		params.Set("starting_after", f.Cursor)
	}
	if f.From != nil {
		params.Set("filter[from]", domain.FormatWireTime(*f.From))
	}
	if f.To != nil {
		params.Set("filter[to]", domain.FormatWireTime(*f.To))
	}
	for _, e := range f.Events {
		params.Add("filter[event]", e)
	}
	for _, e := range f.ExcludeEvents {
		params.Add("filter[exclude_event]", e)
	}
	return params
}

// get performs an authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrRemote(0, "snyk request not sent: %v", err)
		}
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.ErrRemote(0, "create request: %v", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrRemote(0, "snyk request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrRemote(resp.StatusCode, "read snyk response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.RemoteSourceError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, body),
		}
	}
	return body, nil
}

// Factory builds clients that share one HTTP client and one limiter.
type Factory struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewFactory creates a client factory. rps <= 0 disables pacing.
func NewFactory(baseURL string, timeout time.Duration, rps float64, burst int) *Factory {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Factory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// NewSource implements port.LogSourceFactory.
func (f *Factory) NewSource(token, apiVersion string) port.LogSource {
	return NewClient(ClientConfig{
		BaseURL:    f.baseURL,
		Token:      token,
		APIVersion: apiVersion,
		HTTPClient: f.httpClient,
		Limiter:    f.limiter,
	})
}

// String is used in log lines; it never includes the token.
func (c *Client) String() string {
	return fmt.Sprintf("snyk(%s, version=%s)", c.baseURL, c.version)
}
