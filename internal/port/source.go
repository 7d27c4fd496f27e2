package port

import (
	"context"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
)

// LogSource is a remote paginated audit-log search endpoint.
type LogSource interface {
	// FetchPage runs one search against the scope and returns normalized records.
	FetchPage(ctx context.Context, scope domain.Scope, filter domain.QueryFilter) (*domain.ResultPage, error)

	// TestConnectivity performs a lightweight authenticated call.
	TestConnectivity(ctx context.Context) ConnectivityResult
}

// ConnectivityResult reports whether the remote source accepted a call.
type ConnectivityResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LogSourceFactory builds a LogSource for a credential. Credentials can change
// at runtime, so sources are built per request.
type LogSourceFactory interface {
	NewSource(token, apiVersion string) LogSource
}
