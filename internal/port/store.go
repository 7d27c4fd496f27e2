package port

import (
	"context"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
)

// LogCache is the in-process mirror of fetched audit records.
type LogCache interface {
	// Insert stores rec under rec.ID. An existing record with the same ID is
	// overwritten.
	Insert(ctx context.Context, rec domain.LogRecord) (domain.LogRecord, error)

	// Query filters, sorts newest first and paginates the cached records.
	Query(ctx context.Context, filter domain.QueryFilter) (*domain.ResultPage, error)

	// Get returns the record with the given ID.
	Get(ctx context.Context, id string) (domain.LogRecord, error)

	// All returns every cached record in no particular order.
	All(ctx context.Context) ([]domain.LogRecord, error)
}

// SettingsStore holds the API configuration.
type SettingsStore interface {
	GetConfiguration(ctx context.Context) (*domain.APIConfiguration, error)
	CreateConfiguration(ctx context.Context, cfg *domain.APIConfiguration) (*domain.APIConfiguration, error)
	UpdateConfiguration(ctx context.Context, id string, in domain.ConfigurationInput) (*domain.APIConfiguration, error)
}

// ChatStore holds chat sessions.
type ChatStore interface {
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)
	CreateSession(ctx context.Context, userID string) (*domain.ChatSession, error)
	UpdateSessionMessages(ctx context.Context, id string, messages []domain.ChatMessage) (*domain.ChatSession, error)
}
