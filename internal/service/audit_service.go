package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// MaxExportRecords caps how many remote records an export collects.
const MaxExportRecords = 1000

// AuditService is the single entry point for audit-log requests. It reads
// from the remote source, mirrors results into the cache, and serves local
// cache queries.
type AuditService struct {
	settings port.SettingsStore
	sources  port.LogSourceFactory
	cache    port.LogCache
}

// NewAuditService creates a new audit service.
func NewAuditService(settings port.SettingsStore, sources port.LogSourceFactory, cache port.LogCache) *AuditService {
	return &AuditService{settings: settings, sources: sources, cache: cache}
}

// FetchAuditLogs fetches one page from the configured scope and mirrors it
// into the cache. Organization scope wins when both are configured.
func (s *AuditService) FetchAuditLogs(ctx context.Context, params domain.FilterParams) (*domain.ResultPage, error) {
	filter, err := params.Normalize()
	if err != nil {
		return nil, err
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := cfg.Scope()
	if err != nil {
		return nil, err
	}
	return s.fetchAndMirror(ctx, cfg, scope, filter)
}

// FetchAuditLogsIn is FetchAuditLogs against an explicit scope.
func (s *AuditService) FetchAuditLogsIn(ctx context.Context, scope domain.Scope, params domain.FilterParams) (*domain.ResultPage, error) {
	filter, err := params.Normalize()
	if err != nil {
		return nil, err
	}
	if scope.ID == "" {
		return nil, domain.ErrConfiguration("no %s ID configured", scope.Kind)
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s.fetchAndMirror(ctx, cfg, scope, filter)
}

func (s *AuditService) fetchAndMirror(ctx context.Context, cfg *domain.APIConfiguration, scope domain.Scope, filter domain.QueryFilter) (*domain.ResultPage, error) {
	src := s.sources.NewSource(cfg.SnykAPIToken, cfg.Version())
	page, err := src.FetchPage(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	mirrored := 0
	for _, rec := range page.Items {
		if _, err := s.cache.Insert(ctx, rec); err != nil {
			mErr := &domain.CacheMirrorError{RecordID: rec.ID, Err: err}
			slog.Warn("cache mirror failed", "error", mErr)
			continue
		}
		mirrored++
	}

	slog.Info("audit logs fetched",
		"scope", scope.String(),
		"items", len(page.Items),
		"mirrored", mirrored,
		"total", page.Total,
		"has_next", page.NextCursor != "",
	)
	return page, nil
}

// QueryCache filters and paginates the local cache. Unlike the remote source
// it honors the search term.
func (s *AuditService) QueryCache(ctx context.Context, params domain.FilterParams) (*domain.ResultPage, error) {
	filter, err := params.Normalize()
	if err != nil {
		return nil, err
	}
	return s.cache.Query(ctx, filter)
}

// CollectForExport gathers up to MaxExportRecords remote records by following
// cursors from the configured scope.
func (s *AuditService) CollectForExport(ctx context.Context, params domain.FilterParams) ([]domain.LogRecord, error) {
	return s.Collect(ctx, params, MaxExportRecords)
}

// Collect follows remote cursors until the source is exhausted or limit
// records have been gathered. Collected records are not mirrored.
func (s *AuditService) Collect(ctx context.Context, params domain.FilterParams, limit int) ([]domain.LogRecord, error) {
	filter, err := params.Normalize()
	if err != nil {
		return nil, err
	}
	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := cfg.Scope()
	if err != nil {
		return nil, err
	}

	src := s.sources.NewSource(cfg.SnykAPIToken, cfg.Version())
	filter = filter.WithSize(domain.MaxPageSize)

	var out []domain.LogRecord
	for len(out) < limit {
		page, err := src.FetchPage(ctx, scope, filter)
		if err != nil {
			return nil, fmt.Errorf("collect %s audit logs: %w", scope, err)
		}
		out = append(out, page.Items...)

		if page.NextCursor == "" || page.NextCursor == filter.Cursor || len(page.Items) == 0 {
			break
		}
		filter = filter.WithCursor(page.NextCursor)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []domain.LogRecord{}
	}
	return out, nil
}

// activeConfig returns the stored configuration or a ConfigurationError when
// no credential is available.
func (s *AuditService) activeConfig(ctx context.Context) (*domain.APIConfiguration, error) {
	cfg, err := s.settings.GetConfiguration(ctx)
	if errors.Is(err, port.ErrConfigNotFound) {
		return nil, domain.ErrConfiguration("Snyk API not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.SnykAPIToken == "" {
		return nil, domain.ErrConfiguration("Snyk API not configured")
	}
	return cfg, nil
}
