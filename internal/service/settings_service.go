package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// SettingsService manages the Snyk API configuration.
type SettingsService struct {
	store   port.SettingsStore
	sources port.LogSourceFactory
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store port.SettingsStore, sources port.LogSourceFactory) *SettingsService {
	return &SettingsService{store: store, sources: sources}
}

// Get returns the stored configuration with its token masked.
func (s *SettingsService) Get(ctx context.Context) (*domain.MaskedConfiguration, error) {
	cfg, err := s.store.GetConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	masked := cfg.Masked()
	return &masked, nil
}

// Save tests the credential against the API and then creates or updates the
// configuration. Nothing is stored when the connection test fails.
func (s *SettingsService) Save(ctx context.Context, in domain.ConfigurationInput) (*domain.MaskedConfiguration, error) {
	in = trimInput(in)
	if in.SnykAPIToken == "" {
		return nil, domain.ErrValidation("snykApiToken", "Snyk API token is required")
	}

	result := s.sources.NewSource(in.SnykAPIToken, in.APIVersion).TestConnectivity(ctx)
	if !result.Success {
		slog.Warn("snyk connection test failed", "message", result.Message)
		return nil, domain.ErrConfiguration("%s", result.Message)
	}

	cfg, err := s.upsert(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Info("snyk configuration saved", "org_id", cfg.OrgID, "group_id", cfg.GroupID, "version", cfg.Version())

	masked := cfg.Masked()
	return &masked, nil
}

// Seed stores a configuration from the environment without a connection
// test. An empty token is a no-op.
func (s *SettingsService) Seed(ctx context.Context, in domain.ConfigurationInput) error {
	in = trimInput(in)
	if in.SnykAPIToken == "" {
		return nil
	}
	_, err := s.upsert(ctx, in)
	return err
}

func (s *SettingsService) upsert(ctx context.Context, in domain.ConfigurationInput) (*domain.APIConfiguration, error) {
	existing, err := s.store.GetConfiguration(ctx)
	switch {
	case err == nil:
		return s.store.UpdateConfiguration(ctx, existing.ID, in)
	case errors.Is(err, port.ErrConfigNotFound):
		return s.store.CreateConfiguration(ctx, &domain.APIConfiguration{
			UserID:       domain.DefaultUserID,
			SnykAPIToken: in.SnykAPIToken,
			GroupID:      in.GroupID,
			OrgID:        in.OrgID,
			APIVersion:   in.APIVersion,
		})
	default:
		return nil, err
	}
}

func trimInput(in domain.ConfigurationInput) domain.ConfigurationInput {
	return domain.ConfigurationInput{
		SnykAPIToken: strings.TrimSpace(in.SnykAPIToken),
		GroupID:      strings.TrimSpace(in.GroupID),
		OrgID:        strings.TrimSpace(in.OrgID),
		APIVersion:   strings.TrimSpace(in.APIVersion),
	}
}
