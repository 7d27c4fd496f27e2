package store

import (
	"context"
	"sync"
	"time"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// SettingsStore keeps the single API configuration in memory.
type SettingsStore struct {
	mu  sync.RWMutex
	cfg *domain.APIConfiguration
	now func() time.Time
}

// NewSettingsStore creates an empty settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{now: time.Now}
}

var _ port.SettingsStore = (*SettingsStore)(nil)

// GetConfiguration returns a copy of the stored configuration.
func (s *SettingsStore) GetConfiguration(_ context.Context) (*domain.APIConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, port.ErrConfigNotFound
	}
	out := *s.cfg
	return &out, nil
}

// CreateConfiguration replaces any stored configuration with cfg.
func (s *SettingsStore) CreateConfiguration(_ context.Context, cfg *domain.APIConfiguration) (*domain.APIConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	stored := *cfg
	if stored.ID == "" {
		stored.ID = domain.NewID()
	}
	if stored.UserID == "" {
		stored.UserID = domain.DefaultUserID
	}
	if stored.APIVersion == "" {
		stored.APIVersion = domain.DefaultAPIVersion
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.cfg = &stored

	out := stored
	return &out, nil
}

// UpdateConfiguration overwrites the configuration identified by id.
func (s *SettingsStore) UpdateConfiguration(_ context.Context, id string, in domain.ConfigurationInput) (*domain.APIConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil || s.cfg.ID != id {
		return nil, port.ErrConfigNotFound
	}
	s.cfg.SnykAPIToken = in.SnykAPIToken
	s.cfg.OrgID = in.OrgID
	s.cfg.GroupID = in.GroupID
	s.cfg.APIVersion = in.APIVersion
	if s.cfg.APIVersion == "" {
		s.cfg.APIVersion = domain.DefaultAPIVersion
	}
	s.cfg.UpdatedAt = s.now().UTC()

	out := *s.cfg
	return &out, nil
}
