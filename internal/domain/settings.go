package domain

import "time"

// DefaultAPIVersion is the Snyk REST API version used when none is configured.
const DefaultAPIVersion = "2024-10-15"

// MaskedToken replaces the stored token in responses.
const MaskedToken = "***"

// APIConfiguration holds the Snyk credentials and scope for the dashboard.
type APIConfiguration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SnykAPIToken string    `json:"-"` // never serialized to JSON
	GroupID      string    `json:"groupId,omitempty"`
	OrgID        string    `json:"orgId,omitempty"`
	APIVersion   string    `json:"apiVersion"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Version returns the configured API version or the default.
func (c *APIConfiguration) Version() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

// Scope resolves the configured scope, organization first.
func (c *APIConfiguration) Scope() (Scope, error) {
	return ResolveScope(c.OrgID, c.GroupID)
}

// ConfigurationInput is the payload accepted when saving settings.
type ConfigurationInput struct {
	SnykAPIToken string `json:"snykApiToken"`
	GroupID      string `json:"groupId"`
	OrgID        string `json:"orgId"`
	APIVersion   string `json:"apiVersion"`
}

// DefaultUserID owns the single configuration and chat sessions.
const DefaultUserID = "default"

// MaskedConfiguration is the client-facing view of APIConfiguration. The
// token is replaced by MaskedToken, or null when none is stored.
type MaskedConfiguration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SnykAPIToken *string   `json:"snykApiToken"`
	GroupID      string    `json:"groupId,omitempty"`
	OrgID        string    `json:"orgId,omitempty"`
	APIVersion   string    `json:"apiVersion"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Masked returns the configuration with its token hidden.
func (c *APIConfiguration) Masked() MaskedConfiguration {
	var token *string
	if c.SnykAPIToken != "" {
		token = StringPtr(MaskedToken)
	}
	return MaskedConfiguration{
		ID:           c.ID,
		UserID:       c.UserID,
		SnykAPIToken: token,
		GroupID:      c.GroupID,
		OrgID:        c.OrgID,
		APIVersion:   c.Version(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
