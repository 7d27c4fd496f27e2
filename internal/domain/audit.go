package domain

import (
	"fmt"
	"time"
)

// DefaultEvent is used when a source item carries no event name.
const DefaultEvent = "unknown.event"

// LogRecord is the canonical audit event every ingestion path converges to.
type LogRecord struct {
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	Created   time.Time      `json:"created"`
	OrgID     *string        `json:"orgId"`
	GroupID   *string        `json:"groupId"`
	ProjectID *string        `json:"projectId"`
	Content   map[string]any `json:"content"`
}

// ScopeKind identifies which Snyk resource an audit-log search is bound to.
type ScopeKind string

// Scope kinds.
const (
	ScopeOrganization ScopeKind = "organization"
	ScopeGroup        ScopeKind = "group"
)

// Scope is the organization or group boundary of a query.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func (s Scope) String() string {
	return fmt.Sprintf("%s/%s", s.Kind, s.ID)
}

// ResolveScope picks the active scope. Organization wins when both are set.
func ResolveScope(orgID, groupID string) (Scope, error) {
	switch {
	case orgID != "":
		return Scope{Kind: ScopeOrganization, ID: orgID}, nil
	case groupID != "":
		return Scope{Kind: ScopeGroup, ID: groupID}, nil
	default:
		return Scope{}, ErrConfiguration("no organization or group ID configured")
	}
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
