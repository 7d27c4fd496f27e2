// Package domain defines the audit-log types, filters and error taxonomy.
package domain

import "fmt"

// ValidationError indicates malformed filter or request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConfigurationError indicates a missing scope or credential.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// RemoteSourceError is a non-success response or transport failure from the
// remote audit-log source. Status is 0 for transport failures.
type RemoteSourceError struct {
	Status  int
	Message string
}

func (e *RemoteSourceError) Error() string { return e.Message }

// CacheMirrorError is a failed insert of a fetched record into the cache.
// It is logged and never surfaced to callers.
type CacheMirrorError struct {
	RecordID string
	Err      error
}

func (e *CacheMirrorError) Error() string {
	return fmt.Sprintf("mirror record %q: %v", e.RecordID, e.Err)
}

func (e *CacheMirrorError) Unwrap() error { return e.Err }

// ErrValidation creates a ValidationError for field with a formatted message.
func ErrValidation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ErrRemote creates a RemoteSourceError.
func ErrRemote(status int, format string, args ...interface{}) *RemoteSourceError {
	return &RemoteSourceError{Status: status, Message: fmt.Sprintf(format, args...)}
}
