package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrTextGenerationUnavailable = errors.New("text generation unavailable")
	ErrConfigNotFound            = errors.New("configuration not found")
	ErrSessionNotFound           = errors.New("chat session not found")
	ErrRecordNotFound            = errors.New("audit log record not found")
)
