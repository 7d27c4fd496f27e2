package domain

import "github.com/google/uuid"

// NewID generates a random UUID string.
func NewID() string {
	return uuid.NewString()
}
