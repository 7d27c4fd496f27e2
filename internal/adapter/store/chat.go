package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// ChatStore keeps chat sessions in memory.
type ChatStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
	now      func() time.Time
}

// NewChatStore creates an empty chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		sessions: make(map[string]*domain.ChatSession),
		now:      time.Now,
	}
}

var _ port.ChatStore = (*ChatStore)(nil)

// GetSession returns a copy of the session.
func (s *ChatStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, port.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

// CreateSession starts an empty session for userID.
func (s *ChatStore) CreateSession(_ context.Context, userID string) (*domain.ChatSession, error) {
	now := s.now().UTC()
	sess := &domain.ChatSession{
		ID:        domain.NewID(),
		UserID:    userID,
		Messages:  []domain.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return cloneSession(sess), nil
}

// UpdateSessionMessages replaces the message history of a session.
func (s *ChatStore) UpdateSessionMessages(_ context.Context, id string, messages []domain.ChatMessage) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, port.ErrSessionNotFound
	}
	sess.Messages = slices.Clone(messages)
	sess.UpdatedAt = s.now().UTC()
	return cloneSession(sess), nil
}

func cloneSession(sess *domain.ChatSession) *domain.ChatSession {
	out := *sess
	out.Messages = slices.Clone(sess.Messages)
	if out.Messages == nil {
		out.Messages = []domain.ChatMessage{}
	}
	return &out
}
