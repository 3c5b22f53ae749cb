// Package session reconstructs ordered dialogue memory from persisted
// turns. Memory reads degrade gracefully: if the store is unavailable the
// conversation continues with empty context instead of failing the turn.
package session

import (
	"context"
	"log"

	"docubot/internal/model"
)

// Turn is one (role, text) entry of conversational memory, oldest first.
type Turn struct {
	Role    string
	Content string
}

// MessageStore reads persisted chat messages ordered by creation time.
type MessageStore interface {
	ListBySession(chatbotID uint, sessionID string) ([]model.ChatMessage, error)
}

// Cache is the optional read-through history cache.
type Cache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// Manager reconstructs session memory and keeps the cache coherent with
// async message writes.
type Manager struct {
	store MessageStore
	cache Cache
}

func NewManager(store MessageStore, cache Cache) *Manager {
	return &Manager{store: store, cache: cache}
}

// LoadMemory returns the session's turns oldest first. No alternation is
// assumed. A store failure yields empty memory, never an error.
func (m *Manager) LoadMemory(ctx context.Context, chatbotID uint, sessionID string) []Turn {
	messages, err := m.History(ctx, chatbotID, sessionID)
	if err != nil {
		log.Printf("load session %s memory failed, continuing without context: %v", sessionID, err)
		return nil
	}

	turns := make([]Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// History returns the persisted messages oldest first, through the cache
// when it is clean.
func (m *Manager) History(ctx context.Context, chatbotID uint, sessionID string) ([]model.ChatMessage, error) {
	if m.cache != nil {
		if dirty, err := m.cache.IsDirty(ctx, sessionID); err == nil && !dirty {
			if cached, hit, err := m.cache.GetHistory(ctx, sessionID); err == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := m.store.ListBySession(chatbotID, sessionID)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if dirty, err := m.cache.IsDirty(ctx, sessionID); err == nil && !dirty {
			_ = m.cache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

// Invalidate marks the session history dirty and drops the cached copy.
// Called before enqueueing a new turn for async persistence.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) {
	if m.cache == nil {
		return
	}
	_ = m.cache.MarkDirty(ctx, sessionID)
	_ = m.cache.DeleteHistory(ctx, sessionID)
}
