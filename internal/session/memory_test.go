package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/model"
)

type fakeStore struct {
	messages []model.ChatMessage
	err      error
	calls    int
}

func (s *fakeStore) ListBySession(chatbotID uint, sessionID string) ([]model.ChatMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

type fakeCache struct {
	history map[string][]model.ChatMessage
	dirty   map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		history: make(map[string][]model.ChatMessage),
		dirty:   make(map[string]bool),
	}
}

func (c *fakeCache) GetHistory(_ context.Context, sessionID string) ([]model.ChatMessage, bool, error) {
	msgs, ok := c.history[sessionID]
	return msgs, ok, nil
}

func (c *fakeCache) SetHistory(_ context.Context, sessionID string, messages []model.ChatMessage) error {
	c.history[sessionID] = messages
	return nil
}

func (c *fakeCache) DeleteHistory(_ context.Context, sessionID string) error {
	delete(c.history, sessionID)
	return nil
}

func (c *fakeCache) MarkDirty(_ context.Context, sessionID string) error {
	c.dirty[sessionID] = true
	return nil
}

func (c *fakeCache) IsDirty(_ context.Context, sessionID string) (bool, error) {
	return c.dirty[sessionID], nil
}

func conversation() []model.ChatMessage {
	return []model.ChatMessage{
		{Role: model.RoleUser, Content: "U1"},
		{Role: model.RoleAssistant, Content: "A1"},
		{Role: model.RoleUser, Content: "U2"},
		{Role: model.RoleAssistant, Content: "A2"},
	}
}

func TestLoadMemoryPreservesOrder(t *testing.T) {
	m := NewManager(&fakeStore{messages: conversation()}, nil)

	turns := m.LoadMemory(context.Background(), 1, "sess-1")

	require.Len(t, turns, 4)
	assert.Equal(t, Turn{Role: model.RoleUser, Content: "U1"}, turns[0])
	assert.Equal(t, Turn{Role: model.RoleAssistant, Content: "A1"}, turns[1])
	assert.Equal(t, Turn{Role: model.RoleUser, Content: "U2"}, turns[2])
	assert.Equal(t, Turn{Role: model.RoleAssistant, Content: "A2"}, turns[3])
}

func TestLoadMemoryDegradesToEmptyOnStoreFailure(t *testing.T) {
	m := NewManager(&fakeStore{err: fmt.Errorf("store unavailable")}, nil)

	turns := m.LoadMemory(context.Background(), 1, "sess-1")

	assert.Empty(t, turns)
}

func TestHistoryUsesCleanCache(t *testing.T) {
	store := &fakeStore{messages: conversation()}
	cache := newFakeCache()
	m := NewManager(store, cache)
	ctx := context.Background()

	first, err := m.History(ctx, 1, "sess-1")
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Equal(t, 1, store.calls)

	// Second read is served from cache.
	second, err := m.History(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls)
}

func TestHistorySkipsCacheWhileDirty(t *testing.T) {
	store := &fakeStore{messages: conversation()}
	cache := newFakeCache()
	m := NewManager(store, cache)
	ctx := context.Background()

	m.Invalidate(ctx, "sess-1")

	_, err := m.History(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	_, cached := cache.history["sess-1"]
	assert.False(t, cached, "dirty sessions must not be re-cached")
}
