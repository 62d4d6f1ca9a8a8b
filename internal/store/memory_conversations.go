package store

import (
	"sync"

	"surefile/pkg/domain"
)

// MemoryConversationStore keeps chat history in-process. Each conversation
// carries its own mutex so appends for one conversation are serialized
// without blocking the rest of the map.
type MemoryConversationStore struct {
	mu     sync.RWMutex
	convs  map[string]*memoryConversation
	byUser map[string]string // user ID -> conversation ID (first created wins)
}

type memoryConversation struct {
	mu       sync.Mutex
	conv     domain.Conversation
	messages []domain.Message
}

// NewMemoryConversationStore initializes an empty conversation store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		convs:  make(map[string]*memoryConversation),
		byUser: make(map[string]string),
	}
}

// CreateConversation registers a new conversation.
func (m *MemoryConversationStore) CreateConversation(c domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[c.ID] = &memoryConversation{conv: c}
	if c.UserID != "" {
		if _, ok := m.byUser[c.UserID]; !ok {
			m.byUser[c.UserID] = c.ID
		}
	}
	return nil
}

// GetConversation returns one conversation by ID.
func (m *MemoryConversationStore) GetConversation(id string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	entry, ok := m.convs[id]
	m.mu.RUnlock()
	if !ok {
		return domain.Conversation{}, false, nil
	}
	return entry.snapshot(), true, nil
}

// GetConversationByUser returns the user's single chat thread when present.
func (m *MemoryConversationStore) GetConversationByUser(userID string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	id, ok := m.byUser[userID]
	var entry *memoryConversation
	if ok {
		entry, ok = m.convs[id]
	}
	m.mu.RUnlock()
	if !ok {
		return domain.Conversation{}, false, nil
	}
	return entry.snapshot(), true, nil
}

// snapshot copies the conversation under the entry mutex; AppendMessage
// mutates conv.UpdatedAt holding the same lock.
func (c *memoryConversation) snapshot() domain.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv
}

// AppendMessage records a message. Appends to the same conversation are
// serialized by its per-conversation mutex.
func (m *MemoryConversationStore) AppendMessage(conversationID string, msg domain.Message) error {
	m.mu.RLock()
	entry, ok := m.convs[conversationID]
	m.mu.RUnlock()
	if !ok {
		return ErrConversationNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	msg.ConversationID = conversationID
	entry.messages = append(entry.messages, msg)
	entry.conv.UpdatedAt = msg.CreatedAt
	return nil
}

// ListMessages returns messages in append order.
func (m *MemoryConversationStore) ListMessages(conversationID string, limit int) ([]domain.Message, error) {
	m.mu.RLock()
	entry, ok := m.convs[conversationID]
	m.mu.RUnlock()
	if !ok {
		return []domain.Message{}, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	msgs := entry.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
