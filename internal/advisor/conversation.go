// Package advisor wraps a chat model as a student well-being advisor with bounded per-user history.
package advisor

import (
	"strings"
	"sync"

	"mindwell-backend/internal/llm"
)

// DefaultHistoryTurns bounds a conversation when no limit is configured.
const DefaultHistoryTurns = 20

// Conversation is a size-bounded turn buffer that always starts with a user turn.
type Conversation struct {
	limit int
	turns []llm.Turn
}

// NewConversation seeds a conversation with prior turns, normalizing roles and dropping blanks.
func NewConversation(limit int, turns []llm.Turn) *Conversation {
	if limit <= 0 {
		limit = DefaultHistoryTurns
	}
	c := &Conversation{limit: limit}
	for _, t := range turns {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		c.turns = append(c.turns, llm.Turn{Role: normalizeRole(t.Role), Text: text})
	}
	c.trim()
	return c
}

// Append records one completed exchange.
func (c *Conversation) Append(user, model string) {
	c.turns = append(c.turns,
		llm.Turn{Role: llm.RoleUser, Text: user},
		llm.Turn{Role: llm.RoleModel, Text: model},
	)
	c.trim()
}

// Turns returns a copy of the buffered turns, oldest first.
func (c *Conversation) Turns() []llm.Turn {
	out := make([]llm.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int { return len(c.turns) }

func (c *Conversation) trim() {
	if len(c.turns) > c.limit {
		c.turns = c.turns[len(c.turns)-c.limit:]
	}
	for len(c.turns) > 0 && c.turns[0].Role != llm.RoleUser {
		c.turns = c.turns[1:]
	}
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case llm.RoleModel, "assistant", "bot":
		return llm.RoleModel
	default:
		return llm.RoleUser
	}
}

// Store keeps each user's conversation in memory.
type Store struct {
	mu    sync.RWMutex
	limit int
	items map[string][]llm.Turn
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultHistoryTurns
	}
	return &Store{limit: limit, items: make(map[string][]llm.Turn)}
}

// Conversation returns a detached copy of the user's conversation.
func (s *Store) Conversation(userID string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewConversation(s.limit, s.items[userID])
}

// Save replaces the stored turns for the user.
func (s *Store) Save(userID string, conv *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv == nil || conv.Len() == 0 {
		delete(s.items, userID)
		return
	}
	s.items[userID] = conv.Turns()
}

// Append records an exchange against the latest stored turns and returns them.
func (s *Store) Append(userID, user, model string) []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := NewConversation(s.limit, s.items[userID])
	conv.Append(user, model)
	s.items[userID] = conv.Turns()
	return conv.Turns()
}

// Clear forgets the user's conversation.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
}

func (s *Store) Limit() int { return s.limit }
