// Package conversation keeps bounded per-conversation history for the
// chat engine. Each conversation holds at most a fixed number of
// turns; the global store holds at most a fixed number of
// conversations, evicting the least recently touched one first.
package conversation

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Turn is one completed user/assistant exchange.
type Turn struct {
	UserText      string
	AssistantText string
	CreatedAt     time.Time
}

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// Memory stores conversation histories. Mutations on the same
// conversation id are serialized; distinct ids proceed concurrently.
type Memory struct {
	mu       sync.Mutex
	convs    *lru.Cache[string, *conversation]
	maxTurns int
}

// NewMemory builds a store holding at most maxConversations entries of
// maxTurns turns each. Non-positive bounds fall back to 1000 and 10.
func NewMemory(maxConversations, maxTurns int) (*Memory, error) {
	if maxConversations <= 0 {
		maxConversations = 1000
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}
	convs, err := lru.New[string, *conversation](maxConversations)
	if err != nil {
		return nil, err
	}
	return &Memory{convs: convs, maxTurns: maxTurns}, nil
}

// AddTurn appends an exchange to the conversation, creating it if
// needed. When the conversation is at capacity the oldest turn is
// dropped; when the store is at capacity the least recently touched
// conversation is evicted.
func (m *Memory) AddTurn(conversationID, userText, assistantText string) {
	c := m.touch(conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{
		UserText:      userText,
		AssistantText: assistantText,
		CreatedAt:     time.Now().UTC(),
	})
	if len(c.turns) > m.maxTurns {
		c.turns = append(c.turns[:0], c.turns[len(c.turns)-m.maxTurns:]...)
	}
}

// History returns up to lastN turns for the conversation, oldest
// first. A lastN of zero or less returns the full stored history. An
// unknown conversation id returns nil.
func (m *Memory) History(conversationID string, lastN int) []Turn {
	m.mu.Lock()
	c, ok := m.convs.Get(conversationID)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	turns := c.turns
	if lastN > 0 && len(turns) > lastN {
		turns = turns[len(turns)-lastN:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Len reports the number of live conversations.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convs.Len()
}

// touch fetches or creates the conversation, refreshing its recency.
func (m *Memory) touch(conversationID string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs.Get(conversationID); ok {
		return c
	}
	c := &conversation{}
	m.convs.Add(conversationID, c)
	return c
}
