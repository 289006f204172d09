// Package rag answers questions over the ingested corpus: embed the question,
// retrieve the closest chunks, and hand them to the language model together
// with the conversation so far.
package rag

import (
	"sync"

	"github.com/hyperjump/kotae/internal/ids"
	"github.com/hyperjump/kotae/internal/models"
)

// Conversations is an in-memory history of question/answer exchanges keyed by
// conversation ID. Each history is capped; the oldest messages fall off first.
type Conversations struct {
	mu          sync.RWMutex
	maxMessages int
	history     map[string][]models.Message
}

// NewConversations returns an empty store keeping at most maxMessages messages
// per conversation. Values below one fall back to 20.
func NewConversations(maxMessages int) *Conversations {
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &Conversations{
		maxMessages: maxMessages,
		history:     make(map[string][]models.Message),
	}
}

// NewID returns a fresh conversation identifier.
func (c *Conversations) NewID() string {
	return ids.NewConversationID()
}

// History returns a copy of the conversation's messages, oldest first. An
// unknown ID yields an empty history.
func (c *Conversations) History(id string) []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := c.history[id]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append records one exchange and trims the history to the newest maxMessages.
func (c *Conversations) Append(id, question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := append(c.history[id],
		models.Message{Role: models.RoleUser, Content: question},
		models.Message{Role: models.RoleAssistant, Content: answer},
	)
	if len(msgs) > c.maxMessages {
		msgs = msgs[len(msgs)-c.maxMessages:]
	}
	c.history[id] = msgs
}

// Len returns the number of messages recorded for a conversation.
func (c *Conversations) Len(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.history[id])
}

// Count returns the number of conversations holding at least one message.
func (c *Conversations) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.history)
}
