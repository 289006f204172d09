// Package llm provides the chat completion client and the answer generator
// that renders prompt templates, calls the model, and records every request.
package llm

import "context"

// Message roles understood by chat completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single chat call. Zero values fall back to the client's
// configured defaults.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Completion is a finished chat response with the API's usage accounting.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is a chat completion backend.
type Client interface {
	// Chat sends the messages and blocks until the full completion arrives.
	Chat(ctx context.Context, messages []Message, opts Options) (*Completion, error)
	// ChatStream sends the messages and delivers the completion incrementally.
	// Both channels are closed when the stream ends; a send on the error
	// channel terminates the stream.
	ChatStream(ctx context.Context, messages []Message, opts Options) (<-chan string, <-chan error)
	// ModelName returns the configured model identifier.
	ModelName() string
}
