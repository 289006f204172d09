package models

import (
	"fmt"
	"strings"
)

// Message roles for conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is a question against the ingested corpus, optionally restricted to
// specific documents and attached to an existing conversation.
type AskRequest struct {
	Question       string   `json:"question"`
	DocumentIDs    []string `json:"document_ids,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

// Validate trims the question and enforces the 3-500 character bounds.
func (r *AskRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if len(r.Question) < 3 {
		return fmt.Errorf("question must be at least 3 characters")
	}
	if len(r.Question) > 500 {
		return fmt.Errorf("question must be at most 500 characters")
	}
	return nil
}

// Source is one retrieved chunk cited in an answer.
type Source struct {
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	PageNumber     *int    `json:"page_number"`
	ChunkText      string  `json:"chunk_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// AnswerObservability carries the LLM accounting attached to an answer.
type AnswerObservability struct {
	PromptTokens          int     `json:"prompt_tokens"`
	CompletionTokens      int     `json:"completion_tokens"`
	TotalTokens           int     `json:"total_tokens"`
	EstimatedCostUSD      float64 `json:"estimated_cost_usd"`
	LLMLatencyMS          float64 `json:"llm_latency_ms"`
	PromptTemplateKey     string  `json:"prompt_template_key,omitempty"`
	PromptTemplateVersion int     `json:"prompt_template_version,omitempty"`
}

// Answer is the full result of the answer pipeline.
type Answer struct {
	Answer         string               `json:"answer"`
	Sources        []*Source            `json:"sources"`
	ConversationID string               `json:"conversation_id"`
	ProcessingTime float64              `json:"processing_time"`
	ModelUsed      string               `json:"model_used"`
	ChunksUsed     int                  `json:"chunks_used"`
	Observability  *AnswerObservability `json:"observability,omitempty"`
}
