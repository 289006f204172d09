package models

import (
	"fmt"
	"strings"
	"time"
)

// PromptTemplate is one version of a named system prompt. At most one version
// per key is active at a time.
type PromptTemplate struct {
	ID           int64     `json:"id" db:"id"`
	TemplateKey  string    `json:"template_key" db:"template_key"`
	Version      int       `json:"version" db:"version"`
	TemplateText string    `json:"template_text" db:"template_text"`
	Description  string    `json:"description,omitempty" db:"description"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PromptTemplateCreate is a request to add a new version of a prompt template,
// optionally activating it.
type PromptTemplateCreate struct {
	TemplateKey  string `json:"template_key"`
	TemplateText string `json:"template_text"`
	Description  string `json:"description,omitempty"`
	Activate     *bool  `json:"activate,omitempty"`
}

// Validate trims the key and enforces field length bounds.
func (p *PromptTemplateCreate) Validate() error {
	p.TemplateKey = strings.TrimSpace(p.TemplateKey)
	if len(p.TemplateKey) < 2 || len(p.TemplateKey) > 100 {
		return fmt.Errorf("template_key must be 2-100 characters")
	}
	if len(strings.TrimSpace(p.TemplateText)) < 10 {
		return fmt.Errorf("template_text must be at least 10 characters")
	}
	return nil
}

// ShouldActivate reports whether the new version becomes active. Unset
// defaults to true.
func (p *PromptTemplateCreate) ShouldActivate() bool {
	if p.Activate != nil {
		return *p.Activate
	}
	return true
}

// LogRecord is the write-side shape for one LLM call. Cost and total tokens are
// computed by the store when the record is inserted.
type LogRecord struct {
	RequestType           string
	ConversationID        string
	Model                 string
	Question              string
	PromptInput           string
	PromptTemplateKey     string
	PromptTemplateVersion int
	ResponseText          string
	Metadata              map[string]interface{}
	PromptTokens          int
	CompletionTokens      int
	LatencyMS             float64
	Success               bool
	ErrorMessage          string
}

// RequestLogEntry is one stored LLM request log row as returned by the logs endpoint.
type RequestLogEntry struct {
	ID               int64     `json:"id" db:"id"`
	RequestType      string    `json:"request_type" db:"request_type"`
	ConversationID   string    `json:"conversation_id,omitempty" db:"conversation_id"`
	Model            string    `json:"model" db:"model"`
	Question         string    `json:"question,omitempty" db:"question"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	CostUSD          float64   `json:"cost_usd" db:"cost_usd"`
	LatencyMS        float64   `json:"latency_ms" db:"latency_ms"`
	Success          bool      `json:"success" db:"success"`
	ErrorMessage     string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// MetricsTotals aggregates request logs over a window.
type MetricsTotals struct {
	TotalQueries     int     `json:"total_queries"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	AverageLatencyMS float64 `json:"average_latency_ms"`
	SuccessCount     int     `json:"success_count"`
	FailureCount     int     `json:"failure_count"`
}

// DailyTrend is one calendar day of aggregated request logs.
type DailyTrend struct {
	Date             string  `json:"date"`
	Queries          int     `json:"queries"`
	Tokens           int64   `json:"tokens"`
	CostUSD          float64 `json:"cost_usd"`
	AverageLatencyMS float64 `json:"average_latency_ms"`
}

// MetricsSummary is the metrics endpoint payload: totals plus a chronological
// per-day breakdown.
type MetricsSummary struct {
	WindowHours int           `json:"window_hours"`
	Summary     MetricsTotals `json:"summary"`
	Trends      []DailyTrend  `json:"trends"`
}
