package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/observability"
	"github.com/hyperjump/kotae/pkg/utils"
)

// RAGPromptTemplateKey names the versioned system prompt rendered for every answer.
const RAGPromptTemplateKey = "rag_qa_system_prompt"

// RequestTypeRAGAnswer tags answer-generation rows in the request log.
const RequestTypeRAGAnswer = "rag_answer"

const defaultRAGPromptDescription = "Default RAG system prompt template used for question answering."

const defaultRAGSystemPrompt = `You are a helpful AI assistant that answers questions based on the provided context from documents.

IMPORTANT RULES:
1. Answer ONLY based on the context provided
2. If the context doesn't contain the answer, say "I cannot find this information in the provided documents"
3. Be concise but comprehensive
4. Cite specific parts of the context when relevant
5. If you're uncertain, express your uncertainty
6. Use a professional but friendly tone

Context from documents:
{context}

Remember: Only use information from the context above. Do not use your general knowledge.`

// GenerateResult is a generated answer with the call's usage accounting.
type GenerateResult struct {
	Answer                string
	LatencyMS             float64
	PromptTokens          int
	CompletionTokens      int
	TotalTokens           int
	CostUSD               float64
	PromptTemplateKey     string
	PromptTemplateVersion int
}

// Generator renders the active prompt template, calls the model, and records
// every request in the observability store.
type Generator struct {
	client Client
	obs    *observability.Store
	logger *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets a logger for request accounting.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator over the given client and store.
func NewGenerator(client Client, obs *observability.Store, opts ...GeneratorOption) *Generator {
	g := &Generator{client: client, obs: obs}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureDefaultTemplate seeds version 1 of the answer prompt when the key has
// never been stored. Called once at startup; GenerateAnswer also ensures on miss.
func (g *Generator) EnsureDefaultTemplate(ctx context.Context) error {
	_, err := g.obs.EnsureTemplate(ctx, RAGPromptTemplateKey, defaultRAGSystemPrompt, defaultRAGPromptDescription)
	return err
}

// GenerateAnswer renders the context into the active template, sends
// [system, history..., question] to the model, and logs the outcome. A model
// failure is logged with zero tokens and then returned.
func (g *Generator) GenerateAnswer(ctx context.Context, question, contextBlock string, history []Message, conversationID string, metadata map[string]interface{}) (*GenerateResult, error) {
	tpl, err := g.resolveTemplate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prompt template: %w", err)
	}
	systemPrompt := strings.ReplaceAll(tpl.TemplateText, "{context}", contextBlock)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: question})

	start := time.Now()
	completion, err := g.client.Chat(ctx, messages, Options{})
	latencyMS := utils.Round(float64(time.Since(start).Microseconds())/1000.0, 2)

	if err != nil {
		g.record(ctx, &models.LogRecord{
			RequestType:           RequestTypeRAGAnswer,
			ConversationID:        conversationID,
			Model:                 g.client.ModelName(),
			Question:              question,
			PromptInput:           systemPrompt,
			PromptTemplateKey:     tpl.TemplateKey,
			PromptTemplateVersion: tpl.Version,
			Metadata:              metadata,
			LatencyMS:             latencyMS,
			Success:               false,
			ErrorMessage:          err.Error(),
		})
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	logMeta := map[string]interface{}{
		"history_messages": len(history),
		"context_length":   len(contextBlock),
	}
	for k, v := range metadata {
		logMeta[k] = v
	}
	g.record(ctx, &models.LogRecord{
		RequestType:           RequestTypeRAGAnswer,
		ConversationID:        conversationID,
		Model:                 g.client.ModelName(),
		Question:              question,
		PromptInput:           systemPrompt,
		PromptTemplateKey:     tpl.TemplateKey,
		PromptTemplateVersion: tpl.Version,
		ResponseText:          completion.Text,
		Metadata:              logMeta,
		PromptTokens:          completion.PromptTokens,
		CompletionTokens:      completion.CompletionTokens,
		LatencyMS:             latencyMS,
		Success:               true,
	})

	if g.logger != nil {
		g.logger.Info("generated answer",
			zap.Float64("latency_ms", latencyMS),
			zap.Int("prompt_tokens", completion.PromptTokens),
			zap.Int("completion_tokens", completion.CompletionTokens))
	}

	return &GenerateResult{
		Answer:                completion.Text,
		LatencyMS:             latencyMS,
		PromptTokens:          completion.PromptTokens,
		CompletionTokens:      completion.CompletionTokens,
		TotalTokens:           completion.TotalTokens,
		CostUSD:               g.obs.CostUSD(completion.PromptTokens, completion.CompletionTokens),
		PromptTemplateKey:     tpl.TemplateKey,
		PromptTemplateVersion: tpl.Version,
	}, nil
}

// ModelName reports the model the underlying client sends requests to.
func (g *Generator) ModelName() string {
	return g.client.ModelName()
}

// Probe checks the model API is reachable with a minimal completion.
func (g *Generator) Probe(ctx context.Context) bool {
	_, err := g.client.Chat(ctx, []Message{{Role: RoleUser, Content: "Hello"}}, Options{MaxTokens: 10})
	return err == nil
}

// Summarize produces a short preview of text. Input is capped at 4000
// characters to stay inside the model's context window.
func (g *Generator) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following text in approximately 200 words.
Be concise and capture the main points.

Text:
%s

Summary:`, utils.Cut(text, 4000))

	completion, err := g.client.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}},
		Options{Temperature: 0.3, MaxTokens: 300})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return completion.Text, nil
}

// resolveTemplate returns the active answer template, seeding the default when
// no version of the key is active.
func (g *Generator) resolveTemplate(ctx context.Context) (*models.PromptTemplate, error) {
	tpl, err := g.obs.ActiveTemplate(ctx, RAGPromptTemplateKey)
	if err != nil {
		return nil, err
	}
	if tpl != nil {
		return tpl, nil
	}
	return g.obs.EnsureTemplate(ctx, RAGPromptTemplateKey, defaultRAGSystemPrompt, defaultRAGPromptDescription)
}

func (g *Generator) record(ctx context.Context, rec *models.LogRecord) {
	if _, err := g.obs.LogRequest(ctx, rec); err != nil && g.logger != nil {
		g.logger.Warn("failed to record llm request log", zap.Error(err))
	}
}
