package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/pkg/utils"
)

// noInformationAnswer is returned, without calling the model, when retrieval
// finds nothing for the question.
const noInformationAnswer = "I couldn't find any relevant information in the uploaded documents to answer this question."

// Engine answers questions with retrieval-augmented generation.
type Engine struct {
	store         *vectorstore.Store
	embedder      embedding.Embedder
	generator     *llm.Generator
	conversations *Conversations
	cfg           *config.Config
	logger        *zap.Logger // optional; when set, logs answer events
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for answer events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given store, embedder, and generator.
func NewEngine(
	store *vectorstore.Store,
	embedder embedding.Embedder,
	generator *llm.Generator,
	cfg *config.Config,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		store:         store,
		embedder:      embedder,
		generator:     generator,
		conversations: NewConversations(cfg.RAG.MaxHistoryMessages),
		cfg:           cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnswerQuestion retrieves the chunks most relevant to question, optionally
// restricted to documentIDs, and generates an answer grounded in them. When
// retrieval comes back empty a fixed no-information answer is returned and
// the model is not called. The exchange is appended to the conversation,
// which is created when conversationID is empty.
func (e *Engine) AnswerQuestion(ctx context.Context, question string, documentIDs []string, conversationID string) (*models.Answer, error) {
	start := time.Now()
	if conversationID == "" {
		conversationID = e.conversations.NewID()
	}

	queryEmbedding, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := e.store.Query(ctx, queryEmbedding, e.cfg.RAG.TopK, documentFilter(documentIDs))
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(matches) == 0 {
		if e.logger != nil {
			e.logger.Info("no relevant chunks found", zap.String("conversation_id", conversationID))
		}
		return &models.Answer{
			Answer:         noInformationAnswer,
			Sources:        []*models.Source{},
			ConversationID: conversationID,
			ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
			ModelUsed:      e.generator.ModelName(),
		}, nil
	}

	history := e.conversations.History(conversationID)
	messages := make([]llm.Message, len(history))
	for i, msg := range history {
		messages[i] = llm.Message{Role: msg.Role, Content: msg.Content}
	}

	docIDs := documentIDs
	if docIDs == nil {
		docIDs = []string{}
	}
	result, err := e.generator.GenerateAnswer(ctx, question, buildContext(matches), messages, conversationID, map[string]interface{}{
		"document_ids":     docIDs,
		"chunks_retrieved": len(matches),
	})
	if err != nil {
		return nil, err
	}

	e.conversations.Append(conversationID, question, result.Answer)
	if e.logger != nil {
		e.logger.Info("question answered",
			zap.String("conversation_id", conversationID),
			zap.Int("chunks_used", len(matches)),
			zap.Int("total_tokens", result.TotalTokens))
	}

	return &models.Answer{
		Answer:         result.Answer,
		Sources:        formatSources(matches),
		ConversationID: conversationID,
		ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
		ModelUsed:      e.generator.ModelName(),
		ChunksUsed:     len(matches),
		Observability: &models.AnswerObservability{
			PromptTokens:          result.PromptTokens,
			CompletionTokens:      result.CompletionTokens,
			TotalTokens:           result.TotalTokens,
			EstimatedCostUSD:      result.CostUSD,
			LLMLatencyMS:          result.LatencyMS,
			PromptTemplateKey:     result.PromptTemplateKey,
			PromptTemplateVersion: result.PromptTemplateVersion,
		},
	}, nil
}

// ConversationHistory returns the recorded exchanges for a conversation,
// oldest first.
func (e *Engine) ConversationHistory(conversationID string) []models.Message {
	return e.conversations.History(conversationID)
}

// Stats reports corpus size alongside the pipeline configuration behind it.
func (e *Engine) Stats(ctx context.Context) (*models.Stats, error) {
	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	chunks, err := e.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	return &models.Stats{
		TotalDocuments:     len(docs),
		TotalChunks:        chunks,
		TotalConversations: e.conversations.Count(),
		EmbeddingModel:     e.cfg.Embedding.Model,
		LLMModel:           e.generator.ModelName(),
		ChunkSize:          e.cfg.RAG.ChunkSize,
		ChunkOverlap:       e.cfg.RAG.ChunkOverlap,
	}, nil
}

// HealthCheck probes each dependency. Overall status is degraded when any
// component is unhealthy.
func (e *Engine) HealthCheck(ctx context.Context) *models.Health {
	health := &models.Health{
		Status:     models.HealthHealthy,
		Components: make(map[string]string),
	}
	report := func(name string, ok bool) {
		state := models.HealthHealthy
		if !ok {
			state = models.HealthUnhealthy
			health.Status = models.HealthDegraded
		}
		health.Components[name] = state
	}

	report("llm_api", e.generator.Probe(ctx))
	report("vector_store", e.store.Ping(ctx) == nil)

	vec, err := e.embedder.Embed(ctx, "health check")
	report("embeddings", err == nil && len(vec) == e.embedder.Dimensions())

	return health
}

// documentFilter builds the metadata filter for an optional document scope.
func documentFilter(documentIDs []string) vectorstore.Filter {
	switch len(documentIDs) {
	case 0:
		return nil
	case 1:
		return vectorstore.Filter{"document_id": documentIDs[0]}
	default:
		return vectorstore.Filter{"document_id": documentIDs}
	}
}

// buildContext renders retrieved chunks into the prompt's context block. Each
// chunk is labeled with its source document and page so the model can cite them.
func buildContext(matches []*vectorstore.QueryResult) string {
	parts := make([]string, 0, len(matches))
	for i, match := range matches {
		label := fmt.Sprintf("[Source %d - %s", i+1, displayName(match.Metadata))
		if page, ok := pageNumber(match.Metadata); ok {
			label += fmt.Sprintf(", Page %d", page)
		}
		label += "]"
		parts = append(parts, fmt.Sprintf("%s\n%s\n", label, match.Text))
	}
	return strings.Join(parts, "\n")
}

// formatSources converts retrieval hits into answer citations. Chunk text is
// cut to 200 characters.
func formatSources(matches []*vectorstore.QueryResult) []*models.Source {
	sources := make([]*models.Source, 0, len(matches))
	for _, match := range matches {
		source := &models.Source{
			DocumentID:     metaString(match.Metadata, "document_id"),
			DocumentName:   displayName(match.Metadata),
			ChunkText:      utils.Truncate(match.Text, 200),
			RelevanceScore: utils.Round(match.Score, 4),
		}
		if page, ok := pageNumber(match.Metadata); ok {
			p := page
			source.PageNumber = &p
		}
		sources = append(sources, source)
	}
	return sources
}

func displayName(meta map[string]interface{}) string {
	if name := metaString(meta, "filename"); name != "" {
		return name
	}
	return "Unknown"
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// pageNumber reads the optional page metadata; JSON decoding yields float64.
func pageNumber(meta map[string]interface{}) (int, bool) {
	switch v := meta["page_number"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
