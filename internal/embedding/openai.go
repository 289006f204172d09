package embedding

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kotae/pkg/utils"
)

// OpenAIEmbedder produces embeddings through any OpenAI-compatible embeddings
// endpoint. Results are cached by text so repeated questions do not re-embed.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
	cache      *EmbeddingCache
}

// NewOpenAIEmbedder creates an embedder backed by the given API. baseURL may be
// empty for the default OpenAI endpoint. batchSize bounds how many texts go
// into a single request.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions, batchSize, cacheSize int) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
		cache:      NewEmbeddingCache(cacheSize),
	}
}

// Embed returns the embedding for text. Empty or whitespace-only text yields a
// zero vector without an API call.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dimensions), nil
	}
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vectors, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vectors[0])
	return vectors[0], nil
}

// EmbedBatch embeds texts in request-sized groups. Cached and empty texts are
// filled in without API calls.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	var pending []string
	var pendingIdx []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			embeddings[i] = make([]float32, e.dimensions)
			continue
		}
		if cached, ok := e.cache.Get(text); ok {
			embeddings[i] = cached
			continue
		}
		pending = append(pending, text)
		pendingIdx = append(pendingIdx, i)
	}
	for start := 0; start < len(pending); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		vectors, err := e.request(ctx, pending[start:end])
		if err != nil {
			return nil, err
		}
		for j, vec := range vectors {
			idx := pendingIdx[start+j]
			embeddings[idx] = vec
			e.cache.Set(texts[idx], vec)
		}
	}
	return embeddings, nil
}

// request embeds a group of texts in one API call and normalizes the results.
func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(d.Embedding), e.dimensions)
		}
		vec := make([]float32, e.dimensions)
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		vectors[d.Index] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
