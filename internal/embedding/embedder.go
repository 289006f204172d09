// Package embedding converts text into fixed-dimension vectors for similarity
// search. Backends: ONNX (local model, requires CGO), any OpenAI-compatible
// embeddings API, and a deterministic mock.
package embedding

import "context"

// Embedder produces L2-normalized vector embeddings for text. Empty or
// whitespace-only input yields a zero vector of the embedder's dimension
// rather than an error. EmbedBatch returns the same vectors as element-wise
// Embed calls.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
