// Package vector provides the embedding index used by the chunk store.
package vector

import "context"

// VectorIndex stores embeddings by chunk ID and answers nearest-neighbor queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// VectorResult is a single nearest-neighbor hit. Distance is squared L2;
// smaller is closer.
type VectorResult struct {
	ID       string
	Distance float64
}
