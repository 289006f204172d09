package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/observability"
	"github.com/hyperjump/kotae/internal/rag"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

type benchClient struct{}

func (c *benchClient) Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Completion, error) {
	return &llm.Completion{Text: "benchmark answer", PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, nil
}

func (c *benchClient) ChatStream(ctx context.Context, messages []llm.Message, opts llm.Options) (<-chan string, <-chan error) {
	text := make(chan string, 1)
	errs := make(chan error)
	text <- "benchmark answer"
	close(text)
	close(errs)
	return text, errs
}

func (c *benchClient) ModelName() string { return "bench-model" }

func benchRAGConfig() *config.Config {
	return &config.Config{
		Embedding: config.EmbeddingConfig{Provider: "mock", Dimensions: 384, Model: "mock-384"},
		LLM:       config.LLMConfig{Model: "bench-model"},
		RAG: config.RAGConfig{
			ChunkSize:          500,
			ChunkOverlap:       50,
			TopK:               5,
			MaxHistoryMessages: 20,
			MaxFileSizeMB:      10,
			AllowedExtensions:  []string{".txt", ".md"},
		},
	}
}

func BenchmarkChunker(b *testing.B) {
	chunker := indexer.NewChunker(500, 50)
	text := strings.Repeat("The operations handbook describes the escalation path for every alert class in detail. ", 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chunker.Chunk(text, nil)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Embed(ctx, "how do I rotate the database credentials"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryIndexSearch(b *testing.B) {
	ctx := context.Background()
	idx, err := vector.NewMemoryIndex(384)
	if err != nil {
		b.Fatal(err)
	}
	ids := make([]string, 1000)
	vectors := make([][]float32, 1000)
	for i := range vectors {
		vec := make([]float32, 384)
		for j := range vec {
			vec[j] = rand.Float32()
		}
		ids[i] = fmt.Sprintf("chunk_%d", i)
		vectors[i] = vec
	}
	if err := idx.Add(ctx, ids, vectors); err != nil {
		b.Fatal(err)
	}
	query := vectors[123]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search(ctx, query, 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProcessDocument(b *testing.B) {
	ctx := context.Background()
	dir := b.TempDir()

	vectorIndex, err := vector.NewMemoryIndex(384)
	if err != nil {
		b.Fatal(err)
	}
	store, err := vectorstore.NewStore(filepath.Join(dir, "chunks.db"), vectorIndex)
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	keywordIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "keyword.bleve"))
	if err != nil {
		b.Fatal(err)
	}
	defer keywordIndex.Close()

	cfg := benchRAGConfig()
	idx := indexer.NewIndexer(store, keywordIndex, embedding.NewMockEmbedder(384), extract.NewExtractor(), &cfg.RAG)
	base := strings.Repeat("Routine maintenance windows are announced a week in advance on the status page. ", 25)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Unique content and filename per iteration so the duplicate check
		// never short circuits the pipeline.
		content := fmt.Sprintf("%sRevision %d.", base, i)
		result := idx.ProcessDocument(ctx, []byte(content), fmt.Sprintf("doc-%d.txt", i))
		if result.Status != models.StatusCompleted {
			b.Fatalf("ingest status = %s (%s)", result.Status, result.Error)
		}
	}
}

func BenchmarkAnswerQuestion(b *testing.B) {
	ctx := context.Background()
	dir := b.TempDir()

	vectorIndex, err := vector.NewMemoryIndex(384)
	if err != nil {
		b.Fatal(err)
	}
	store, err := vectorstore.NewStore(filepath.Join(dir, "chunks.db"), vectorIndex)
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	keywordIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "keyword.bleve"))
	if err != nil {
		b.Fatal(err)
	}
	defer keywordIndex.Close()
	obs, err := observability.NewStore(filepath.Join(dir, "observability.db"), 0.05, 0.08)
	if err != nil {
		b.Fatal(err)
	}
	defer obs.Close()

	embedder := embedding.NewMockEmbedder(384)
	generator := llm.NewGenerator(&benchClient{}, obs)
	if err := generator.EnsureDefaultTemplate(ctx); err != nil {
		b.Fatal(err)
	}
	cfg := benchRAGConfig()
	engine := rag.NewEngine(store, embedder, generator, cfg)
	idx := indexer.NewIndexer(store, keywordIndex, embedder, extract.NewExtractor(), &cfg.RAG)

	for i := 0; i < 50; i++ {
		content := fmt.Sprintf("Policy document %d covers retention rules for archive tier number %d.", i, i)
		result := idx.ProcessDocument(ctx, []byte(content), fmt.Sprintf("policy-%d.txt", i))
		if result.Status != models.StatusCompleted {
			b.Fatalf("ingest status = %s (%s)", result.Status, result.Error)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.AnswerQuestion(ctx, "What do the retention rules say about the archive tier?", nil, ""); err != nil {
			b.Fatal(err)
		}
	}
}
