package config

import "path/filepath"

const defaultDataDir = "/usr/local/var/kotae/data"

// ApplyDefaults sets default values for any zero values in cfg. Storage paths
// left empty are placed under DataDir.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = filepath.Join(cfg.Storage.DataDir, "db", "chunks.db")
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = filepath.Join(cfg.Storage.DataDir, "indices", "vectors.bin")
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = filepath.Join(cfg.Storage.DataDir, "indices", "keyword.bleve")
	}
	if cfg.Storage.ObservabilityPath == "" {
		cfg.Storage.ObservabilityPath = filepath.Join(cfg.Storage.DataDir, "db", "observability.db")
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = filepath.Join(cfg.Storage.DataDir, "uploads")
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = filepath.Join(cfg.Storage.DataDir, "models", "all-MiniLM-L6-v2.onnx")
	}
	if cfg.Embedding.VocabPath == "" {
		cfg.Embedding.VocabPath = filepath.Join(cfg.Storage.DataDir, "models", "vocab.txt")
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 120
	}
	if cfg.LLM.InputCostPer1K == 0 {
		cfg.LLM.InputCostPer1K = 0.00059
	}
	if cfg.LLM.OutputCostPer1K == 0 {
		cfg.LLM.OutputCostPer1K = 0.00079
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 50
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.MaxHistoryMessages == 0 {
		cfg.RAG.MaxHistoryMessages = 20
	}
	if cfg.RAG.MaxFileSizeMB == 0 {
		cfg.RAG.MaxFileSizeMB = 10
	}
	if len(cfg.RAG.AllowedExtensions) == 0 {
		cfg.RAG.AllowedExtensions = []string{".pdf"}
	}

	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = cfg.RAG.AllowedExtensions
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
