// Package config provides configuration loading and structs for the Kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds paths for the chunk database and indices. Paths left empty
// are derived from DataDir.
type StorageConfig struct {
	DataDir           string `yaml:"data_dir"`
	DatabasePath      string `yaml:"database_path"`
	VectorIndexPath   string `yaml:"vector_index_path"`
	KeywordIndexPath  string `yaml:"keyword_index_path"`
	ObservabilityPath string `yaml:"observability_path"`
	UploadDir         string `yaml:"upload_dir"`
}

// EmbeddingConfig selects and configures the embedding backend.
// Provider is one of "onnx" (local model, requires -tags onnx), "openai"
// (any OpenAI-compatible embeddings endpoint), or "mock".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ModelPath  string `yaml:"model_path"`
	VocabPath  string `yaml:"vocab_path"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BatchSize  int    `yaml:"batch_size"`
}

// LLMConfig configures the chat completion backend (any OpenAI-compatible API).
type LLMConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	InputCostPer1K  float64 `yaml:"input_cost_per_1k"`
	OutputCostPer1K float64 `yaml:"output_cost_per_1k"`
}

// RAGConfig holds chunking, retrieval, and upload limits.
type RAGConfig struct {
	ChunkSize          int      `yaml:"chunk_size"`
	ChunkOverlap       int      `yaml:"chunk_overlap"`
	TopK               int      `yaml:"top_k"`
	MaxHistoryMessages int      `yaml:"max_history_messages"`
	MaxFileSizeMB      int      `yaml:"max_file_size_mb"`
	AllowedExtensions  []string `yaml:"allowed_extensions"`
}

// WatchConfig holds drop-folder ingest settings.
type WatchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	SyncOnStart *bool    `yaml:"sync_on_start"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// SyncOnStartOrDefault returns whether pre-existing files in watched directories
// are ingested at startup; defaults to true when unset.
func (w *WatchConfig) SyncOnStartOrDefault() bool {
	if w.SyncOnStart != nil {
		return *w.SyncOnStart
	}
	return true
}

// Load reads and parses the config file at path, expands env references and
// paths, and applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	expandSecrets(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	cfg.Storage.ObservabilityPath = expandPath(cfg.Storage.ObservabilityPath, configDir)
	cfg.Storage.UploadDir = expandPath(cfg.Storage.UploadDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandSecrets resolves ${VAR} references in key fields and falls back to the
// conventional environment variables when a key is not configured at all.
func expandSecrets(cfg *Config) {
	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = os.ExpandEnv(cfg.LLM.BaseURL)
	cfg.Embedding.APIKey = os.ExpandEnv(cfg.Embedding.APIKey)
	cfg.Embedding.BaseURL = os.ExpandEnv(cfg.Embedding.BaseURL)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
