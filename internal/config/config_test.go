package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9090
storage:
  data_dir: "/tmp/kotae-test"
llm:
  api_key: "test-key"
  model: "llama-3.1-8b-instant"
rag:
  chunk_size: 200
  chunk_overlap: 20
  top_k: 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Errorf("llm api_key = %q, want test-key", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.RAG.ChunkSize != 200 || cfg.RAG.ChunkOverlap != 20 || cfg.RAG.TopK != 3 {
		t.Errorf("unexpected rag config: %+v", cfg.RAG)
	}
	// Unset fields receive defaults.
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("llm base_url = %q, want groq default", cfg.LLM.BaseURL)
	}
	if cfg.RAG.MaxHistoryMessages != 20 {
		t.Errorf("max_history_messages = %d, want 20", cfg.RAG.MaxHistoryMessages)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_derivesStoragePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  data_dir: "/var/lib/kotae"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.Storage.DatabasePath, "/var/lib/kotae/db/chunks.db"; got != want {
		t.Errorf("database_path = %s, want %s", got, want)
	}
	if got, want := cfg.Storage.VectorIndexPath, "/var/lib/kotae/indices/vectors.bin"; got != want {
		t.Errorf("vector_index_path = %s, want %s", got, want)
	}
	if got, want := cfg.Storage.ObservabilityPath, "/var/lib/kotae/db/observability.db"; got != want {
		t.Errorf("observability_path = %s, want %s", got, want)
	}
	if got, want := cfg.Storage.UploadDir, "/var/lib/kotae/uploads"; got != want {
		t.Errorf("upload_dir = %s, want %s", got, want)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  data_dir: "./data"
watch:
  directories: ["./inbox"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantData := filepath.Join(dir, "data")
	if cfg.Storage.DataDir != wantData {
		t.Errorf("data_dir = %s, want %s", cfg.Storage.DataDir, wantData)
	}
	wantDB := filepath.Join(dir, "data", "db", "chunks.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	wantWatch := filepath.Join(dir, "inbox")
	if cfg.Watch.Directories[0] != wantWatch {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], wantWatch)
	}
}

func TestLoad_expandsEnvReferences(t *testing.T) {
	t.Setenv("KOTAE_TEST_KEY", "sk-from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  api_key: "${KOTAE_TEST_KEY}"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("llm api_key = %q, want sk-from-env", cfg.LLM.APIKey)
	}
}

func TestLoad_fallsBackToGroqEnvKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-fallback")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.LLM.APIKey != "gsk-fallback" {
		t.Errorf("llm api_key = %q, want gsk-fallback", cfg.LLM.APIKey)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "onnx" {
		t.Errorf("default embedding provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("default batch_size: got %d", cfg.Embedding.BatchSize)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("default llm model: got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("default temperature: got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("default llm max_tokens: got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.InputCostPer1K != 0.00059 || cfg.LLM.OutputCostPer1K != 0.00079 {
		t.Errorf("default token costs: got %v/%v, want 0.00059/0.00079",
			cfg.LLM.InputCostPer1K, cfg.LLM.OutputCostPer1K)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 {
		t.Errorf("default chunking: got %d/%d, want 500/50", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("default top_k: got %d", cfg.RAG.TopK)
	}
	if cfg.RAG.MaxFileSizeMB != 10 {
		t.Errorf("default max_file_size_mb: got %d", cfg.RAG.MaxFileSizeMB)
	}
	if len(cfg.RAG.AllowedExtensions) != 1 || cfg.RAG.AllowedExtensions[0] != ".pdf" {
		t.Errorf("default allowed_extensions: got %v, want [.pdf]", cfg.RAG.AllowedExtensions)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".pdf" {
		t.Errorf("watch extensions should inherit allowed_extensions: got %v", cfg.Watch.Extensions)
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DataDir: "/tmp/kotae"},
	}
	cfg.RAG.TopK = 7
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.RAG.TopK != 7 {
		t.Errorf("loaded top_k: got %d", loaded.RAG.TopK)
	}
}
