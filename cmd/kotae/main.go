// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/observability"
	"github.com/hyperjump/kotae/internal/rag"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Secrets referenced from the config (${GROQ_API_KEY} etc.) may live in a
	// .env file in the working directory.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "delete":
		runDelete()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (ingest steps, retrieval, prompt building, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Watch.Enabled {
		idx := components.Indexer
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(&cfg.Watch, func(path string) {
			result, err := idx.ProcessFile(context.Background(), path)
			if err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			if result.Status == models.StatusFailed {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.String("error", result.Error))
			}
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		if cfg.Watch.SyncOnStartOrDefault() {
			watchSvc.SyncExistingFiles()
		}
	}

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.KeywordIndex,
		components.Observability,
		cfg,
		version,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	saveVectorIndex(cfg, components, logger)
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printAskUsage prints ask subcommand usage and examples.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces. Multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae ask what does the contract say about termination
  kotae ask "what does the contract say about termination"    # same as above
  kotae ask -documents doc_ab12cd34 what is the total amount
  kotae ask -conversation conv_12345678 and when is it due
  kotae ask -output json "summarize the quarterly report"
`)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// splitDocumentIDs parses a comma-separated flag value into document IDs,
// dropping empty entries.
func splitDocumentIDs(raw string) []string {
	var docIDs []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			docIDs = append(docIDs, p)
		}
	}
	return docIDs
}

// askArgsReorder moves any flags (and their values) that appear after the question
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "kotae ask \"question\" -output json"
// would otherwise leave -output unparsed.
func askArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = answer directly without a server)")
	documents := fs.String("documents", "", "comma-separated document IDs to restrict retrieval to")
	conversationID := fs.String("conversation", "", "conversation ID to continue")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	request := &models.AskRequest{
		Question:       question,
		DocumentIDs:    splitDocumentIDs(*documents),
		ConversationID: *conversationID,
	}
	if err := request.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid question: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids SQLite/Bleve lock
		// conflicts, and conversations survive across calls).
		answer, err := askViaHTTP(*serverURL, request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct access (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	answer, err := components.Engine.AnswerQuestion(context.Background(), request.Question, request.DocumentIDs, request.ConversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, request *models.AskRequest) (*models.Answer, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/query/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var answer models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

// statsResponse is the shape of GET /system/stats. Direct mode fills the same
// fields from the local stores; uptime only exists when a server answered.
type statsResponse struct {
	TotalDocuments         int      `json:"total_documents"`
	TotalChunks            int64    `json:"total_chunks"`
	TotalConversations     int      `json:"total_conversations"`
	TotalQuestionsAnswered int64    `json:"total_questions_answered"`
	AverageResponseTime    float64  `json:"average_response_time"`
	UptimeSeconds          *float64 `json:"uptime_seconds,omitempty"`
	DiskUsageBytes         *int64   `json:"disk_usage_bytes,omitempty"`
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read local stores directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var stats statsResponse
	if *serverURL != "" {
		res, err := statsViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()

		engineStats, err := components.Engine.Stats(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		answered, err := components.Observability.CountRequests(ctx, llm.RequestTypeRAGAnswer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count requests failed: %v\n", err)
			os.Exit(1)
		}
		summary, err := components.Observability.MetricsSummary(ctx, 24)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Metrics summary failed: %v\n", err)
			os.Exit(1)
		}
		stats = statsResponse{
			TotalDocuments:         engineStats.TotalDocuments,
			TotalChunks:            engineStats.TotalChunks,
			TotalConversations:     engineStats.TotalConversations,
			TotalQuestionsAnswered: answered,
			AverageResponseTime:    utils.Round(summary.Summary.AverageLatencyMS/1000, 2),
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:           %d   # ingested documents\n", stats.TotalDocuments)
		fmt.Printf("chunks:              %d   # stored text chunks\n", stats.TotalChunks)
		fmt.Printf("conversations:       %d   # active conversations\n", stats.TotalConversations)
		fmt.Printf("questions_answered:  %d   # logged answer requests\n", stats.TotalQuestionsAnswered)
		fmt.Printf("avg_response_time:   %.2fs   # over the last 24h\n", stats.AverageResponseTime)
		if stats.UptimeSeconds != nil {
			fmt.Printf("uptime_seconds:      %.1f\n", *stats.UptimeSeconds)
		}
		if stats.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:    %d   # database + indices + uploads\n", *stats.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statsViaHTTP(serverURL string) (*statsResponse, error) {
	resp, err := http.Get(serverURL + "/system/stats")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		results, err := components.Indexer.ProcessDirectory(ctx, path)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		var completed int
		for _, result := range results {
			_ = cli.WriteIngestResult(os.Stdout, result, format)
			if result.Status == models.StatusCompleted {
				completed++
			}
		}
		if format == cli.OutputText {
			fmt.Printf("Ingested %d of %d file(s) from %s\n", completed, len(results), path)
		}
		saveVectorIndex(cfg, components, logger)
		return
	}
	result, err := components.Indexer.ProcessFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteIngestResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	saveVectorIndex(cfg, components, logger)
	if result.Status == models.StatusFailed {
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = delete directly without a server)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	if *serverURL != "" {
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/documents/"+url.PathEscape(docID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Delete failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var result models.DeleteResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Document deleted: %s (%d chunks)\n", result.DocumentID, result.ChunksDeleted)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	result := components.Indexer.DeleteDocument(context.Background(), docID)
	if !result.Success {
		fmt.Printf("Deletion failed: %s\n", result.Message)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s (%d chunks)\n", docID, result.ChunksDeleted)
	saveVectorIndex(cfg, components, logger)
}

// Components holds initialized services.
type Components struct {
	VectorIndex   vector.VectorIndex
	Store         *vectorstore.Store
	KeywordIndex  keyword.KeywordIndex
	Observability *observability.Store
	Embedder      embedding.Embedder
	Generator     *llm.Generator
	Engine        *rag.Engine
	Indexer       *indexer.Indexer
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Observability != nil {
		_ = c.Observability.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

// newEmbedder picks the embedding backend from config. An ONNX model that
// fails to load falls back to mock embeddings so the service still starts.
func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKey,
			cfg.Embedding.BaseURL,
			cfg.Embedding.Model,
			cfg.Embedding.Dimensions,
			cfg.Embedding.BatchSize,
			cfg.Embedding.CacheSize,
		)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	default:
		onnxEmbedder, err := embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.VocabPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embeddings", zap.Error(err))
			return embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		}
		return onnxEmbedder
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	vectorIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}

	store, err := vectorstore.NewStore(cfg.Storage.DatabasePath, vectorIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunk store: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	obs, err := observability.NewStore(cfg.Storage.ObservabilityPath, cfg.LLM.InputCostPer1K, cfg.LLM.OutputCostPer1K)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability store: %w", err)
	}

	embedder := newEmbedder(cfg, logger)

	genOpts := []llm.GeneratorOption{}
	if debug {
		genOpts = append(genOpts, llm.WithLogger(logger))
	}
	generator := llm.NewGenerator(llm.NewOpenAIClient(&cfg.LLM), obs, genOpts...)
	if err := generator.EnsureDefaultTemplate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to seed prompt template: %w", err)
	}

	engineOpts := []rag.EngineOption{}
	if debug {
		engineOpts = append(engineOpts, rag.WithLogger(logger))
	}
	engine := rag.NewEngine(store, embedder, generator, cfg, engineOpts...)

	idxOpts := []indexer.IndexerOption{}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, keywordIndex, embedder, extract.NewExtractor(), &cfg.RAG, idxOpts...)

	return &Components{
		VectorIndex:   vectorIndex,
		Store:         store,
		KeywordIndex:  keywordIndex,
		Observability: obs,
		Embedder:      embedder,
		Generator:     generator,
		Engine:        engine,
		Indexer:       idx,
	}, nil
}

// saveVectorIndex persists the in-memory vector index so a later process sees
// writes made in this one.
func saveVectorIndex(cfg *config.Config, components *Components, logger *zap.Logger) {
	if cfg.Storage.VectorIndexPath == "" || components.VectorIndex == nil {
		return
	}
	if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`kotae - Ask questions about your documents

Usage:
  kotae server [flags]              Start the HTTP server
  kotae ingest [flags] <path>       Ingest a document or directory
  kotae ask [flags] <question>      Ask a question about ingested documents
  kotae delete [flags] <id>         Delete a document and its chunks
  kotae stats [flags]               Show corpus and usage statistics
  kotae version                     Show version
  kotae help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging (ingest steps, retrieval, prompt building, etc.)

Ingest Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Ask Flags:
  --config string         Config file path (for direct mode)
  --server string         Server URL (default: http://localhost:8080). Use empty (--server "") to answer directly when the server is not running.
  --documents string      Comma-separated document IDs to restrict retrieval to
  --conversation string   Conversation ID to continue a previous exchange
  --output string         Output format: text or json (default: text)

Delete Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct mode.

Stats Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct mode.
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae ingest report.pdf
  kotae ingest ./contracts
  kotae ask "what does the contract say about termination"
  kotae ask -documents doc_ab12cd34 what is the total amount
  kotae ask -output json "summarize the quarterly report"
  kotae delete doc_ab12cd34
  kotae stats
  kotae stats --output json`)
}
