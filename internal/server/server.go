// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/observability"
	"github.com/hyperjump/kotae/internal/rag"
)

const appName = "kotae"

// Server is the HTTP server for the Kotae API.
type Server struct {
	engine    *rag.Engine
	indexer   *indexer.Indexer
	keyword   keyword.KeywordIndex
	obs       *observability.Store
	config    *config.Config
	version   string
	startedAt time.Time
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *rag.Engine,
	idx *indexer.Indexer,
	keywordIndex keyword.KeywordIndex,
	obs *observability.Store,
	cfg *config.Config,
	version string,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		indexer:   idx,
		keyword:   keywordIndex,
		obs:       obs,
		config:    cfg,
		version:   version,
		startedAt: time.Now(),
		logger:    logger,
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/upload", s.handleUploadDocument)
		r.Get("/list", s.handleListDocuments)
		r.Get("/search", s.handleSearchDocuments)
		r.Get("/{id}", s.handleGetDocument)
		r.Delete("/{id}", s.handleDeleteDocument)
	})

	r.Route("/query", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Get("/conversation/{id}", s.handleConversation)
	})

	r.Route("/observability", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Get("/logs", s.handleLogs)
		r.Get("/prompts", s.handleListPrompts)
		r.Post("/prompts", s.handleCreatePrompt)
	})

	r.Route("/system", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Get("/info", s.handleInfo)
	})

	return r
}

// Handler returns the fully wired HTTP handler, middleware included. Useful
// for mounting the API inside another mux or serving it from a test listener.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// queryInt parses an integer query parameter, applying a default when the
// parameter is absent and rejecting values outside [min, max].
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}
