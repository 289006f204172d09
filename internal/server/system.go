package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Kotae API",
		"version": s.version,
		"status":  "running",
		"health":  "/system/health",
		"endpoints": map[string]interface{}{
			"documents": map[string]string{
				"upload": "POST /documents/upload",
				"list":   "GET /documents/list",
				"search": "GET /documents/search",
				"get":    "GET /documents/{id}",
				"delete": "DELETE /documents/{id}",
			},
			"query": map[string]string{
				"ask":          "POST /query/ask",
				"conversation": "GET /query/conversation/{id}",
			},
			"observability": map[string]string{
				"metrics": "GET /observability/metrics",
				"logs":    "GET /observability/logs",
				"prompts": "GET /observability/prompts",
			},
			"system": map[string]string{
				"health": "GET /system/health",
				"stats":  "GET /system/stats",
				"info":   "GET /system/info",
			},
		},
	})
}

// handleHealth always responds 200; degraded components are reported in the
// body so probes can distinguish partial outages from a dead process.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.engine.HealthCheck(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":                 health.Status,
		"version":                s.version,
		"llm_api_status":         componentStatus(health, "llm_api"),
		"vector_store_status":    componentStatus(health, "vector_store"),
		"embedding_model_loaded": health.Components["embeddings"] == models.HealthHealthy,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := s.engine.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to collect stats", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	answered, err := s.obs.CountRequests(ctx, llm.RequestTypeRAGAnswer)
	if err != nil {
		s.logger.Error("failed to count answered questions", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summary, err := s.obs.MetricsSummary(ctx, 24)
	if err != nil {
		s.logger.Error("failed to build metrics summary", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"total_documents":          stats.TotalDocuments,
		"total_chunks":             stats.TotalChunks,
		"total_conversations":      stats.TotalConversations,
		"total_questions_answered": answered,
		"average_response_time":    utils.Round(summary.Summary.AverageLatencyMS/1000, 2),
		"uptime_seconds":           utils.Round(time.Since(s.startedAt).Seconds(), 1),
	}
	diskBytes, err := diskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.VectorIndexPath,
		s.config.Storage.KeywordIndexPath,
		s.config.Storage.ObservabilityPath,
		s.config.Storage.UploadDir,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"app_name":           appName,
		"version":            s.version,
		"embedding_model":    s.config.Embedding.Model,
		"llm_model":          s.config.LLM.Model,
		"chunk_size":         s.config.RAG.ChunkSize,
		"chunk_overlap":      s.config.RAG.ChunkOverlap,
		"max_file_size_mb":   s.config.RAG.MaxFileSizeMB,
		"allowed_file_types": s.config.RAG.AllowedExtensions,
	})
}

func componentStatus(h *models.Health, name string) string {
	if st, ok := h.Components[name]; ok {
		return st
	}
	return "unknown"
}

// diskUsageBytes sums the sizes of the given paths. Each path may be a file or
// a directory; missing paths contribute 0.
func diskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if info.IsDir() {
			n, err := dirSize(p)
			if err != nil {
				return 0, err
			}
			total += n
		} else {
			total += info.Size()
		}
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info != nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
