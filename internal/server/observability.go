package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	windowHours, err := queryInt(r, "window_hours", 24, 1, 720)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.obs.MetricsSummary(r.Context(), windowHours)
	if err != nil {
		s.logger.Error("failed to build metrics summary", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := s.obs.RecentLogs(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to fetch request logs", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []*models.RequestLogEntry{}
	}
	s.respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("template_key")
	templates, err := s.obs.Templates(r.Context(), key)
	if err != nil {
		s.logger.Error("failed to list prompt templates", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if templates == nil {
		templates = []*models.PromptTemplate{}
	}
	s.respondJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req models.PromptTemplateCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.obs.CreateVersion(r.Context(), req.TemplateKey, req.TemplateText, req.Description, req.ShouldActivate())
	if err != nil {
		s.logger.Error("failed to create prompt version", zap.String("template_key", req.TemplateKey), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("prompt version created",
		zap.String("template_key", created.TemplateKey),
		zap.Int("version", created.Version),
		zap.Bool("is_active", created.IsActive))
	s.respondJSON(w, http.StatusCreated, created)
}
