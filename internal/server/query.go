package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request",
		zap.String("question", req.Question),
		zap.Strings("document_ids", req.DocumentIDs),
		zap.String("conversation_id", req.ConversationID))
	answer, err := s.engine.AnswerQuestion(r.Context(), req.Question, req.DocumentIDs, req.ConversationID)
	if err != nil {
		s.logger.Error("failed to answer question", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages := s.engine.ConversationHistory(id)
	if messages == nil {
		messages = []models.Message{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": id,
		"messages":        messages,
		"message_count":   len(messages),
	})
}
