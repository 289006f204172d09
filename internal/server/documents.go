package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
)

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf(
			"File type %s not allowed. Allowed types: %s",
			ext, strings.Join(s.config.RAG.AllowedExtensions, ", ")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("failed to read upload", zap.String("filename", filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}
	if maxBytes := int64(s.config.RAG.MaxFileSizeMB) * 1024 * 1024; maxBytes > 0 && int64(len(content)) > maxBytes {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf(
			"File too large. Maximum size is %dMB", s.config.RAG.MaxFileSizeMB))
		return
	}
	if len(content) == 0 {
		s.respondError(w, http.StatusBadRequest, "File is empty")
		return
	}

	if s.config.Storage.UploadDir != "" {
		if err := s.saveUpload(filename, content); err != nil {
			s.logger.Error("failed to save upload", zap.String("filename", filename), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
			return
		}
	}

	result := s.indexer.ProcessDocument(r.Context(), content, filename)
	switch result.Status {
	case models.StatusDuplicate:
		// The duplicate carries the existing document's ID so clients can
		// point at it; it is not an error.
		s.respondJSON(w, http.StatusConflict, result)
	case models.StatusFailed:
		s.logger.Error("document processing failed",
			zap.String("filename", filename), zap.String("error", result.Error))
		s.respondError(w, http.StatusInternalServerError, result.Error)
	default:
		s.logger.Info("document processed",
			zap.String("document_id", result.DocumentID),
			zap.String("filename", filename),
			zap.Int("chunks", result.ChunkCount))
		s.respondJSON(w, http.StatusOK, &models.UploadResponse{
			DocumentID: result.DocumentID,
			Filename:   result.Filename,
			Status:     result.Status,
			Message:    result.Message,
			Metadata: &models.UploadMetadata{
				Filename:   result.Filename,
				FileSize:   result.FileSize,
				UploadDate: time.Now().Format(time.RFC3339),
				PageCount:  result.PageCount,
				FileType:   strings.TrimPrefix(ext, "."),
			},
		})
	}
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.indexer.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("failed to list documents", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.DocumentSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":   docs,
		"total_count": len(docs),
	})
}

func (s *Server) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, err := queryInt(r, "limit", 10, 1, 100)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.keyword.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.String("query", query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []*keyword.Result{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":       query,
		"results":     results,
		"total_count": len(results),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.indexer.GetDocument(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get document", zap.String("document_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Document %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("document_id", id))
	result := s.indexer.DeleteDocument(r.Context(), id)
	if !result.Success {
		s.respondError(w, http.StatusNotFound, result.Message)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) extensionAllowed(ext string) bool {
	norm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range s.config.RAG.AllowedExtensions {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == norm {
			return true
		}
	}
	return false
}

// saveUpload keeps a copy of the original file next to the indexed data.
func (s *Server) saveUpload(filename string, content []byte) error {
	if err := os.MkdirAll(s.config.Storage.UploadDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.config.Storage.UploadDir, filename), content, 0644)
}
