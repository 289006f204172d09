// Package indexer turns uploaded documents into stored, embedded, and
// searchable chunks.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/ids"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Indexer runs the ingest pipeline: duplicate check, extraction, chunking,
// embedding, then writes to the chunk store and the keyword index.
type Indexer struct {
	store     *vectorstore.Store
	keyword   keyword.KeywordIndex
	embedder  embedding.Embedder
	extractor *extract.Extractor
	chunker   *Chunker
	config    *config.RAGConfig
	logger    *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (document processed, deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(
	store *vectorstore.Store,
	keywordIndex keyword.KeywordIndex,
	embedder embedding.Embedder,
	extractor *extract.Extractor,
	cfg *config.RAGConfig,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		store:     store,
		keyword:   keywordIndex,
		embedder:  embedder,
		extractor: extractor,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// ProcessDocument ingests one document. The outcome is carried in the result's
// Status field: completed, duplicate, or failed.
func (idx *Indexer) ProcessDocument(ctx context.Context, content []byte, filename string) *models.IngestResult {
	start := time.Now()
	if idx.logger != nil {
		idx.logger.Debug("processing document", zap.String("filename", filename), zap.Int("bytes", len(content)))
	}

	contentHash := ids.ContentHash(content)

	dup, err := idx.checkDuplicate(ctx, filename, contentHash)
	if err != nil {
		return failedResult("", filename, start, fmt.Errorf("duplicate check failed: %w", err))
	}
	if dup != nil {
		if idx.logger != nil {
			idx.logger.Debug("duplicate document rejected",
				zap.String("filename", filename),
				zap.String("existing_id", dup.documentID),
				zap.String("match_type", dup.matchType))
		}
		return &models.IngestResult{
			DocumentID:     dup.documentID,
			Filename:       filename,
			Status:         models.StatusDuplicate,
			MatchType:      dup.matchType,
			ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
			Message:        fmt.Sprintf("Document already exists as %q (matched by %s)", dup.filename, dup.matchType),
		}
	}

	docID := ids.NewDocumentID()

	extracted, err := idx.extractor.ExtractBytes(content, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return failedResult(docID, filename, start, fmt.Errorf("text extraction failed: %w", err))
	}

	chunks := idx.chunker.Chunk(extracted.Text, extracted.Pages)
	if len(chunks) == 0 {
		return &models.IngestResult{
			DocumentID:     docID,
			Filename:       filename,
			Status:         models.StatusCompleted,
			PageCount:      extracted.PageCount,
			FileSize:       int64(len(content)),
			ContentHash:    contentHash,
			ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
			Message:        "Document processed successfully",
		}
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return failedResult(docID, filename, start, fmt.Errorf("embedding failed: %w", err))
	}

	uploadTimestamp := time.Now().Format(time.RFC3339)
	records := make([]*vectorstore.Record, len(chunks))
	for i, ch := range chunks {
		metadata := map[string]interface{}{
			"document_id":      docID,
			"filename":         filename,
			"chunk_index":      ch.Index,
			"content_hash":     contentHash,
			"upload_timestamp": uploadTimestamp,
			"file_size":        len(content),
			"page_count":       extracted.PageCount,
		}
		// Null metadata fields are omitted rather than stored.
		if ch.PageNumber != nil {
			metadata["page_number"] = *ch.PageNumber
		}
		records[i] = &vectorstore.Record{
			Text:      ch.Text,
			Embedding: embeddings[i],
			Metadata:  metadata,
		}
	}

	assigned, err := idx.store.Add(ctx, records)
	if err != nil {
		return failedResult(docID, filename, start, fmt.Errorf("failed to store chunks: %w", err))
	}

	entries := make([]*keyword.Entry, len(chunks))
	for i, ch := range chunks {
		entries[i] = &keyword.Entry{
			ID:         assigned[i],
			DocumentID: docID,
			Filename:   filename,
			Text:       ch.Text,
			PageNumber: ch.PageNumber,
		}
	}
	if err := idx.keyword.Add(ctx, entries); err != nil {
		return failedResult(docID, filename, start, fmt.Errorf("failed to index keywords: %w", err))
	}

	if idx.logger != nil {
		idx.logger.Debug("document processed",
			zap.String("document_id", docID),
			zap.String("filename", filename),
			zap.Int("chunks", len(chunks)))
	}
	return &models.IngestResult{
		DocumentID:     docID,
		Filename:       filename,
		Status:         models.StatusCompleted,
		PageCount:      extracted.PageCount,
		ChunkCount:     len(chunks),
		FileSize:       int64(len(content)),
		ContentHash:    contentHash,
		ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
		Message:        "Document processed successfully",
	}
}

// ProcessFile reads a file from disk, validates it against the upload limits,
// and ingests it. Validation problems are returned as errors; pipeline
// outcomes are carried in the result.
func (idx *Indexer) ProcessFile(ctx context.Context, path string) (*models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !extensionAllowed(ext, idx.config.AllowedExtensions) {
		return nil, fmt.Errorf("file type %q is not allowed", ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if maxBytes := int64(idx.config.MaxFileSizeMB) * 1024 * 1024; maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("file exceeds %d MB limit", idx.config.MaxFileSizeMB)
	}
	return idx.ProcessDocument(ctx, content, filepath.Base(path)), nil
}

// ProcessDirectory ingests every file with an allowed extension under dir,
// recursively, in walk order. A file that fails validation is reported as a
// failed result rather than aborting the walk.
func (idx *Indexer) ProcessDirectory(ctx context.Context, dir string) ([]*models.IngestResult, error) {
	var results []*models.IngestResult
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !extensionAllowed(strings.ToLower(filepath.Ext(path)), idx.config.AllowedExtensions) {
			return nil
		}
		result, err := idx.ProcessFile(ctx, path)
		if err != nil {
			results = append(results, failedResult("", filepath.Base(path), time.Now(), err))
			return nil
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return results, nil
}

// DeleteDocument removes a document's chunks from the store and the keyword
// index. A document with no stored chunks reports not found.
func (idx *Indexer) DeleteDocument(ctx context.Context, documentID string) *models.DeleteResult {
	if idx.logger != nil {
		idx.logger.Debug("deleting document", zap.String("document_id", documentID))
	}
	n, err := idx.store.DeleteByFilter(ctx, vectorstore.Filter{"document_id": documentID})
	if err != nil {
		return &models.DeleteResult{
			DocumentID: documentID,
			Success:    false,
			Message:    fmt.Sprintf("Error deleting document: %v", err),
		}
	}
	if n == 0 {
		return &models.DeleteResult{
			DocumentID: documentID,
			Success:    false,
			Message:    "Document not found",
		}
	}
	if err := idx.keyword.DeleteDocument(ctx, documentID); err != nil {
		return &models.DeleteResult{
			DocumentID:    documentID,
			Success:       false,
			ChunksDeleted: n,
			Message:       fmt.Sprintf("Error deleting document from keyword index: %v", err),
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("document deleted", zap.String("document_id", documentID), zap.Int("chunks", n))
	}
	return &models.DeleteResult{
		DocumentID:    documentID,
		Success:       true,
		ChunksDeleted: n,
		Message:       fmt.Sprintf("Deleted %d chunks", n),
	}
}

// ListDocuments returns summaries for every ingested document.
func (idx *Indexer) ListDocuments(ctx context.Context) ([]*models.DocumentSummary, error) {
	return idx.store.ListDocuments(ctx)
}

// GetDocument returns the summary for one document, or nil when unknown.
func (idx *Indexer) GetDocument(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	return idx.store.GetDocument(ctx, documentID)
}

// duplicateMatch names the existing document a new upload collides with.
type duplicateMatch struct {
	documentID string
	filename   string
	matchType  string
}

// checkDuplicate scans stored chunk metadata for an existing document with the
// same filename or content hash. Documents are checked in first-ingest order;
// within a document a filename match takes precedence over a hash match.
func (idx *Indexer) checkDuplicate(ctx context.Context, filename, contentHash string) (*duplicateMatch, error) {
	records, err := idx.store.GetByFilter(ctx, nil)
	if err != nil {
		return nil, err
	}

	var order []string
	byDoc := make(map[string][]*vectorstore.Record)
	for _, rec := range records {
		docID := metaString(rec.Metadata, "document_id")
		if docID == "" {
			continue
		}
		if _, ok := byDoc[docID]; !ok {
			order = append(order, docID)
		}
		byDoc[docID] = append(byDoc[docID], rec)
	}

	for _, docID := range order {
		recs := byDoc[docID]
		existingName := metaString(recs[0].Metadata, "filename")
		if existingName == filename {
			return &duplicateMatch{documentID: docID, filename: existingName, matchType: models.MatchFilename}, nil
		}
		for _, rec := range recs {
			if metaString(rec.Metadata, "content_hash") == contentHash {
				return &duplicateMatch{documentID: docID, filename: existingName, matchType: models.MatchContentHash}, nil
			}
		}
	}
	return nil, nil
}

func failedResult(docID, filename string, start time.Time, err error) *models.IngestResult {
	return &models.IngestResult{
		DocumentID:     docID,
		Filename:       filename,
		Status:         models.StatusFailed,
		ProcessingTime: utils.Round(time.Since(start).Seconds(), 2),
		Message:        "Failed to process document",
		Error:          err.Error(),
	}
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
