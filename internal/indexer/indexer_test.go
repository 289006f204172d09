package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/ids"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".txt", []string{".txt", ".md"}, true},
		{".TXT", []string{".txt"}, true},
		{".md", []string{".txt", ".md"}, true},
		{".go", []string{".txt"}, false},
		{"", []string{".txt"}, false},
		{".pdf", []string{"pdf"}, true},
	}
	for _, tt := range tests {
		got := extensionAllowed(tt.ext, tt.allowed)
		if got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func testIndexer(t *testing.T) (*Indexer, *vectorstore.Store, *keyword.BleveIndex) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.RAGConfig{
		ChunkSize: 500, ChunkOverlap: 50, TopK: 5, MaxHistoryMessages: 20,
		MaxFileSizeMB: 10, AllowedExtensions: []string{".pdf", ".docx", ".xlsx", ".txt", ".md"},
	}
	vecIndex, err := vector.NewMemoryIndex(4)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = vecIndex.Close() })
	store, err := vectorstore.NewStore(filepath.Join(dir, "chunks.db"), vecIndex)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	kwIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kwIndex.Close() })
	embedder := embedding.NewMockEmbedder(4)
	t.Cleanup(func() { _ = embedder.Close() })
	return NewIndexer(store, kwIndex, embedder, extract.NewExtractor(), cfg), store, kwIndex
}

func TestProcessDocument_success(t *testing.T) {
	idx, store, _ := testIndexer(t)
	ctx := context.Background()

	content := []byte("The reactor manual covers shutdown procedures in detail.")
	res := idx.ProcessDocument(ctx, content, "manual.txt")
	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}
	if !strings.HasPrefix(res.DocumentID, "doc_") {
		t.Errorf("document ID = %q", res.DocumentID)
	}
	if res.ChunkCount != 1 {
		t.Errorf("chunk count = %d", res.ChunkCount)
	}
	if res.PageCount != 1 {
		t.Errorf("page count = %d", res.PageCount)
	}
	if res.FileSize != int64(len(content)) {
		t.Errorf("file size = %d", res.FileSize)
	}
	if res.ContentHash != ids.ContentHash(content) {
		t.Errorf("content hash = %q", res.ContentHash)
	}

	records, err := store.GetByFilter(ctx, vectorstore.Filter{"document_id": res.DocumentID})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records", len(records))
	}
	meta := records[0].Metadata
	if meta["filename"] != "manual.txt" {
		t.Errorf("filename = %v", meta["filename"])
	}
	if meta["chunk_index"] != float64(0) {
		t.Errorf("chunk_index = %v", meta["chunk_index"])
	}
	if meta["content_hash"] != res.ContentHash {
		t.Errorf("content_hash = %v", meta["content_hash"])
	}
	if meta["upload_timestamp"] == nil {
		t.Error("upload_timestamp missing")
	}
	if _, ok := meta["page_number"]; ok {
		t.Error("page_number should be omitted when unknown")
	}
}

func TestProcessDocument_keywordSearchable(t *testing.T) {
	idx, _, kwIndex := testIndexer(t)
	ctx := context.Background()

	res := idx.ProcessDocument(ctx, []byte("Centrifuge calibration steps."), "calibration.txt")
	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}

	hits, err := kwIndex.Search(ctx, "centrifuge", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 keyword hit, got %d", len(hits))
	}
	if hits[0].DocumentID != res.DocumentID {
		t.Errorf("hit document = %q, want %q", hits[0].DocumentID, res.DocumentID)
	}
}

func TestProcessDocument_duplicateByFilename(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()

	first := idx.ProcessDocument(ctx, []byte("original content"), "report.txt")
	if first.Status != models.StatusCompleted {
		t.Fatalf("first status = %s", first.Status)
	}

	second := idx.ProcessDocument(ctx, []byte("different content entirely"), "report.txt")
	if second.Status != models.StatusDuplicate {
		t.Fatalf("second status = %s", second.Status)
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("duplicate should name the existing document: %q vs %q", second.DocumentID, first.DocumentID)
	}
	if second.MatchType != models.MatchFilename {
		t.Errorf("match type = %q", second.MatchType)
	}
	if !strings.Contains(second.Message, "report.txt") {
		t.Errorf("message = %q", second.Message)
	}
}

func TestProcessDocument_duplicateByContentHash(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()

	content := []byte("identical bytes in both uploads")
	first := idx.ProcessDocument(ctx, content, "first.txt")
	if first.Status != models.StatusCompleted {
		t.Fatalf("first status = %s", first.Status)
	}

	second := idx.ProcessDocument(ctx, content, "second.txt")
	if second.Status != models.StatusDuplicate {
		t.Fatalf("second status = %s", second.Status)
	}
	if second.MatchType != models.MatchContentHash {
		t.Errorf("match type = %q", second.MatchType)
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("duplicate should name the existing document")
	}
}

func TestProcessDocument_filenameMatchWins(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()

	content := []byte("same name, same bytes")
	idx.ProcessDocument(ctx, content, "notes.txt")
	res := idx.ProcessDocument(ctx, content, "notes.txt")
	if res.Status != models.StatusDuplicate {
		t.Fatalf("status = %s", res.Status)
	}
	if res.MatchType != models.MatchFilename {
		t.Errorf("match type = %q, want filename to take precedence", res.MatchType)
	}
}

func TestProcessDocument_failedExtraction(t *testing.T) {
	idx, store, _ := testIndexer(t)
	ctx := context.Background()

	res := idx.ProcessDocument(ctx, []byte("not a pdf at all"), "broken.pdf")
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Error == "" {
		t.Error("failed result should carry the error")
	}
	if !strings.HasPrefix(res.DocumentID, "doc_") {
		t.Errorf("failed result should still carry the assigned ID, got %q", res.DocumentID)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("no chunks should be stored on failure, got %d", count)
	}
}

func TestProcessDocument_unsupportedType(t *testing.T) {
	idx, _, _ := testIndexer(t)

	res := idx.ProcessDocument(context.Background(), []byte("binary"), "image.png")
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if !strings.Contains(res.Error, "unsupported") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestProcessDocument_emptyText(t *testing.T) {
	idx, store, _ := testIndexer(t)
	ctx := context.Background()

	res := idx.ProcessDocument(ctx, []byte("   \n\n   "), "blank.txt")
	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}
	if res.ChunkCount != 0 {
		t.Errorf("chunk count = %d, want 0", res.ChunkCount)
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("stored chunks = %d, want 0", count)
	}
}

func TestProcessFile(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("File based ingest works."), 0600); err != nil {
		t.Fatal(err)
	}
	res, err := idx.ProcessFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.StatusCompleted {
		t.Errorf("status = %s", res.Status)
	}
	if res.Filename != "doc.txt" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestProcessFile_validation(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()
	dir := t.TempDir()

	blocked := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(blocked, []byte("#!/bin/sh"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.ProcessFile(ctx, blocked); err == nil {
		t.Error("expected error for disallowed extension")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.ProcessFile(ctx, empty); err == nil {
		t.Error("expected error for empty file")
	}

	if _, err := idx.ProcessFile(ctx, filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProcessDirectory(t *testing.T) {
	idx, store, _ := testIndexer(t)
	ctx := context.Background()
	dir := t.TempDir()

	files := map[string]string{
		"a.txt":     "First document in the drop directory.",
		"empty.txt": "",
		"skip.go":   "package main",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.md"), []byte("Nested document found by the walk."), 0600); err != nil {
		t.Fatal(err)
	}

	results, err := idx.ProcessDirectory(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (skip.go has a disallowed extension)", len(results))
	}
	var completed, failed int
	for _, res := range results {
		switch res.Status {
		case models.StatusCompleted:
			completed++
		case models.StatusFailed:
			failed++
		}
	}
	if completed != 2 || failed != 1 {
		t.Errorf("completed = %d failed = %d, want 2 and 1", completed, failed)
	}

	count, _ := store.Count(ctx)
	if count != 2 {
		t.Errorf("stored chunks = %d, want 2", count)
	}
}

func TestProcessDirectory_missing(t *testing.T) {
	idx, _, _ := testIndexer(t)
	if _, err := idx.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDeleteDocument(t *testing.T) {
	idx, store, kwIndex := testIndexer(t)
	ctx := context.Background()

	res := idx.ProcessDocument(ctx, []byte("Chunk to be deleted later."), "victim.txt")
	if res.Status != models.StatusCompleted {
		t.Fatalf("ingest status = %s", res.Status)
	}

	del := idx.DeleteDocument(ctx, res.DocumentID)
	if !del.Success {
		t.Fatalf("delete failed: %s", del.Message)
	}
	if del.ChunksDeleted != 1 {
		t.Errorf("chunks deleted = %d", del.ChunksDeleted)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("store count after delete = %d", count)
	}
	hits, _ := kwIndex.Search(ctx, "deleted", 5)
	if len(hits) != 0 {
		t.Errorf("keyword hits after delete = %d", len(hits))
	}

	again := idx.DeleteDocument(ctx, res.DocumentID)
	if again.Success {
		t.Error("second delete should report not found")
	}
	if again.Message != "Document not found" {
		t.Errorf("message = %q", again.Message)
	}
}

func TestListDocuments(t *testing.T) {
	idx, _, _ := testIndexer(t)
	ctx := context.Background()

	idx.ProcessDocument(ctx, []byte("first document body"), "one.txt")
	idx.ProcessDocument(ctx, []byte("second document body"), "two.txt")

	docs, err := idx.ListDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("listed %d documents", len(docs))
	}
	if docs[0].Filename != "one.txt" || docs[1].Filename != "two.txt" {
		t.Errorf("order = %s, %s", docs[0].Filename, docs[1].Filename)
	}
	if docs[0].ChunkCount != 1 {
		t.Errorf("chunk count = %d", docs[0].ChunkCount)
	}
}
