package keyword

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testEntries() []*Entry {
	page2 := 2
	return []*Entry{
		{
			ID:         "chunk-1",
			DocumentID: "doc_a",
			Filename:   "manual.pdf",
			Text:       "The reactor shutdown procedure requires two operators.",
			PageNumber: &page2,
		},
		{
			ID:         "chunk-2",
			DocumentID: "doc_a",
			Filename:   "manual.pdf",
			Text:       "Emergency contacts are listed in the appendix.",
		},
		{
			ID:         "chunk-3",
			DocumentID: "doc_b",
			Filename:   "quarterly-report.pdf",
			Text:       "Revenue grew in the third quarter.",
		},
	}
}

func testIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsText(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}

	// Standard analyzer: lowercase query matches capitalized text.
	results, err := idx.Search(ctx, "reactor", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	hit := results[0]
	if hit.ID != "chunk-1" {
		t.Errorf("ID = %q", hit.ID)
	}
	if hit.DocumentID != "doc_a" || hit.Filename != "manual.pdf" {
		t.Errorf("stored fields = %q, %q", hit.DocumentID, hit.Filename)
	}
	if hit.PageNumber == nil || *hit.PageNumber != 2 {
		t.Errorf("page number = %v", hit.PageNumber)
	}
	if hit.Score <= 0 {
		t.Errorf("score = %f", hit.Score)
	}
}

func TestBleveIndex_SearchFindsFilename(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, "quarterly", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected a hit from the filename field")
	}
	if results[0].ID != "chunk-3" {
		t.Errorf("first result ID = %q, want chunk-3", results[0].ID)
	}
}

func TestBleveIndex_SearchFragments(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, "shutdown", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if len(results[0].Fragments) == 0 {
		t.Fatal("expected highlight fragments")
	}
	if !strings.Contains(strings.ToLower(results[0].Fragments[0]), "shutdown") {
		t.Errorf("fragment %q should contain the matched term", results[0].Fragments[0])
	}
}

func TestBleveIndex_SearchLimit(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}

	// Every chunk's filename contains "pdf".
	results, err := idx.Search(ctx, "pdf", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("limit not applied: got %d results", len(results))
	}
}

func TestBleveIndex_DeleteDocument(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}
	if err := idx.DeleteDocument(ctx, "doc_a"); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, "reactor", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results after delete, got %d", len(results))
	}

	// The other document's chunks stay.
	results, err = idx.Search(ctx, "revenue", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected doc_b chunk to survive, got %d results", len(results))
	}

	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DocCount = %d, want 1", n)
	}
}

func TestBleveIndex_DeleteDocument_absent(t *testing.T) {
	idx := testIndex(t)
	if err := idx.DeleteDocument(context.Background(), "doc_missing"); err != nil {
		t.Fatalf("deleting an unknown document should be a no-op: %v", err)
	}
}

func TestBleveIndex_persistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	ctx := context.Background()

	idx1, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx1.Add(ctx, testEntries()); err != nil {
		t.Fatal(err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatal(err)
	}

	idx2, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx2.Close()

	results, err := idx2.Search(ctx, "reactor", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected indexed chunks to survive reopen, got %d results", len(results))
	}
}

func TestNewBleveIndex_createsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("index path should exist: %v", err)
	}
}
