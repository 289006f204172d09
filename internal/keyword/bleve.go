package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// deleteBatchSize bounds how many chunk deletions go into one Bleve batch.
const deleteBatchSize = 1000

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused so chunks survive restarts. If the mapping in code
// changes, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	chunkMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact words that appear in chunk text.
	textFieldMapping.Analyzer = standard.Name
	chunkMapping.AddFieldMappingsAt("text", textFieldMapping)
	chunkMapping.AddFieldMappingsAt("filename", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	chunkMapping.AddFieldMappingsAt("document_id", keywordFieldMapping)
	chunkMapping.AddFieldMappingsAt("page_number", bleve.NewNumericFieldMapping())
	im.AddDocumentMapping("chunk", chunkMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = chunkMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Add indexes entries in one batch.
func (b *BleveIndex) Add(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, entry := range entries {
		fields := map[string]interface{}{
			"text":        entry.Text,
			"filename":    entry.Filename,
			"document_id": entry.DocumentID,
		}
		if entry.PageNumber != nil {
			fields["page_number"] = *entry.PageNumber
		}
		if err := batch.Index(entry.ID, fields); err != nil {
			return fmt.Errorf("failed to batch chunk %s: %w", entry.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes every chunk of the given document.
func (b *BleveIndex) DeleteDocument(ctx context.Context, documentID string) error {
	q := bleve.NewTermQuery(documentID)
	q.SetField("document_id")
	for {
		req := bleve.NewSearchRequest(q)
		req.Size = deleteBatchSize
		results, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("failed to find chunks for %s: %w", documentID, err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to delete chunks for %s: %w", documentID, err)
		}
	}
}

// Search runs a match query over chunk text and filenames, returning up to
// limit hits with stored fields and text highlight fragments.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"text", "filename", "document_id", "page_number"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("text")

	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		result := &Result{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["document_id"].(string); ok {
			result.DocumentID = v
		}
		if v, ok := hit.Fields["filename"].(string); ok {
			result.Filename = v
		}
		if v, ok := hit.Fields["page_number"].(float64); ok {
			page := int(v)
			result.PageNumber = &page
		}
		if fragments, ok := hit.Fragments["text"]; ok {
			result.Fragments = fragments
		}
		out[i] = result
	}
	return out, nil
}

// DocCount returns the total number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
