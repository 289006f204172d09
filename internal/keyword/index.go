// Package keyword provides the full-text chunk index behind document search.
package keyword

import "context"

// Entry is one chunk to index. ID is the chunk ID shared with the vector store.
type Entry struct {
	ID         string
	DocumentID string
	Filename   string
	Text       string
	PageNumber *int
}

// Result is a single keyword search hit with its stored fields and highlight
// fragments from the text field.
type Result struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Filename   string   `json:"filename"`
	PageNumber *int     `json:"page_number"`
	Score      float64  `json:"score"`
	Fragments  []string `json:"fragments,omitempty"`
}

// KeywordIndex defines full-text operations over indexed chunks.
type KeywordIndex interface {
	Add(ctx context.Context, entries []*Entry) error
	DeleteDocument(ctx context.Context, documentID string) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	DocCount() (uint64, error)
	Close() error
}
