// Package models defines core data structures for documents, questions, answers,
// and observability records.
package models

// Ingest status values reported by the document pipeline.
const (
	StatusCompleted = "completed"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// Duplicate match criteria, in precedence order.
const (
	MatchFilename    = "filename"
	MatchContentHash = "content_hash"
)

// Chunk is one retrieval unit produced by the chunker: a bounded, possibly
// overlapping substring of a document's cleaned text.
type Chunk struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	PageNumber *int   `json:"page_number"`
	Length     int    `json:"length"`
}

// DocumentSummary describes one ingested document, derived from its chunk metadata.
type DocumentSummary struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
	FileSize   int64  `json:"file_size"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
}

// IngestResult is the outcome of processing one uploaded document.
type IngestResult struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	Status         string  `json:"status"`
	PageCount      int     `json:"page_count,omitempty"`
	ChunkCount     int     `json:"chunk_count,omitempty"`
	FileSize       int64   `json:"file_size,omitempty"`
	ContentHash    string  `json:"content_hash,omitempty"`
	ProcessingTime float64 `json:"processing_time"`
	Message        string  `json:"message"`
	Error          string  `json:"error,omitempty"`
	// Set when Status is duplicate: the criterion that matched. DocumentID then
	// names the existing document.
	MatchType string `json:"match_type,omitempty"`
}

// DeleteResult is the outcome of deleting a document and its chunks.
type DeleteResult struct {
	DocumentID    string `json:"document_id"`
	Success       bool   `json:"success"`
	ChunksDeleted int    `json:"chunks_deleted"`
	Message       string `json:"message"`
}

// UploadMetadata describes the stored file on a successful upload.
type UploadMetadata struct {
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
	UploadDate string `json:"upload_date"`
	PageCount  int    `json:"page_count,omitempty"`
	FileType   string `json:"file_type"`
}

// UploadResponse is the upload endpoint payload for a processed document.
type UploadResponse struct {
	DocumentID string          `json:"document_id"`
	Filename   string          `json:"filename"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Metadata   *UploadMetadata `json:"metadata"`
}
