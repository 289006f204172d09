// Package vectorstore persists chunks with their metadata in SQLite and
// answers similarity queries through a composed vector index.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/ids"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// Record is one stored chunk: its text, metadata, and (on write) embedding.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]interface{}
}

// QueryResult is one similarity hit. Score is derived from Distance and is 1
// for an exact match.
type QueryResult struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
	Distance float64
	Score    float64
}

// Store combines the SQLite chunk table with a vector index. Rows and vectors
// share IDs; writes go to both.
type Store struct {
	db    *sql.DB
	index vector.VectorIndex
}

// NewStore opens or creates the chunk database at dbPath and attaches the
// given vector index. Parent directories are created if they do not exist.
func NewStore(dbPath string, index vector.VectorIndex) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, index: index}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		metadata TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Add stores records and their embeddings. Records without an ID get a fresh
// one; every record's metadata is stamped with a shared write timestamp. The
// assigned IDs are returned in record order.
func (s *Store) Add(ctx context.Context, records []*Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	timestamp := time.Now().Format(time.RFC3339)
	assigned := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			rec.ID = ids.NewRecordID()
		}
		if rec.Metadata == nil {
			rec.Metadata = make(map[string]interface{})
		}
		rec.Metadata["timestamp"] = timestamp
		assigned[i] = rec.ID
		embeddings[i] = rec.Embedding
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (id, text, metadata) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, rec := range records {
		metadataJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Text, string(metadataJSON)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.index.Add(ctx, assigned, embeddings); err != nil {
		return nil, fmt.Errorf("failed to index embeddings: %w", err)
	}
	return assigned, nil
}

// Query returns the k chunks nearest to embedding, closest first. A non-empty
// filter restricts candidates by metadata before ranking.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter Filter) ([]*QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	searchK := k
	var allowed map[string]bool
	if len(filter) > 0 {
		var err error
		allowed, err = s.matchingIDs(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(allowed) == 0 {
			return nil, nil
		}
		// Rank the whole index so filtered-out hits cannot crowd out matches.
		searchK = s.index.Size()
	}

	hits, err := s.index.Search(ctx, embedding, searchK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]*QueryResult, 0, k)
	for _, hit := range hits {
		if allowed != nil && !allowed[hit.ID] {
			continue
		}
		text, meta, err := s.getChunk(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, &QueryResult{
			ID:       hit.ID,
			Text:     text,
			Metadata: meta,
			Distance: hit.Distance,
			Score:    vector.ScoreFromDistance(hit.Distance),
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// GetByFilter returns stored chunks whose metadata matches filter, in insert
// order. A nil or empty filter returns every chunk. Embeddings are not loaded.
func (s *Store) GetByFilter(ctx context.Context, filter Filter) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, metadata FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var metadataJSON string
		if err := rows.Scan(&rec.ID, &rec.Text, &metadataJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		if !filter.matches(rec.Metadata) {
			continue
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteByFilter removes chunks whose metadata matches filter from both the
// table and the vector index, returning how many were removed.
func (s *Store) DeleteByFilter(ctx context.Context, filter Filter) (int, error) {
	allowed, err := s.matchingIDs(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(allowed) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM chunks WHERE id = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	removed := make([]string, 0, len(allowed))
	for id := range allowed {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, err
		}
		removed = append(removed, id)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if err := s.index.Remove(ctx, removed); err != nil {
		return len(removed), fmt.Errorf("failed to remove embeddings: %w", err)
	}
	return len(removed), nil
}

// ListDocuments derives per-document summaries from chunk metadata, in first
// ingest order.
func (s *Store) ListDocuments(ctx context.Context) ([]*models.DocumentSummary, error) {
	records, err := s.GetByFilter(ctx, nil)
	if err != nil {
		return nil, err
	}

	var order []string
	byID := make(map[string]*models.DocumentSummary)
	for _, rec := range records {
		docID := metaString(rec.Metadata, "document_id")
		if docID == "" {
			continue
		}
		summary, ok := byID[docID]
		if !ok {
			summary = &models.DocumentSummary{
				DocumentID: docID,
				Filename:   metaString(rec.Metadata, "filename"),
				UploadDate: metaString(rec.Metadata, "upload_timestamp"),
				FileSize:   metaInt64(rec.Metadata, "file_size"),
				PageCount:  int(metaInt64(rec.Metadata, "page_count")),
				Status:     models.StatusCompleted,
			}
			byID[docID] = summary
			order = append(order, docID)
		}
		summary.ChunkCount++
	}

	summaries := make([]*models.DocumentSummary, len(order))
	for i, docID := range order {
		summaries[i] = byID[docID]
	}
	return summaries, nil
}

// GetDocument derives one document's summary from its chunk metadata. An
// unknown ID returns nil without error.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	records, err := s.GetByFilter(ctx, Filter{"document_id": documentID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	first := records[0].Metadata
	summary := &models.DocumentSummary{
		DocumentID: documentID,
		Filename:   metaString(first, "filename"),
		UploadDate: metaString(first, "upload_timestamp"),
		FileSize:   metaInt64(first, "file_size"),
		PageCount:  int(metaInt64(first, "page_count")),
		ChunkCount: len(records),
		Status:     models.StatusCompleted,
	}
	return summary, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection. The vector index is owned by the
// caller and closed separately.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getChunk(ctx context.Context, id string) (string, map[string]interface{}, error) {
	var text, metadataJSON string
	err := s.db.QueryRowContext(ctx, `SELECT text, metadata FROM chunks WHERE id = ?`, id).Scan(&text, &metadataJSON)
	if err == sql.ErrNoRows {
		return "", nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return "", nil, err
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return text, meta, nil
}

func (s *Store) matchingIDs(ctx context.Context, filter Filter) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, metadata FROM chunks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matched := make(map[string]bool)
	for rows.Next() {
		var id, metadataJSON string
		if err := rows.Scan(&id, &metadataJSON); err != nil {
			return nil, err
		}
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		if filter.matches(meta) {
			matched[id] = true
		}
	}
	return matched, rows.Err()
}

// metaString reads a string metadata field, "" when absent or mistyped.
func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaInt64 reads a numeric metadata field; JSON decoding yields float64.
func metaInt64(meta map[string]interface{}, key string) int64 {
	switch v := meta[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
