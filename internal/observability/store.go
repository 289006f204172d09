// Package observability records prompt template versions and per-request LLM
// call logs in SQLite and aggregates them for the metrics endpoints.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Store persists prompt templates and LLM request logs.
type Store struct {
	db              *sql.DB
	inputCostPer1K  float64
	outputCostPer1K float64
}

// NewStore opens or creates the observability database at dbPath and initializes
// the schema. Parent directories are created if they do not exist. The cost
// rates are USD per 1000 prompt and completion tokens.
func NewStore(dbPath string, inputCostPer1K, outputCostPer1K float64) (*Store, error) {
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

	return &Store{
		db:              db,
		inputCostPer1K:  inputCostPer1K,
		outputCostPer1K: outputCostPer1K,
	}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS prompt_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		template_key TEXT NOT NULL,
		version INTEGER NOT NULL,
		template_text TEXT NOT NULL,
		description TEXT,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_prompt_templates_key ON prompt_templates(template_key);

	CREATE TABLE IF NOT EXISTS llm_request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_type TEXT NOT NULL,
		conversation_id TEXT,
		model TEXT NOT NULL,
		question TEXT,
		prompt_input TEXT NOT NULL,
		prompt_template_key TEXT,
		prompt_template_version INTEGER,
		response_text TEXT,
		request_metadata TEXT,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		cost_usd REAL NOT NULL DEFAULT 0,
		latency_ms REAL NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 1,
		error_message TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_type ON llm_request_logs(request_type);
	CREATE INDEX IF NOT EXISTS idx_request_logs_conversation ON llm_request_logs(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_request_logs_created_at ON llm_request_logs(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// EnsureTemplate returns the highest-version row for key, active or not,
// creating version 1 as active when the key has never been seen.
func (s *Store) EnsureTemplate(ctx context.Context, key, text, description string) (*models.PromptTemplate, error) {
	existing, err := s.latestTemplate(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tpl := &models.PromptTemplate{
		TemplateKey:  key,
		Version:      1,
		TemplateText: text,
		Description:  description,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO prompt_templates (template_key, version, template_text, description, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tpl.TemplateKey, tpl.Version, tpl.TemplateText, tpl.Description, tpl.IsActive, tpl.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", err)
	}
	tpl.ID, _ = res.LastInsertId()
	return tpl, nil
}

// ActiveTemplate returns the highest-version active row for key, or nil when
// no version of the key is active.
func (s *Store) ActiveTemplate(ctx context.Context, key string) (*models.PromptTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, template_key, version, template_text, description, is_active, created_at
		 FROM prompt_templates WHERE template_key = ? AND is_active = 1
		 ORDER BY version DESC LIMIT 1`, key,
	)
	return scanTemplate(row)
}

// CreateVersion inserts the next version for key. When activate is true, every
// currently active row for the key is deactivated in the same transaction as
// the insert, so exactly one version stays active.
func (s *Store) CreateVersion(ctx context.Context, key, text, description string, activate bool) (*models.PromptTemplate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var latest int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM prompt_templates WHERE template_key = ?`, key,
	).Scan(&latest); err != nil {
		return nil, err
	}

	if activate {
		if _, err := tx.ExecContext(ctx,
			`UPDATE prompt_templates SET is_active = 0 WHERE template_key = ? AND is_active = 1`, key,
		); err != nil {
			return nil, err
		}
	}

	tpl := &models.PromptTemplate{
		TemplateKey:  key,
		Version:      latest + 1,
		TemplateText: text,
		Description:  description,
		IsActive:     activate,
		CreatedAt:    time.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO prompt_templates (template_key, version, template_text, description, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tpl.TemplateKey, tpl.Version, tpl.TemplateText, tpl.Description, tpl.IsActive, tpl.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template version: %w", err)
	}
	tpl.ID, _ = res.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Templates returns template versions ordered by key then descending version.
// An empty key returns every template.
func (s *Store) Templates(ctx context.Context, key string) ([]*models.PromptTemplate, error) {
	query := `SELECT id, template_key, version, template_text, description, is_active, created_at
	          FROM prompt_templates`
	args := []interface{}{}
	if key != "" {
		query += ` WHERE template_key = ?`
		args = append(args, key)
	}
	query += ` ORDER BY template_key, version DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.PromptTemplate
	for rows.Next() {
		var tpl models.PromptTemplate
		if err := rows.Scan(&tpl.ID, &tpl.TemplateKey, &tpl.Version, &tpl.TemplateText,
			&tpl.Description, &tpl.IsActive, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &tpl)
	}
	return templates, rows.Err()
}

// CostUSD estimates request cost in USD from the configured per-1000-token
// rates, rounded to 8 decimal places.
func (s *Store) CostUSD(promptTokens, completionTokens int) float64 {
	promptCost := float64(promptTokens) / 1000.0 * s.inputCostPer1K
	completionCost := float64(completionTokens) / 1000.0 * s.outputCostPer1K
	return utils.Round(promptCost+completionCost, 8)
}

// LogRequest inserts one immutable request log row. Total tokens and cost are
// computed here so callers only report what the API returned.
func (s *Store) LogRequest(ctx context.Context, rec *models.LogRecord) (int64, error) {
	totalTokens := rec.PromptTokens + rec.CompletionTokens
	costUSD := s.CostUSD(rec.PromptTokens, rec.CompletionTokens)

	metadataJSON := ""
	if len(rec.Metadata) > 0 {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request metadata: %w", err)
		}
		metadataJSON = string(data)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_request_logs (
			request_type, conversation_id, model, question, prompt_input,
			prompt_template_key, prompt_template_version, response_text, request_metadata,
			prompt_tokens, completion_tokens, total_tokens, cost_usd, latency_ms,
			success, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestType, rec.ConversationID, rec.Model, rec.Question, rec.PromptInput,
		rec.PromptTemplateKey, rec.PromptTemplateVersion, rec.ResponseText, metadataJSON,
		rec.PromptTokens, rec.CompletionTokens, totalTokens, costUSD, rec.LatencyMS,
		rec.Success, rec.ErrorMessage, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert request log: %w", err)
	}
	return res.LastInsertId()
}

// RecentLogs returns the most recent request logs, newest first.
func (s *Store) RecentLogs(ctx context.Context, limit int) ([]*models.RequestLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_type, conversation_id, model, question,
		        prompt_tokens, completion_tokens, total_tokens, cost_usd, latency_ms,
		        success, error_message, created_at
		 FROM llm_request_logs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLogEntry
	for rows.Next() {
		var entry models.RequestLogEntry
		if err := rows.Scan(&entry.ID, &entry.RequestType, &entry.ConversationID, &entry.Model,
			&entry.Question, &entry.PromptTokens, &entry.CompletionTokens, &entry.TotalTokens,
			&entry.CostUSD, &entry.LatencyMS, &entry.Success, &entry.ErrorMessage,
			&entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// CountRequests returns the all-time number of logged requests of the given
// type. An empty type counts every request.
func (s *Store) CountRequests(ctx context.Context, requestType string) (int64, error) {
	var count int64
	var err error
	if requestType == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM llm_request_logs`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM llm_request_logs WHERE request_type = ?`, requestType).Scan(&count)
	}
	return count, err
}

// MetricsSummary aggregates request logs over the trailing window: headline
// totals plus a per-calendar-day breakdown in chronological order.
func (s *Store) MetricsSummary(ctx context.Context, windowHours int) (*models.MetricsSummary, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	summary := &models.MetricsSummary{WindowHours: windowHours, Trends: []models.DailyTrend{}}

	var totalCost, avgLatency float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(id),
		        COALESCE(SUM(prompt_tokens), 0),
		        COALESCE(SUM(completion_tokens), 0),
		        COALESCE(SUM(total_tokens), 0),
		        COALESCE(SUM(cost_usd), 0),
		        COALESCE(AVG(latency_ms), 0)
		 FROM llm_request_logs WHERE created_at >= ?`, since,
	).Scan(&summary.Summary.TotalQueries, &summary.Summary.PromptTokens,
		&summary.Summary.CompletionTokens, &summary.Summary.TotalTokens,
		&totalCost, &avgLatency)
	if err != nil {
		return nil, err
	}
	summary.Summary.TotalCostUSD = utils.Round(totalCost, 8)
	summary.Summary.AverageLatencyMS = utils.Round(avgLatency, 2)

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM llm_request_logs WHERE created_at >= ? AND success = 1`, since,
	).Scan(&summary.Summary.SuccessCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM llm_request_logs WHERE created_at >= ? AND success = 0`, since,
	).Scan(&summary.Summary.FailureCount); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date(created_at),
		        COUNT(id),
		        COALESCE(SUM(total_tokens), 0),
		        COALESCE(SUM(cost_usd), 0),
		        COALESCE(AVG(latency_ms), 0)
		 FROM llm_request_logs WHERE created_at >= ?
		 GROUP BY date(created_at) ORDER BY date(created_at)`, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var trend models.DailyTrend
		var cost, latency float64
		if err := rows.Scan(&trend.Date, &trend.Queries, &trend.Tokens, &cost, &latency); err != nil {
			return nil, err
		}
		trend.CostUSD = utils.Round(cost, 8)
		trend.AverageLatencyMS = utils.Round(latency, 2)
		summary.Trends = append(summary.Trends, trend)
	}
	return summary, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) latestTemplate(ctx context.Context, key string) (*models.PromptTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, template_key, version, template_text, description, is_active, created_at
		 FROM prompt_templates WHERE template_key = ?
		 ORDER BY version DESC LIMIT 1`, key,
	)
	return scanTemplate(row)
}

func scanTemplate(row *sql.Row) (*models.PromptTemplate, error) {
	var tpl models.PromptTemplate
	err := row.Scan(&tpl.ID, &tpl.TemplateKey, &tpl.Version, &tpl.TemplateText,
		&tpl.Description, &tpl.IsActive, &tpl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}
