// Package cli provides CLI output formatting for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnswer writes an answer to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	default:
		writeAnswerText(w, answer)
		return nil
	}
}

func writeAnswerText(w io.Writer, answer *models.Answer) {
	fmt.Fprintf(w, "\n%s\n", answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Fprintf(w, "\n--- Sources (%d) ---\n", len(answer.Sources))
		for i, source := range answer.Sources {
			writeOneSource(w, i+1, source)
		}
	}
	fmt.Fprintf(w, "\nAnswered in %.2fs using %s (conversation %s)\n",
		answer.ProcessingTime, answer.ModelUsed, answer.ConversationID)
	if obs := answer.Observability; obs != nil {
		fmt.Fprintf(w, "Tokens: %d (prompt %d, completion %d) | Estimated cost: $%.6f\n",
			obs.TotalTokens, obs.PromptTokens, obs.CompletionTokens, obs.EstimatedCostUSD)
	}
}

func writeOneSource(w io.Writer, rank int, source *models.Source) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	if source.PageNumber != nil {
		fmt.Fprintf(w, "[%d] %s (page %d) | Relevance: %.4f\n",
			rank, source.DocumentName, *source.PageNumber, source.RelevanceScore)
	} else {
		fmt.Fprintf(w, "[%d] %s | Relevance: %.4f\n",
			rank, source.DocumentName, source.RelevanceScore)
	}
	fmt.Fprintf(w, "%s\n", utils.Truncate(source.ChunkText, 200))
}

// WriteIngestResult writes the outcome of ingesting one file to w in the given format.
func WriteIngestResult(w io.Writer, result *models.IngestResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeIngestResultText(w, result)
		return nil
	}
}

func writeIngestResultText(w io.Writer, result *models.IngestResult) {
	switch result.Status {
	case models.StatusDuplicate:
		fmt.Fprintf(w, "Skipped %s: duplicate of %s (matched by %s)\n",
			result.Filename, result.DocumentID, result.MatchType)
	case models.StatusFailed:
		fmt.Fprintf(w, "Failed %s: %s\n", result.Filename, result.Error)
	default:
		fmt.Fprintf(w, "Ingested %s: %d chunks from %d page(s) in %.2fs (%s)\n",
			result.Filename, result.ChunkCount, result.PageCount,
			result.ProcessingTime, result.DocumentID)
	}
}
