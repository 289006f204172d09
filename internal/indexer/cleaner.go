package indexer

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(` +`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes extracted text before chunking: runs of spaces collapse to
// one, runs of three or more newlines collapse to two, NUL bytes are stripped,
// and surrounding whitespace is trimmed. Paragraph breaks (double newlines)
// survive so chunk boundaries can still land on them.
func Clean(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
