package indexer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kotae/internal/models"
)

// pageProbeLen is how many leading characters of a chunk are matched against
// page texts when inferring the chunk's page number.
const pageProbeLen = 100

var pageMarker = regexp.MustCompile(`\[Page (\d+)\]`)

// Chunker splits cleaned text into overlapping character windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given window size and overlap, both in
// characters. chunkSize must exceed chunkOverlap for the window to advance.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk cleans text and splits it into overlapping chunks. A window extends
// past its nominal end until a space, newline, or sentence-ending character so
// words are never split. pages maps page number to that page's raw text and may
// be nil; it drives best-effort page attribution per chunk. Text shorter than
// the window size yields a single chunk; empty text yields none.
func (c *Chunker) Chunk(text string, pages map[int]string) []models.Chunk {
	text = Clean(text)
	var chunks []models.Chunk
	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end < len(text) {
			for end < len(text) && !isChunkBoundary(text[end]) {
				end++
			}
		}
		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		piece := strings.TrimSpace(text[start:sliceEnd])
		if piece != "" {
			chunks = append(chunks, models.Chunk{
				Index:      len(chunks),
				Text:       piece,
				StartChar:  start,
				EndChar:    sliceEnd,
				PageNumber: inferPage(piece, pages),
				Length:     len(piece),
			})
		}
		start = end - c.chunkOverlap
		if start <= 0 && end >= len(text) {
			break
		}
	}
	return chunks
}

// isChunkBoundary reports whether b may end a chunk window. All boundary bytes
// are ASCII, so scanning bytes never lands inside a multi-byte rune.
func isChunkBoundary(b byte) bool {
	switch b {
	case ' ', '\n', '.', '!', '?':
		return true
	}
	return false
}

// inferPage attributes a chunk to a page. With a page map, the chunk belongs to
// the lowest-numbered page whose text contains the chunk's leading characters;
// without one, an embedded [Page N] marker is the only signal. Returns nil when
// neither yields a page.
func inferPage(chunkText string, pages map[int]string) *int {
	if len(pages) == 0 {
		if m := pageMarker.FindStringSubmatch(chunkText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &n
			}
		}
		return nil
	}
	probe := chunkText
	if len(probe) > pageProbeLen {
		cut := pageProbeLen
		for cut > 0 && !utf8.RuneStart(probe[cut]) {
			cut--
		}
		probe = probe[:cut]
	}
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if strings.Contains(pages[n], probe) {
			return &n
		}
	}
	return nil
}
