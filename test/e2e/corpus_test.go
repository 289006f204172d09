package e2e

import (
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/indexer"
)

func TestBuildCorpus_shape(t *testing.T) {
	c := BuildCorpus()
	if len(c.Documents) == 0 {
		t.Fatal("corpus has no documents")
	}
	if len(c.QuestionCases) != len(c.Documents) {
		t.Errorf("question cases = %d, want %d", len(c.QuestionCases), len(c.Documents))
	}
	if len(c.SearchCases) != len(c.Documents) {
		t.Errorf("search cases = %d, want %d", len(c.SearchCases), len(c.Documents))
	}
}

func TestBuildCorpus_uniqueFilenames(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range BuildCorpus().Documents {
		if seen[d.Filename] {
			t.Errorf("duplicate filename %s", d.Filename)
		}
		seen[d.Filename] = true
	}
}

// Top rank retrieval in the ask tests depends on the question matching the
// stored chunk text exactly, so every question must quote its document.
func TestBuildCorpus_questionsQuoteTheDocument(t *testing.T) {
	c := BuildCorpus()
	byName := make(map[string]string)
	for _, d := range c.Documents {
		byName[d.Filename] = d.Content
	}
	for _, tc := range c.QuestionCases {
		content, ok := byName[tc.ExpectedFile]
		if !ok {
			t.Errorf("case %q expects unknown file %s", tc.Description, tc.ExpectedFile)
			continue
		}
		if tc.Question != content {
			t.Errorf("case %q: question is not the stored sentence", tc.Description)
		}
	}
}

// Every document must survive chunking as a single chunk whose text equals the
// raw content. A document that splits, or that the cleaner rewrites, would
// break the exact match between question text and chunk text.
func TestBuildCorpus_documentsChunkToThemselves(t *testing.T) {
	chunker := indexer.NewChunker(500, 50)
	for _, d := range BuildCorpus().Documents {
		chunks := chunker.Chunk(d.Content, nil)
		if len(chunks) != 1 {
			t.Errorf("%s: chunk count = %d, want 1", d.Filename, len(chunks))
			continue
		}
		if chunks[0].Text != d.Content {
			t.Errorf("%s: chunk text diverges from content", d.Filename)
		}
	}
}

// Membership assertions in the search tests depend on each keyword appearing
// in exactly one document, counting both content and filename.
func TestBuildCorpus_searchKeywordsAreUnique(t *testing.T) {
	c := BuildCorpus()
	for _, tc := range c.SearchCases {
		for _, d := range c.Documents {
			hay := strings.ToLower(d.Content + " " + d.Filename)
			has := strings.Contains(hay, tc.Query)
			if d.Filename == tc.ExpectedFile && !has {
				t.Errorf("keyword %q missing from its own document %s", tc.Query, d.Filename)
			}
			if d.Filename != tc.ExpectedFile && has {
				t.Errorf("keyword %q also appears in %s", tc.Query, d.Filename)
			}
		}
	}
}
