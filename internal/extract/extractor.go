// Package extract provides text extraction from uploaded document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Result holds the text pulled out of a document. Text carries [Page N] markers
// when per-page extraction succeeded; Pages maps page number to raw page text
// and is nil when only concatenated text was available.
type Result struct {
	Text      string
	PageCount int
	Pages     map[int]string
}

// Extractor extracts text from document files.
type Extractor struct {
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a logger for extraction fallback warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Extensions outside the
// supported set return an error; upload validation normally filters these
// before extraction is reached.
func (e *Extractor) ExtractBytes(content []byte, ext string) (*Result, error) {
	switch ext {
	case ".pdf":
		return e.extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt", ".md":
		return extractPlain(content)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// extractPDF tries page-level extraction first so chunks can carry page numbers.
// On failure it falls back to whole-document text with no page map; if both
// fail, the error from the fallback is returned.
func (e *Extractor) extractPDF(content []byte) (*Result, error) {
	res, err := extractPDFPages(content)
	if err == nil {
		return res, nil
	}
	if e.logger != nil {
		e.logger.Warn("page-level pdf extraction failed, falling back to whole-document text", zap.Error(err))
	}
	res, fallbackErr := extractPDFWhole(content)
	if fallbackErr != nil {
		return nil, fmt.Errorf("extract pdf text: %w", fallbackErr)
	}
	return res, nil
}
