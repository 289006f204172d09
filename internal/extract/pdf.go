package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDFPages extracts text page by page, prefixing each non-empty page
// with a [Page N] marker and recording it in the page map. Any page-level
// extraction error fails the whole pass.
func extractPDFPages(content []byte) (*Result, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()
	pages := make(map[int]string)
	var buf bytes.Buffer
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		pages[i] = text
		fmt.Fprintf(&buf, "[Page %d]\n%s\n\n", i, text)
	}
	return &Result{Text: buf.String(), PageCount: numPages, Pages: pages}, nil
}

// extractPDFWhole extracts the document's concatenated text in one pass.
// Chunks derived from it get no page numbers since there is no page map.
func extractPDFWhole(content []byte) (*Result, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	textReader, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("read PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return nil, fmt.Errorf("read PDF text: %w", err)
	}
	return &Result{Text: buf.String(), PageCount: r.NumPage()}, nil
}
