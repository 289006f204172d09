package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	docxDefaultDocumentPath = "word/document.xml"
	docxContentTypesPath    = "[Content_Types].xml"
	docxMainContentType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// wtTag matches <w:t>text</w:t> including variants with attributes
// such as <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// docxOverrideRes match the Override element for the main document part in
// [Content_Types].xml, covering both attribute orders.
var docxOverrideRes = []*regexp.Regexp{
	regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`),
	regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`),
}

// extractDOCX extracts text from .docx bytes. DOCX is a ZIP containing an OOXML
// document part; all <w:t>...</w:t> text nodes are collected so content survives
// arbitrary paragraph and run attributes. The document part path comes from
// [Content_Types].xml when present, else the conventional word/document.xml.
func extractDOCX(content []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	docPath := docxMainDocumentPath(zr)
	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: %w", err)
	}

	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return &Result{Text: strings.TrimSpace(b.String()), PageCount: 1}, nil
}

// docxMainDocumentPath resolves the main document part from [Content_Types].xml,
// falling back to word/document.xml when the manifest is absent or unparseable.
func docxMainDocumentPath(zr *zip.Reader) string {
	manifest, err := readZipFile(zr, docxContentTypesPath)
	if err != nil {
		return docxDefaultDocumentPath
	}
	for _, re := range docxOverrideRes {
		if m := re.FindStringSubmatch(string(manifest)); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return docxDefaultDocumentPath
}

// readZipFile returns the contents of the named file inside the archive.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
