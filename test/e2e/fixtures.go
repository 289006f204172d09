package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions lists the formats the extractor can round trip from
// bytes built in a test. PDF is excluded: a hand written minimal PDF that the
// parser accepts is not worth maintaining here.
var SupportedFileExtensions = []string{".txt", ".md", ".docx", ".xlsx"}

// WriteMinimalFile builds the smallest valid file of the given extension whose
// extracted text contains the sample string.
func WriteMinimalFile(ext, sample string) ([]byte, error) {
	switch ext {
	case ".txt", ".md":
		return []byte(sample), nil
	case ".docx":
		return minimalDocx(sample)
	case ".xlsx":
		return minimalXlsx(sample)
	default:
		return nil, fmt.Errorf("no fixture builder for extension %s", ext)
	}
}

// minimalDocx builds a docx zip with a single run of text in word/document.xml.
func minimalDocx(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		return nil, err
	}
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := fw.Write([]byte(doc)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// minimalXlsx builds a workbook with the text in cell A1 of the first sheet.
func minimalXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
