package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel extracts cell text sheet by sheet, rows tab-joined. Sheets act
// as pages so spreadsheet chunks can cite the sheet they came from.
func extractExcel(content []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	pages := make(map[int]string)
	var full strings.Builder
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		var sb strings.Builder
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteByte('\n')
		}
		sheetText := strings.TrimSpace(sb.String())
		if sheetText == "" {
			continue
		}
		pages[i+1] = sheetText
		fmt.Fprintf(&full, "[Page %d]\n%s\n\n", i+1, sheetText)
	}
	return &Result{Text: full.String(), PageCount: len(sheets), Pages: pages}, nil
}
