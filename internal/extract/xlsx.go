package extract

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetMarker prefixes the sheet name line emitted before each sheet's rows.
const SheetMarker = "# Sheet: "

func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{
		UnzipSizeLimit:    maxArchiveSize,
		UnzipXMLSizeLimit: maxEntrySize,
	})
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(SheetMarker)
		b.WriteString(sheet)
		b.WriteString("\n")

		w := csv.NewWriter(&b)
		if err := w.WriteAll(padRows(rows)); err != nil {
			return "", err
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// padRows extends every row to the widest row's length, since GetRows
// drops trailing empty cells.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows
}
