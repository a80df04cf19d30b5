package render

import (
	"encoding/csv"
	"strings"

	"github.com/cpsullivan/file-parser-agent/parser"
)

// CSV extracts tabular data as CSV: the first sheet of an Excel workbook
// or the first table of a Word document. Other file types yield an empty
// string.
func CSV(doc *parser.Document) string {
	var grid [][]string
	switch {
	case doc.Excel != nil && len(doc.Excel.Sheets) > 0:
		grid = anyGrid(doc.Excel.Sheets[0].Data)
	case doc.Word != nil && len(doc.Word.Tables) > 0:
		grid = doc.Word.Tables[0].Data
	}
	if len(grid) == 0 {
		return ""
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range grid {
		w.Write(row)
	}
	w.Flush()
	return b.String()
}
