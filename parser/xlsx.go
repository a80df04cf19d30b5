package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelExtractor reads XLSX workbooks with computed (cached) values. Sheets
// are walked in workbook-declared order; trailing all-empty rows are
// trimmed from the captured data.
type ExcelExtractor struct{}

func (e *ExcelExtractor) Extensions() []string { return []string{"xlsx"} }

func (e *ExcelExtractor) Parse(ctx context.Context, path string, opts Options) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	doc := newDocument(path, FileTypeExcel)
	sheetNames := f.GetSheetList()
	body := &ExcelBody{
		Metadata: ExcelMetadata{
			TotalSheets: len(sheetNames),
			SheetNames:  sheetNames,
		},
		Sheets: make([]Sheet, 0, len(sheetNames)),
	}

	for _, name := range sheetNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body.Sheets = append(body.Sheets, extractSheet(f, name))
	}

	doc.Excel = body
	return doc, nil
}

// extractSheet captures one worksheet. A sheet that fails to read comes
// back with empty data rather than failing the workbook.
func extractSheet(f *excelize.File, name string) Sheet {
	sheet := Sheet{Name: name, Data: [][]any{}}

	rows, err := f.GetRows(name)
	if err != nil {
		return sheet
	}

	// Trim trailing all-empty rows. The declared column count still comes
	// from the sheet's native dimension below.
	last := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				last = i
				break
			}
		}
	}
	rows = rows[:last+1]

	columns := dimensionColumns(f, name)
	if columns == 0 {
		for _, row := range rows {
			if len(row) > columns {
				columns = len(row)
			}
		}
	}

	data := make([][]any, 0, len(rows))
	for r := range rows {
		row := make([]any, columns)
		for c := 0; c < columns; c++ {
			row[c] = typedCellValue(f, name, c+1, r+1)
		}
		data = append(data, row)
	}

	sheet.Rows = len(data)
	sheet.Columns = columns
	sheet.Data = data
	return sheet
}

// dimensionColumns returns the column count declared by the sheet's
// dimension reference (e.g. "A1:E5" -> 5), or 0 if unavailable.
func dimensionColumns(f *excelize.File, name string) int {
	dim, err := f.GetSheetDimension(name)
	if err != nil || dim == "" {
		return 0
	}
	parts := strings.Split(dim, ":")
	startCol, _, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return 0
	}
	endCol := startCol
	if len(parts) == 2 {
		endCol, _, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return 0
		}
	}
	if endCol < startCol {
		return 0
	}
	return endCol
}

// typedCellValue reads one cell preserving its native type: numbers come
// back as float64, booleans as bool, date cells as RFC 3339 strings, and
// everything else (including formula errors) as the formatted string.
// Missing cells are "".
func typedCellValue(f *excelize.File, sheet string, col, row int) any {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}

	formatted, err := f.GetCellValue(sheet, axis)
	if err != nil {
		return ""
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return formatted
	}

	switch cellType {
	case excelize.CellTypeBool:
		raw, _ := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		return raw == "1" || strings.EqualFold(raw, "true")

	case excelize.CellTypeDate:
		// ISO 8601 cell type (t="d"); the raw value is already ISO-shaped.
		raw, _ := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format(time.RFC3339)
		}
		return raw

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		raw, _ := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if raw == "" {
			return ""
		}
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return formatted
		}
		if isDateStyled(f, sheet, axis) {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Format(time.RFC3339)
			}
		}
		return serial

	default:
		return formatted
	}
}

// builtinDateFormats are the builtin number format IDs that render as
// dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 27: true, 28: true, 29: true, 30: true, 31: true,
	32: true, 33: true, 34: true, 35: true, 36: true, 45: true, 46: true,
	47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

// isDateStyled reports whether a numeric cell's number format renders it
// as a date or time.
func isDateStyled(f *excelize.File, sheet, axis string) bool {
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatIsDate(*style.CustomNumFmt)
	}
	return false
}

// customFormatIsDate scans a custom number format for date/time tokens,
// ignoring quoted literals and bracketed sections.
func customFormatIsDate(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range format {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case !inQuote && !inBracket:
			b.WriteRune(r)
		}
	}
	stripped := strings.ToLower(b.String())
	return strings.ContainsAny(stripped, "ymdh") || strings.Contains(stripped, "ss")
}
