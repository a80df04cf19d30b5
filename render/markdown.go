package render

import (
	"fmt"
	"strings"

	"github.com/cpsullivan/file-parser-agent/parser"
)

// excelDisplayRows caps how many rows of a sheet the Markdown rendering
// shows; full data stays available in the JSON form.
const excelDisplayRows = 50

// Markdown renders doc as a human-readable Markdown report. Heading
// styles from Word documents map onto Markdown heading levels here, not
// in the parsing layer.
func Markdown(doc *parser.Document) string {
	var b mdBuilder

	filename := doc.Filename
	if filename == "" {
		filename = "Document"
	}
	b.line("# " + filename)
	b.line("")
	b.line(fmt.Sprintf("**File Type:** %s", doc.FileType))
	b.line(fmt.Sprintf("**Parsed:** %s", doc.ParsedAt))
	if doc.Error != "" {
		b.line(fmt.Sprintf("**Error:** %s", doc.Error))
	}
	b.line("")
	b.line("---")
	b.line("")

	switch {
	case doc.PDF != nil:
		b.pdf(doc.PDF)
	case doc.Word != nil:
		b.word(doc.Word)
	case doc.Excel != nil:
		b.excel(doc.Excel)
	case doc.PowerPoint != nil:
		b.powerpoint(doc.PowerPoint)
	}

	return b.String()
}

type mdBuilder struct {
	strings.Builder
}

func (b *mdBuilder) line(s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func (b *mdBuilder) metadataList(pairs [][2]string) {
	any := false
	for _, p := range pairs {
		if p[1] != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}
	b.line("")
	b.line("## Metadata")
	b.line("")
	for _, p := range pairs {
		if p[1] != "" {
			b.line(fmt.Sprintf("- **%s:** %s", p[0], p[1]))
		}
	}
}

func (b *mdBuilder) pdf(body *parser.PDFBody) {
	b.line(fmt.Sprintf("**Total Pages:** %d", body.TotalPages))
	b.metadataList([][2]string{
		{"Title", body.Metadata.Title},
		{"Author", body.Metadata.Author},
		{"Subject", body.Metadata.Subject},
		{"Creator", body.Metadata.Creator},
	})
	b.line("")

	for _, page := range body.Pages {
		b.line(fmt.Sprintf("## Page %d", page.PageNumber))
		b.line(fmt.Sprintf("*%d characters*", page.CharCount))
		b.line("")
		if strings.TrimSpace(page.Text) != "" {
			b.line(page.Text)
		} else {
			b.line("*[No text content]*")
		}
		b.line("")
	}
}

func (b *mdBuilder) word(body *parser.WordBody) {
	b.line(fmt.Sprintf("**Paragraphs:** %d", body.TotalParagraphs))
	b.line(fmt.Sprintf("**Tables:** %d", body.TotalTables))
	b.line(fmt.Sprintf("**Images:** %d", body.ImageCount))
	b.metadataList([][2]string{
		{"Title", body.Metadata.Title},
		{"Author", body.Metadata.Author},
		{"Subject", body.Metadata.Subject},
		{"Created", body.Metadata.Created},
		{"Modified", body.Metadata.Modified},
	})
	b.line("")

	if len(body.Paragraphs) > 0 {
		b.line("## Content")
		b.line("")
		for _, para := range body.Paragraphs {
			switch {
			case strings.Contains(para.Style, "Heading 1"):
				b.line("### " + para.Text)
			case strings.Contains(para.Style, "Heading 2"):
				b.line("#### " + para.Text)
			case strings.Contains(para.Style, "Heading"):
				b.line("##### " + para.Text)
			default:
				b.line(para.Text)
			}
			b.line("")
		}
	}

	if len(body.Tables) > 0 {
		b.line("## Tables")
		b.line("")
		for _, table := range body.Tables {
			b.line(fmt.Sprintf("### Table %d", table.TableNumber))
			b.line(fmt.Sprintf("*%d rows × %d columns*", table.Rows, table.Columns))
			b.line("")
			b.table(stringGrid(table.Data))
			b.line("")
		}
	}
}

func (b *mdBuilder) excel(body *parser.ExcelBody) {
	b.line(fmt.Sprintf("**Total Sheets:** %d", body.Metadata.TotalSheets))
	if len(body.Metadata.SheetNames) > 0 {
		b.line(fmt.Sprintf("**Sheet Names:** %s", strings.Join(body.Metadata.SheetNames, ", ")))
	}
	b.line("")

	for _, sheet := range body.Sheets {
		b.line("## " + sheet.Name)
		b.line(fmt.Sprintf("*%d rows × %d columns*", sheet.Rows, sheet.Columns))
		b.line("")

		if len(sheet.Data) == 0 {
			b.line("*[Empty sheet]*")
			b.line("")
			continue
		}

		display := sheet.Data
		if len(display) > excelDisplayRows {
			display = display[:excelDisplayRows]
		}
		b.table(anyGrid(display))
		if len(sheet.Data) > excelDisplayRows {
			b.line(fmt.Sprintf("*...and %d more rows*", len(sheet.Data)-excelDisplayRows))
		}
		b.line("")
	}
}

func (b *mdBuilder) powerpoint(body *parser.PowerPointBody) {
	b.line(fmt.Sprintf("**Total Slides:** %d", body.Metadata.TotalSlides))
	switch {
	case body.AIVisionEnabled && body.AIVisionAvailable:
		analyzed, total := 0, 0
		if body.AIAnalysisSummary != nil {
			analyzed = body.AIAnalysisSummary.ImagesAnalyzed
			total = body.AIAnalysisSummary.ImagesTotal
		}
		b.line(fmt.Sprintf("**AI Vision:** Enabled (%d/%d images analyzed)", analyzed, total))
	case body.AIVisionEnabled:
		b.line("**AI Vision:** Enabled but not configured")
	default:
		b.line("**AI Vision:** Disabled")
	}
	b.line("")

	for _, slide := range body.Slides {
		title := slide.Title
		if title == "" {
			title = "Untitled"
		}
		b.line(fmt.Sprintf("## Slide %d: %s", slide.SlideNumber, title))
		b.line("")

		var counts []string
		if slide.ImageCount > 0 {
			counts = append(counts, fmt.Sprintf("%d image(s)", slide.ImageCount))
		}
		if slide.ChartCount > 0 {
			counts = append(counts, fmt.Sprintf("%d chart(s)", slide.ChartCount))
		}
		if slide.TableCount > 0 {
			counts = append(counts, fmt.Sprintf("%d table(s)", slide.TableCount))
		}
		if len(counts) > 0 {
			b.line(fmt.Sprintf("*Contains: %s*", strings.Join(counts, ", ")))
			b.line("")
		}

		if text := strings.TrimSpace(slide.Text); text != "" {
			b.line("### Content")
			b.line("")
			b.line(text)
			b.line("")
		}

		b.slideShapes(slide.Shapes)

		if notes := strings.TrimSpace(slide.Notes); notes != "" {
			b.line("### Speaker Notes")
			b.line("")
			b.line("> " + notes)
			b.line("")
		}
	}
}

// slideShapes renders AI-described images as quoted analysis blocks and
// the remaining visual elements as a plain list.
func (b *mdBuilder) slideShapes(shapes []parser.Shape) {
	analyzed := make(map[int]bool)
	var analyzedIdx []int
	for i, s := range shapes {
		if s.ContentType != parser.ContentImage || s.AIAnalysis == nil {
			continue
		}
		enabled, _ := s.AIAnalysis["enabled"].(bool)
		desc, _ := s.AIAnalysis["description"].(string)
		if enabled && desc != "" {
			analyzed[i] = true
			analyzedIdx = append(analyzedIdx, i)
		}
	}

	if len(analyzedIdx) > 0 {
		b.line("### Image Analysis (AI)")
		b.line("")
		for n, i := range analyzedIdx {
			desc, _ := shapes[i].AIAnalysis["description"].(string)
			b.line(fmt.Sprintf("**Image %d:**", n+1))
			b.line("> " + desc)
			b.line("")
		}
	}

	var visuals []parser.Shape
	for i, s := range shapes {
		if analyzed[i] || s.Description == "" {
			continue
		}
		switch s.ContentType {
		case parser.ContentImage, parser.ContentChart, parser.ContentTable, parser.ContentEmbeddedObject:
			visuals = append(visuals, s)
		}
	}
	if len(visuals) > 0 {
		b.line("### Visual Elements")
		b.line("")
		for _, s := range visuals {
			b.line(fmt.Sprintf("- **%s:** %s", titleCase(string(s.ContentType)), s.Description))
		}
		b.line("")
	}
}

// table writes a Markdown table; the first row is treated as the header.
func (b *mdBuilder) table(grid [][]string) {
	columns := 0
	for _, row := range grid {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		b.line("*[Empty table]*")
		return
	}

	writeRow := func(row []string) {
		cells := make([]string, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				cells[i] = strings.ReplaceAll(row[i], "|", `\|`)
			}
		}
		b.line("| " + strings.Join(cells, " | ") + " |")
	}

	writeRow(grid[0])
	sep := make([]string, columns)
	for i := range sep {
		sep[i] = "---"
	}
	b.line("| " + strings.Join(sep, " | ") + " |")
	for _, row := range grid[1:] {
		writeRow(row)
	}
}

func stringGrid(data [][]string) [][]string { return data }

func anyGrid(data [][]any) [][]string {
	grid := make([][]string, len(data))
	for i, row := range data {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		grid[i] = cells
	}
	return grid
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
