package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/cpsullivan/file-parser-agent/parser"
)

func wordDoc() *parser.Document {
	return &parser.Document{
		Filename: "report.docx",
		FileType: parser.FileTypeWord,
		ParsedAt: "2026-08-29T10:00:00Z",
		Word: &parser.WordBody{
			TotalParagraphs: 4,
			TotalTables:     1,
			Metadata:        parser.WordMetadata{Title: "Q2 Report", Author: "J. Doe"},
			Paragraphs: []parser.Paragraph{
				{Text: "Overview", Style: "Heading 1"},
				{Text: "Details", Style: "Heading 2"},
				{Text: "Fine print", Style: "Heading 4"},
				{Text: "Plain body text.", Style: "Normal"},
			},
			Tables: []parser.Table{
				{
					TableNumber: 1,
					Rows:        2,
					Columns:     2,
					Data: [][]string{
						{"Name", "Notes | Caveats"},
						{"alpha", "fine"},
					},
				},
			},
		},
	}
}

func TestMarkdownWordHeadings(t *testing.T) {
	out := Markdown(wordDoc())

	if !strings.HasPrefix(out, "# report.docx\n") {
		t.Errorf("missing document header: %q", out[:40])
	}
	for _, want := range []string{
		"### Overview",
		"#### Details",
		"##### Fine print",
		"Plain body text.",
		"- **Title:** Q2 Report",
		"- **Author:** J. Doe",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "# Plain body text.") {
		t.Error("plain paragraph rendered as heading")
	}
}

func TestMarkdownTableEscapesPipes(t *testing.T) {
	out := Markdown(wordDoc())

	if !strings.Contains(out, `Notes \| Caveats`) {
		t.Errorf("pipe not escaped in table cell:\n%s", out)
	}
	if !strings.Contains(out, "| Name |") {
		t.Error("first row should render as table header")
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Error("missing header separator row")
	}
}

func TestMarkdownExcelRowCap(t *testing.T) {
	data := make([][]any, 60)
	for i := range data {
		data[i] = []any{fmt.Sprintf("row%d", i), float64(i)}
	}
	doc := &parser.Document{
		Filename: "big.xlsx",
		FileType: parser.FileTypeExcel,
		Excel: &parser.ExcelBody{
			Metadata: parser.ExcelMetadata{TotalSheets: 1, SheetNames: []string{"Data"}},
			Sheets:   []parser.Sheet{{Name: "Data", Rows: 60, Columns: 2, Data: data}},
		},
	}

	out := Markdown(doc)
	if !strings.Contains(out, "*...and 10 more rows*") {
		t.Error("row cap note missing")
	}
	if strings.Contains(out, "row55") {
		t.Error("rows past the cap should not render")
	}
	if !strings.Contains(out, "row49") {
		t.Error("rows inside the cap should render")
	}
	// Float cells lose trailing zeros.
	if !strings.Contains(out, "| row7 | 7 |") {
		t.Errorf("numeric cell formatting:\n%s", out)
	}
}

func TestMarkdownPowerPointVisionStates(t *testing.T) {
	base := func() *parser.Document {
		return &parser.Document{
			Filename: "deck.pptx",
			FileType: parser.FileTypePowerPoint,
			PowerPoint: &parser.PowerPointBody{
				Metadata: parser.PowerPointMetadata{TotalSlides: 1},
				Slides:   []parser.Slide{{SlideNumber: 1, Title: "Intro"}},
			},
		}
	}

	doc := base()
	out := Markdown(doc)
	if !strings.Contains(out, "**AI Vision:** Disabled") {
		t.Error("disabled state missing")
	}

	doc = base()
	doc.PowerPoint.AIVisionEnabled = true
	out = Markdown(doc)
	if !strings.Contains(out, "**AI Vision:** Enabled but not configured") {
		t.Error("enabled-but-unavailable state missing")
	}

	doc = base()
	doc.PowerPoint.AIVisionEnabled = true
	doc.PowerPoint.AIVisionAvailable = true
	doc.PowerPoint.AIAnalysisSummary = &parser.AIAnalysisSummary{ImagesTotal: 3, ImagesAnalyzed: 2}
	out = Markdown(doc)
	if !strings.Contains(out, "**AI Vision:** Enabled (2/3 images analyzed)") {
		t.Error("analyzed-count state missing")
	}
}

func TestMarkdownSlideShapes(t *testing.T) {
	doc := &parser.Document{
		Filename: "deck.pptx",
		FileType: parser.FileTypePowerPoint,
		PowerPoint: &parser.PowerPointBody{
			Metadata: parser.PowerPointMetadata{TotalSlides: 1},
			Slides: []parser.Slide{{
				SlideNumber: 1,
				ImageCount:  2,
				ChartCount:  1,
				Notes:       "Mention the Q3 numbers",
				Shapes: []parser.Shape{
					{
						ContentType: parser.ContentImage,
						Description: "A growth chart with three bars",
						AIAnalysis: map[string]any{
							"enabled":     true,
							"description": "A growth chart with three bars",
						},
					},
					{
						ContentType: parser.ContentImage,
						Description: "Image (png, 2048 bytes)",
					},
					{
						ContentType: parser.ContentChart,
						Description: "Chart (pieChart)",
					},
				},
			}},
		},
	}

	out := Markdown(doc)
	if !strings.Contains(out, "### Image Analysis (AI)") {
		t.Error("AI analysis section missing")
	}
	if !strings.Contains(out, "> A growth chart with three bars") {
		t.Error("analyzed description not quoted")
	}
	if !strings.Contains(out, "### Visual Elements") {
		t.Error("visual elements section missing")
	}
	if !strings.Contains(out, "- **Image:** Image (png, 2048 bytes)") {
		t.Error("unanalyzed image not listed")
	}
	if !strings.Contains(out, "- **Chart:** Chart (pieChart)") {
		t.Error("chart not listed")
	}
	if !strings.Contains(out, "## Slide 1: Untitled") {
		t.Error("untitled slide heading missing")
	}
	if !strings.Contains(out, "*Contains: 2 image(s), 1 chart(s)*") {
		t.Error("content counts line missing")
	}
	if !strings.Contains(out, "> Mention the Q3 numbers") {
		t.Error("speaker notes not quoted")
	}
}

func TestMarkdownErrorDocument(t *testing.T) {
	doc := &parser.Document{
		Filename: "broken.pdf",
		FileType: parser.FileTypePDF,
		ParsedAt: "2026-08-29T10:00:00Z",
		Error:    "PDF parsing error: malformed xref",
	}
	out := Markdown(doc)
	if !strings.Contains(out, "**Error:** PDF parsing error: malformed xref") {
		t.Errorf("error line missing:\n%s", out)
	}
}

func TestCSVFirstSheet(t *testing.T) {
	doc := &parser.Document{
		Excel: &parser.ExcelBody{
			Sheets: []parser.Sheet{
				{Name: "A", Data: [][]any{{"x", float64(1.5)}, {"y, z", true}}},
				{Name: "B", Data: [][]any{{"ignored"}}},
			},
		},
	}

	out := CSV(doc)
	want := "x,1.5\n\"y, z\",true\n"
	if out != want {
		t.Errorf("CSV = %q, want %q", out, want)
	}
}

func TestCSVFirstWordTable(t *testing.T) {
	doc := wordDoc()
	out := CSV(doc)
	if !strings.HasPrefix(out, "Name,Notes | Caveats\n") {
		t.Errorf("CSV = %q", out)
	}
}

func TestCSVNoTabularData(t *testing.T) {
	doc := &parser.Document{PDF: &parser.PDFBody{TotalPages: 1}}
	if out := CSV(doc); out != "" {
		t.Errorf("CSV = %q, want empty", out)
	}
}

func TestRenderFormats(t *testing.T) {
	doc := wordDoc()

	out, err := Render(doc, FormatJSON)
	if err != nil {
		t.Fatalf("JSON render: %v", err)
	}
	var decoded parser.Document
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("JSON output does not decode: %v", err)
	}
	if decoded.Filename != "report.docx" {
		t.Errorf("round-tripped filename = %q", decoded.Filename)
	}

	if _, err := Render(doc, Format("yaml")); err == nil {
		t.Error("unknown format should error")
	}
}
