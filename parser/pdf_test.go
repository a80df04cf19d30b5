package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

// buildTestPDF assembles a one-page PDF with a computed xref table. The page
// draws a single line of Helvetica text (WinAnsi encoded); info holds title
// and author when withInfo is set.
func buildTestPDF(t *testing.T, withInfo bool, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 7)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	writeObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	objCount := 6
	if withInfo {
		writeObj(6, "<< /Title (Parser Fixture) /Author (QA) /Subject (Testing) >>")
		objCount = 7
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < objCount; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}

	trailer := fmt.Sprintf("/Size %d /Root 1 0 R", objCount)
	if withInfo {
		trailer += " /Info 6 0 R"
	}
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xrefPos)
	return buf.Bytes()
}

func writeTestPDF(t *testing.T, withInfo bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, buildTestPDF(t, withInfo, "Hello parser"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPDFSinglePage(t *testing.T) {
	path := writeTestPDF(t, true)

	doc, err := (&PDFExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	body := doc.PDF
	if body == nil {
		t.Fatal("PDF body not populated")
	}
	if body.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want 1", body.TotalPages)
	}
	page := body.Pages[0]
	if page.PageNumber != 1 {
		t.Errorf("PageNumber = %d, want 1", page.PageNumber)
	}
	if !strings.Contains(page.Text, "Hello") {
		t.Errorf("page text = %q, want it to contain %q", page.Text, "Hello")
	}
	if page.CharCount != utf8.RuneCountInString(page.Text) {
		t.Errorf("CharCount = %d, want %d", page.CharCount, utf8.RuneCountInString(page.Text))
	}
}

func TestPDFCharCountCountsRunes(t *testing.T) {
	// WinAnsi byte 0xE9 decodes to a 2-byte rune, so a byte-based count
	// would over-report.
	path := filepath.Join(t.TempDir(), "latin.pdf")
	if err := os.WriteFile(path, buildTestPDF(t, false, "caf\xe9 menu"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := (&PDFExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	page := doc.PDF.Pages[0]
	if !strings.Contains(page.Text, "café") {
		t.Fatalf("page text = %q, want it to contain %q", page.Text, "café")
	}
	if page.CharCount != utf8.RuneCountInString(page.Text) {
		t.Errorf("CharCount = %d, want %d", page.CharCount, utf8.RuneCountInString(page.Text))
	}
	if page.CharCount >= len(page.Text) {
		t.Errorf("CharCount = %d not below byte length %d for multibyte text",
			page.CharCount, len(page.Text))
	}
}

func TestPDFMetadata(t *testing.T) {
	path := writeTestPDF(t, true)

	doc, err := (&PDFExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	meta := doc.PDF.Metadata
	if meta.Title != "Parser Fixture" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Author != "QA" {
		t.Errorf("Author = %q", meta.Author)
	}
	if meta.Subject != "Testing" {
		t.Errorf("Subject = %q", meta.Subject)
	}
}

func TestPDFNoInfoDictionary(t *testing.T) {
	path := writeTestPDF(t, false)

	doc, err := (&PDFExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if meta := doc.PDF.Metadata; meta != (PDFMetadata{}) {
		t.Errorf("metadata = %+v, want zero value", meta)
	}
}

func TestPDFCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (&PDFExtractor{}).Parse(context.Background(), path, Options{}); err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
}
