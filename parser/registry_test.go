package parser

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Validation tests
// ---------------------------------------------------------------------------

func TestValidateMissingFile(t *testing.T) {
	reg := NewRegistry(nil)
	ok, reason := reg.Validate(filepath.Join(t.TempDir(), "nope.pdf"))
	if ok {
		t.Fatal("expected validation failure for missing file")
	}
	if reason != "File not found" {
		t.Errorf("reason = %q, want %q", reason, "File not found")
	}
}

func TestValidateDirectory(t *testing.T) {
	reg := NewRegistry(nil)
	ok, reason := reg.Validate(t.TempDir())
	if ok {
		t.Fatal("expected validation failure for directory")
	}
	if reason != "Path is not a file" {
		t.Errorf("reason = %q, want %q", reason, "Path is not a file")
	}
}

func TestValidateEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	ok, reason := reg.Validate(path)
	if ok {
		t.Fatal("expected validation failure for empty file")
	}
	if reason != "File is empty" {
		t.Errorf("reason = %q, want %q", reason, "File is empty")
	}
}

func TestValidateOversizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// Sparse file: one byte past the limit without writing 50 MiB.
	if err := f.Truncate(MaxFileSize + 1); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	ok, reason := reg.Validate(path)
	if ok {
		t.Fatal("expected validation failure for oversize file")
	}
	if reason != "File exceeds 50MB limit (50.0MB)" {
		t.Errorf("reason = %q, want %q", reason, "File exceeds 50MB limit (50.0MB)")
	}
}

func TestValidateUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	ok, reason := reg.Validate(path)
	if ok {
		t.Fatal("expected validation failure for .txt")
	}
	if !strings.HasPrefix(reason, "Unsupported file type: .txt.") {
		t.Errorf("reason = %q, want unsupported-type message", reason)
	}
	// The reason lists every accepted extension.
	for _, ext := range reg.SupportedExtensions() {
		if !strings.Contains(reason, ext) {
			t.Errorf("reason %q missing supported extension %s", reason, ext)
		}
	}
}

func TestValidateCaseInsensitiveExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "REPORT.PDF")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	ok, reason := reg.Validate(path)
	if !ok {
		t.Fatalf("expected .PDF to validate, got %q", reason)
	}
	if reason != "Valid" {
		t.Errorf("reason = %q, want %q", reason, "Valid")
	}
}

func TestSupportedExtensionsSorted(t *testing.T) {
	reg := NewRegistry(nil)
	exts := reg.SupportedExtensions()

	want := []string{".doc", ".docx", ".pdf", ".ppt", ".pptx", ".xls", ".xlsx"}
	if len(exts) != len(want) {
		t.Fatalf("got %d extensions, want %d: %v", len(exts), len(want), exts)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Errorf("exts[%d] = %q, want %q", i, exts[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Dispatch tests
// ---------------------------------------------------------------------------

func TestDispatchInvalidFileNeverNil(t *testing.T) {
	reg := NewRegistry(nil)
	doc := reg.Dispatch(context.Background(), filepath.Join(t.TempDir(), "gone.docx"), Options{})
	if doc == nil {
		t.Fatal("Dispatch returned nil Document")
	}
	if doc.Error != "File not found" {
		t.Errorf("doc.Error = %q, want %q", doc.Error, "File not found")
	}
	if doc.Filename != "gone.docx" {
		t.Errorf("doc.Filename = %q, want %q", doc.Filename, "gone.docx")
	}
	if doc.PDF != nil || doc.Word != nil || doc.Excel != nil || doc.PowerPoint != nil {
		t.Error("failed dispatch should not populate a body")
	}
}

func TestDispatchCorruptContainer(t *testing.T) {
	// A .docx that is not a ZIP archive fails as a whole document with a
	// format-labeled error, not a panic.
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	doc := reg.Dispatch(context.Background(), path, Options{})
	if doc == nil {
		t.Fatal("Dispatch returned nil Document")
	}
	if !strings.HasPrefix(doc.Error, "Word parsing error: ") {
		t.Errorf("doc.Error = %q, want Word parsing error prefix", doc.Error)
	}
	if doc.FileType != FileTypeWord {
		t.Errorf("doc.FileType = %q, want %q", doc.FileType, FileTypeWord)
	}
	if doc.ParsedAt == "" {
		t.Error("ParsedAt should be set even on failure")
	}
}

type panicExtractor struct{}

func (p *panicExtractor) Extensions() []string { return []string{"pdf"} }
func (p *panicExtractor) Parse(ctx context.Context, path string, opts Options) (*Document, error) {
	panic("boom")
}

func TestDispatchRecoversPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomb.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	reg.Register("pdf", &panicExtractor{})

	doc := reg.Dispatch(context.Background(), path, Options{})
	if doc == nil {
		t.Fatal("Dispatch returned nil Document after panic")
	}
	if doc.Error != "PDF parsing error: boom" {
		t.Errorf("doc.Error = %q, want %q", doc.Error, "PDF parsing error: boom")
	}
}

func TestDispatchSameFileDifferentExtensions(t *testing.T) {
	// Routing is extension-only: identical bytes go to different
	// extractors depending on the name.
	dir := t.TempDir()
	content := []byte("not a real document")

	cases := []struct {
		name     string
		fileType FileType
		label    string
	}{
		{"a.pdf", FileTypePDF, "PDF"},
		{"a.docx", FileTypeWord, "Word"},
		{"a.xlsx", FileTypeExcel, "Excel"},
		{"a.pptx", FileTypePowerPoint, "PowerPoint"},
	}

	reg := NewRegistry(nil)
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, content, 0o644); err != nil {
				t.Fatal(err)
			}
			doc := reg.Dispatch(context.Background(), path, Options{})
			if doc.FileType != tt.fileType {
				t.Errorf("FileType = %q, want %q", doc.FileType, tt.fileType)
			}
			if !strings.HasPrefix(doc.Error, tt.label+" parsing error: ") {
				t.Errorf("Error = %q, want %s prefix", doc.Error, tt.label)
			}
		})
	}
}

func TestDispatchIdempotent(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document ` + docxNS + `>
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading 1"/></w:pPr>
      <w:r><w:t>Stable heading</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Stable body text.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	path := writeZipFixture(t, "stable.docx", map[string]string{
		"word/document.xml": docXML,
	})

	reg := NewRegistry(nil)
	first := reg.Dispatch(context.Background(), path, Options{})
	second := reg.Dispatch(context.Background(), path, Options{})

	// Same input, same record, apart from the parse timestamp.
	first.ParsedAt, second.ParsedAt = "", ""
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parses differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
