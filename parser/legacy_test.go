package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBytes(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLegacyOLEFile(t *testing.T) {
	// A bare OLE header with no directory is enough to hit the conversion
	// hint; metadata extraction fails quietly.
	path := writeBytes(t, "memo.doc", append(oleSignature, make([]byte, 512)...))

	doc, err := (&LegacyExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := "Legacy .doc format is not supported for content extraction. Convert the file to .docx and retry."
	if doc.Error != want {
		t.Errorf("doc.Error = %q, want %q", doc.Error, want)
	}
	if doc.FileType != FileTypeWord {
		t.Errorf("FileType = %q, want word", doc.FileType)
	}
}

func TestLegacyMisnamedModernFile(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"report.doc", "File has a .doc extension but contains a modern Office document. Rename it to .docx and retry."},
		{"data.xls", "File has a .xls extension but contains a modern Office document. Rename it to .xlsx and retry."},
		{"deck.ppt", "File has a .ppt extension but contains a modern Office document. Rename it to .pptx and retry."},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBytes(t, tt.name, []byte("PK\x03\x04 zip payload"))
			doc, err := (&LegacyExtractor{}).Parse(context.Background(), path, Options{})
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if doc.Error != tt.want {
				t.Errorf("doc.Error = %q, want %q", doc.Error, tt.want)
			}
		})
	}
}

func TestLegacyMisnamedPDF(t *testing.T) {
	path := writeBytes(t, "scan.xls", []byte("%PDF-1.7 payload"))

	doc, err := (&LegacyExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := "File has a .xls extension but contains a PDF document. Rename it to .pdf and retry."
	if doc.Error != want {
		t.Errorf("doc.Error = %q, want %q", doc.Error, want)
	}
}

func TestLegacyGarbageFile(t *testing.T) {
	path := writeBytes(t, "junk.ppt", []byte("random bytes, no known signature"))

	doc, err := (&LegacyExtractor{}).Parse(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Error != "File is not a valid legacy Office document (.ppt)" {
		t.Errorf("doc.Error = %q", doc.Error)
	}
}

func TestLegacyDispatch(t *testing.T) {
	// Legacy formats flow through the registry like any other extension.
	path := writeBytes(t, "old.xls", append(oleSignature, make([]byte, 64)...))

	reg := NewRegistry(nil)
	doc := reg.Dispatch(context.Background(), path, Options{})
	if doc.FileType != FileTypeExcel {
		t.Errorf("FileType = %q, want excel", doc.FileType)
	}
	if !strings.Contains(doc.Error, "Convert the file to .xlsx") {
		t.Errorf("doc.Error = %q, want conversion hint", doc.Error)
	}
}
