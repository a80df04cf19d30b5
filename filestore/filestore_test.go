package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "uploads"), filepath.Join(dir, "outputs"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("Quarterly Report.docx", []byte("content"))
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "Quarterly Report_") || !strings.HasSuffix(name, ".docx") {
		t.Errorf("spool name = %q, want original base and extension preserved", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Errorf("stored content = %q", data)
	}

	// Two uploads of the same name never collide.
	other, err := s.SaveUpload("Quarterly Report.docx", []byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	if other == path {
		t.Error("duplicate upload reused the same path")
	}
}

func TestCleanupUpload(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("doc.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CleanupUpload(path); err != nil {
		t.Fatalf("CleanupUpload: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("upload still exists after cleanup")
	}
}

func TestCleanupUploadRefusesOutsidePaths(t *testing.T) {
	s := newTestStore(t)

	victim := filepath.Join(t.TempDir(), "precious.txt")
	if err := os.WriteFile(victim, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.CleanupUpload(victim); err == nil {
		t.Fatal("expected refusal for path outside upload dir")
	}
	if _, err := os.Stat(victim); err != nil {
		t.Error("file outside upload dir was removed")
	}
}

func TestSaveOutputCollisionCounter(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveOutput("one", "report.docx", ".json")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveOutput("two", "report.docx", "json")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(first, "report_") || !strings.HasSuffix(first, ".json") {
		t.Errorf("first output name = %q", first)
	}
	if first == second {
		t.Fatalf("same-second outputs collided: %q", first)
	}
	// Within the same second the second file carries a counter suffix.
	if strings.TrimSuffix(second, ".json") == strings.TrimSuffix(first, ".json") {
		t.Errorf("names = %q / %q", first, second)
	}

	content, err := s.ReadOutput(second)
	if err != nil {
		t.Fatal(err)
	}
	if content != "two" {
		t.Errorf("second output content = %q", content)
	}
}

func TestListOutputs(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveOutput("a", "one.pdf", "json"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveOutput("bb", "two.pdf", "md"); err != nil {
		t.Fatal(err)
	}

	outputs, err := s.ListOutputs()
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(outputs))
	}
	for _, o := range outputs {
		if o.Size == 0 || o.SizeHuman == "" || o.Modified == "" {
			t.Errorf("incomplete output info: %+v", o)
		}
	}
	if outputs[0].Modified < outputs[1].Modified {
		t.Error("outputs not sorted newest first")
	}
}

func TestOutputNameSanitization(t *testing.T) {
	s := newTestStore(t)

	name, err := s.SaveOutput("data", "safe.xlsx", "csv")
	if err != nil {
		t.Fatal(err)
	}

	// Traversal attempts collapse to the base name.
	content, err := s.ReadOutput("../../" + name)
	if err != nil {
		t.Fatalf("ReadOutput with traversal prefix: %v", err)
	}
	if content != "data" {
		t.Errorf("content = %q", content)
	}

	if _, ok := s.OutputPath("../" + name); !ok {
		t.Error("OutputPath should resolve the base name")
	}
	if _, ok := s.OutputPath("missing.json"); ok {
		t.Error("OutputPath should report missing files")
	}

	if err := s.DeleteOutput("nested/dir/" + name); err != nil {
		t.Fatalf("DeleteOutput: %v", err)
	}
	if _, ok := s.OutputPath(name); ok {
		t.Error("output still present after delete")
	}
}

func TestClearOutputs(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.SaveOutput("x", "doc.pdf", "json"); err != nil {
			t.Fatal(err)
		}
	}

	count, err := s.ClearOutputs()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("cleared %d, want 3", count)
	}
	outputs, err := s.ListOutputs()
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 0 {
		t.Errorf("%d outputs remain after clear", len(outputs))
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range cases {
		if got := humanSize(tt.size); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
