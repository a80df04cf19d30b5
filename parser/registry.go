package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MaxFileSize is the largest file the dispatcher will accept (50 MiB).
const MaxFileSize = 50 * 1024 * 1024

// formatLabels are used in wrapped whole-document error messages.
var formatLabels = map[FileType]string{
	FileTypePDF:        "PDF",
	FileTypeWord:       "Word",
	FileTypeExcel:      "Excel",
	FileTypePowerPoint: "PowerPoint",
}

// extensionTypes is the static extension -> file type table. Dispatch is
// extension-only; content is not sniffed.
var extensionTypes = map[string]FileType{
	"pdf":  FileTypePDF,
	"docx": FileTypeWord,
	"doc":  FileTypeWord,
	"xlsx": FileTypeExcel,
	"xls":  FileTypeExcel,
	"pptx": FileTypePowerPoint,
	"ppt":  FileTypePowerPoint,
}

// Registry maps file extensions to extractors and owns input validation.
type Registry struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// NewRegistry builds a registry with the four built-in extractors plus the
// legacy OLE probe for .doc/.xls/.ppt.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{extractors: make(map[string]Extractor), logger: logger}

	for _, e := range []Extractor{
		&PDFExtractor{},
		&WordExtractor{},
		&ExcelExtractor{},
		&PowerPointExtractor{},
		&LegacyExtractor{},
	} {
		for _, ext := range e.Extensions() {
			r.extractors[ext] = e
		}
	}
	return r
}

// Register installs or replaces the extractor for an extension.
func (r *Registry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))] = e
}

// SupportedExtensions returns all accepted extensions with leading dots,
// sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

// Validate checks the preconditions for parsing, in order: existence,
// regular file, non-zero size, size limit, supported extension. The first
// failing check short-circuits with a specific reason.
func (r *Registry) Validate(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, "File not found"
	}
	if !info.Mode().IsRegular() {
		return false, "Path is not a file"
	}
	if info.Size() == 0 {
		return false, "File is empty"
	}
	if info.Size() > MaxFileSize {
		sizeMB := float64(info.Size()) / (1024 * 1024)
		return false, fmt.Sprintf("File exceeds 50MB limit (%.1fMB)", sizeMB)
	}
	ext := normalizeExt(path)
	if _, ok := extensionTypes[ext]; !ok {
		return false, fmt.Sprintf("Unsupported file type: .%s. Supported: %s",
			ext, strings.Join(r.SupportedExtensions(), ", "))
	}
	return true, "Valid"
}

// Dispatch validates path, routes it to the extractor for its extension and
// returns the resulting Document. It never returns a nil Document and never
// lets an extractor failure escape: whole-document errors and panics are
// folded into the Error field.
func (r *Registry) Dispatch(ctx context.Context, path string, opts Options) *Document {
	filename := filepath.Base(path)

	if ok, reason := r.Validate(path); !ok {
		r.logger.Debug("validation failed", "path", path, "reason", reason)
		return &Document{Filename: filename, Error: reason}
	}

	ext := normalizeExt(path)
	fileType := extensionTypes[ext]
	extractor := r.extractors[ext]
	if extractor == nil {
		return &Document{
			Filename: filename,
			Error:    fmt.Sprintf("No parser available for .%s files", ext),
		}
	}

	start := time.Now()
	doc, err := r.parse(ctx, extractor, path, opts)
	if err != nil {
		r.logger.Warn("extraction failed", "path", path, "file_type", fileType, "error", err)
		return &Document{
			Filename: filename,
			FileType: fileType,
			ParsedAt: time.Now().Format(time.RFC3339),
			Error:    fmt.Sprintf("%s parsing error: %v", formatLabels[fileType], err),
		}
	}

	r.logger.Debug("parsed document",
		"path", path,
		"file_type", fileType,
		"elapsed", time.Since(start),
	)
	return doc
}

// parse invokes the extractor, converting panics from underlying container
// libraries into ordinary errors.
func (r *Registry) parse(ctx context.Context, e Extractor, path string, opts Options) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	return e.Parse(ctx, path, opts)
}

// normalizeExt lower-cases the extension of path and strips the dot.
func normalizeExt(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// newDocument seeds the common envelope fields shared by all extractors.
func newDocument(path string, fileType FileType) *Document {
	return &Document{
		Filename: filepath.Base(path),
		FileType: fileType,
		ParsedAt: time.Now().Format(time.RFC3339),
	}
}
