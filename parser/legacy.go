package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// oleSignature is the compound file binary header all legacy Office
// formats (.doc/.xls/.ppt) share.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// legacyModernExt maps a legacy extension to its OOXML successor, used in
// conversion hints and misnamed-file messages.
var legacyModernExt = map[string]string{
	"doc": "docx",
	"xls": "xlsx",
	"ppt": "pptx",
}

// LegacyExtractor handles pre-2007 Office binaries. Full content extraction
// is not supported for these formats; the extractor probes the compound
// file container, surfaces summary metadata where present, and reports a
// conversion hint. Modern files renamed to a legacy extension get a
// specific message instead of a generic failure.
type LegacyExtractor struct{}

func (e *LegacyExtractor) Extensions() []string { return []string{"doc", "xls", "ppt"} }

func (e *LegacyExtractor) Parse(ctx context.Context, path string, opts Options) (*Document, error) {
	ext := normalizeExt(path)
	fileType := extensionTypes[ext]
	doc := newDocument(path, fileType)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, _ := f.Read(header)
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, []byte("PK")):
		doc.Error = fmt.Sprintf(
			"File has a .%s extension but contains a modern Office document. Rename it to .%s and retry.",
			ext, legacyModernExt[ext])
		return doc, nil
	case bytes.HasPrefix(header, []byte("%PDF")):
		doc.Error = fmt.Sprintf(
			"File has a .%s extension but contains a PDF document. Rename it to .pdf and retry.", ext)
		return doc, nil
	case !bytes.HasPrefix(header, oleSignature):
		doc.Error = fmt.Sprintf("File is not a valid legacy Office document (.%s)", ext)
		return doc, nil
	}

	title, author := readSummaryInformation(f)

	hint := fmt.Sprintf(
		"Legacy .%s format is not supported for content extraction. Convert the file to .%s and retry.",
		ext, legacyModernExt[ext])
	if title != "" || author != "" {
		var parts []string
		if title != "" {
			parts = append(parts, "title: "+title)
		}
		if author != "" {
			parts = append(parts, "author: "+author)
		}
		hint += " (" + strings.Join(parts, ", ") + ")"
	}
	doc.Error = hint
	return doc, nil
}

// readSummaryInformation walks the compound file for the standard
// SummaryInformation property stream and pulls title and author from it.
// Any failure yields empty strings.
func readSummaryInformation(f *os.File) (title, author string) {
	cfb, err := mscfb.New(f)
	if err != nil {
		return "", ""
	}
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		if !strings.Contains(entry.Name, "SummaryInformation") ||
			strings.Contains(entry.Name, "DocumentSummaryInformation") {
			continue
		}
		props := msoleps.New()
		if err := props.Reset(entry); err != nil {
			return "", ""
		}
		for _, p := range props.Property {
			switch p.Name {
			case "Title":
				title = p.String()
			case "Author":
				author = p.String()
			}
		}
		return title, author
	}
	return "", ""
}
