package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// pageErrorSentinel replaces the text of pages whose extraction failed.
// Page failures never abort the document.
const pageErrorSentinel = "[Error extracting text from this page]"

// PDFExtractor reads PDF containers with page-granularity fault isolation:
// a broken page yields sentinel text, the rest of the document survives.
type PDFExtractor struct{}

func (e *PDFExtractor) Extensions() []string { return []string{"pdf"} }

func (e *PDFExtractor) Parse(ctx context.Context, path string, opts Options) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	doc := newDocument(path, FileTypePDF)
	body := &PDFBody{
		Metadata: readPDFInfo(reader),
	}

	totalPages := reader.NumPage()
	body.TotalPages = totalPages
	body.Pages = make([]Page, 0, totalPages)

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := extractPageText(reader, i)
		body.Pages = append(body.Pages, Page{
			PageNumber: i,
			Text:       text,
			CharCount:  utf8.RuneCountInString(text),
		})
	}

	doc.PDF = body
	return doc, nil
}

// extractPageText returns the trimmed plain text of one page, or the error
// sentinel. The pdf library panics on some malformed content streams, so
// page extraction is isolated behind a recover.
func extractPageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = pageErrorSentinel
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	s, err := page.GetPlainText(nil)
	if err != nil {
		return pageErrorSentinel
	}
	return strings.TrimSpace(s)
}

// readPDFInfo pulls title/author/subject/creator from the trailer Info
// dictionary. Missing or malformed entries become empty strings.
func readPDFInfo(reader *pdf.Reader) (meta PDFMetadata) {
	defer func() {
		// A corrupt Info dictionary should not fail the document.
		_ = recover()
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = infoString(info, "Title")
	meta.Author = infoString(info, "Author")
	meta.Subject = infoString(info, "Subject")
	meta.Creator = infoString(info, "Creator")
	return meta
}

func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return v.Text()
}
