// Package render converts parse results into output formats: JSON for
// machine consumption, Markdown for reading, CSV for tabular data.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/cpsullivan/file-parser-agent/parser"
)

// Format identifies an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Extensions maps a format to its file extension.
var Extensions = map[Format]string{
	FormatJSON:     ".json",
	FormatMarkdown: ".md",
	FormatCSV:      ".csv",
}

// Render serializes doc in the requested format.
func Render(doc *parser.Document, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(doc, true)
	case FormatMarkdown:
		return Markdown(doc), nil
	case FormatCSV:
		return CSV(doc), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// JSON serializes doc, optionally indented.
func JSON(doc *parser.Document, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(data), nil
}
