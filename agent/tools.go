package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/parser"
	"github.com/cpsullivan/file-parser-agent/render"
	"github.com/cpsullivan/file-parser-agent/vision"
)

// toolDefinitions declares the tools exposed to the model.
func (a *Agent) toolDefinitions() []anthropic.ToolUnionParam {
	tool := func(name, description string, properties map[string]any) anthropic.ToolUnionParam {
		return anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        name,
				Description: anthropic.String(description),
				InputSchema: anthropic.ToolInputSchemaParam{Properties: properties},
			},
		}
	}

	return []anthropic.ToolUnionParam{
		tool("parse_document",
			"Parse a document file and extract structured content. Handles PDF, Word, Excel, and PowerPoint files. Returns structured data with text, tables, images, and metadata.",
			map[string]any{
				"path": map[string]any{
					"type": "string", "description": "Path to the document file",
				},
				"enable_ai_vision": map[string]any{
					"type": "boolean", "description": "Describe PowerPoint images with AI vision",
				},
				"output_format": map[string]any{
					"type": "string", "enum": []string{"json", "markdown"},
					"description": "Result format, default json",
				},
			}),
		tool("extract_tables",
			"Extract only table data from a document.",
			map[string]any{
				"path": map[string]any{
					"type": "string", "description": "Path to the document file",
				},
				"output_format": map[string]any{
					"type": "string", "enum": []string{"json", "csv"},
					"description": "Table format, default json",
				},
			}),
		tool("summarize_document",
			"Generate a summary of a document's content.",
			map[string]any{
				"path": map[string]any{
					"type": "string", "description": "Path to the document file",
				},
				"summary_length": map[string]any{
					"type": "string", "enum": []string{"brief", "standard", "detailed"},
					"description": "Summary detail level, default standard",
				},
			}),
		tool("analyze_image",
			"Analyze an image file using AI vision. Returns a detailed description of image content.",
			map[string]any{
				"path": map[string]any{
					"type": "string", "description": "Path to the image file",
				},
				"analysis_type": map[string]any{
					"type": "string", "enum": []string{"general", "chart", "diagram", "screenshot"},
					"description": "Analysis style, default general",
				},
				"context": map[string]any{
					"type": "string", "description": "Optional context about the image",
				},
			}),
		tool("save_output",
			"Save content as a downloadable output file.",
			map[string]any{
				"content": map[string]any{
					"type": "string", "description": "Content to write",
				},
				"filename": map[string]any{
					"type": "string", "description": "Original document filename, used for naming",
				},
				"format": map[string]any{
					"type": "string", "enum": []string{"json", "md", "csv", "txt"},
					"description": "Output file extension",
				},
			}),
		tool("list_supported_formats",
			"List the file formats the parser accepts.",
			map[string]any{}),
	}
}

// callTool dispatches one tool invocation. Returned strings are JSON
// payloads unless the tool produces a rendered text format.
func (a *Agent) callTool(ctx context.Context, name string, input []byte) (string, error) {
	switch name {
	case "parse_document":
		return a.toolParseDocument(ctx, input)
	case "extract_tables":
		return a.toolExtractTables(ctx, input)
	case "summarize_document":
		return a.toolSummarizeDocument(ctx, input)
	case "analyze_image":
		return a.toolAnalyzeImage(ctx, input)
	case "save_output":
		return a.toolSaveOutput(input)
	case "list_supported_formats":
		return a.toolListFormats()
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (a *Agent) toolParseDocument(ctx context.Context, input []byte) (string, error) {
	var args struct {
		Path           string `json:"path"`
		EnableAIVision bool   `json:"enable_ai_vision"`
		OutputFormat   string `json:"output_format"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid parse_document input: %w", err)
	}

	var opts []fileparser.ParseOption
	if args.EnableAIVision {
		opts = append(opts, fileparser.WithAIVision())
	}
	doc := a.parser.Parse(ctx, args.Path, opts...)

	if args.OutputFormat == "markdown" {
		return render.Markdown(doc), nil
	}
	return render.JSON(doc, true)
}

func (a *Agent) toolExtractTables(ctx context.Context, input []byte) (string, error) {
	var args struct {
		Path         string `json:"path"`
		OutputFormat string `json:"output_format"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid extract_tables input: %w", err)
	}

	doc := a.parser.Parse(ctx, args.Path)
	if doc.Error != "" && doc.PDF == nil && doc.Word == nil && doc.Excel == nil && doc.PowerPoint == nil {
		return toolError("%s", doc.Error), nil
	}

	tables := CollectTables(doc)
	if args.OutputFormat == "csv" {
		return render.CSV(doc), nil
	}

	out, err := json.MarshalIndent(map[string]any{
		"table_count": len(tables),
		"tables":      tables,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractedTable is one table pulled out of any document type.
type ExtractedTable struct {
	Source  string     `json:"source"`
	Slide   int        `json:"slide,omitempty"`
	Name    string     `json:"name,omitempty"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Data    [][]string `json:"data,omitempty"`
}

// CollectTables gathers every table in the document regardless of type:
// Word tables, Excel sheets and PowerPoint table shapes.
func CollectTables(doc *parser.Document) []ExtractedTable {
	var tables []ExtractedTable
	switch {
	case doc.Word != nil:
		for _, t := range doc.Word.Tables {
			tables = append(tables, ExtractedTable{
				Source:  "word",
				Name:    fmt.Sprintf("Table %d", t.TableNumber),
				Rows:    t.Rows,
				Columns: t.Columns,
				Data:    t.Data,
			})
		}
	case doc.Excel != nil:
		for _, sheet := range doc.Excel.Sheets {
			grid := make([][]string, len(sheet.Data))
			for i, row := range sheet.Data {
				cells := make([]string, len(row))
				for j, v := range row {
					cells[j] = fmt.Sprintf("%v", v)
				}
				grid[i] = cells
			}
			tables = append(tables, ExtractedTable{
				Source:  "excel",
				Name:    sheet.Name,
				Rows:    sheet.Rows,
				Columns: sheet.Columns,
				Data:    grid,
			})
		}
	case doc.PowerPoint != nil:
		for _, slide := range doc.PowerPoint.Slides {
			for _, shape := range slide.Shapes {
				if shape.ContentType != parser.ContentTable {
					continue
				}
				tables = append(tables, ExtractedTable{
					Source:  "powerpoint",
					Slide:   slide.SlideNumber,
					Rows:    shape.TableRows,
					Columns: shape.TableColumns,
					Data:    shape.TableData,
				})
			}
		}
	}
	return tables
}

func (a *Agent) toolSummarizeDocument(ctx context.Context, input []byte) (string, error) {
	var args struct {
		Path          string `json:"path"`
		SummaryLength string `json:"summary_length"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid summarize_document input: %w", err)
	}

	doc := a.parser.Parse(ctx, args.Path)
	stats, preview := summaryInputs(doc)

	length := args.SummaryLength
	if length == "" {
		length = "standard"
	}
	summaryTokens := map[string]int64{"brief": 100, "standard": 300, "detailed": 600}
	tokens, ok := summaryTokens[length]
	if !ok {
		tokens = 300
	}

	statsJSON, _ := json.MarshalIndent(stats, "", "  ")
	prompt := fmt.Sprintf(`Summarize this %s document based on the following information:

Statistics: %s

Content Preview:
%s

Provide a %s summary focusing on the main topics and key points.`,
		doc.FileType, statsJSON, preview, length)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: tokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return toolError("Summary generation failed: %v", err), nil
	}

	out, err := json.MarshalIndent(map[string]any{
		"summary":    collectText(resp),
		"statistics": stats,
		"length":     length,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// summaryInputs builds the statistics block and a short content preview
// fed into the summarization prompt.
func summaryInputs(doc *parser.Document) (map[string]any, string) {
	stats := map[string]any{
		"file_type": doc.FileType,
		"filename":  doc.Filename,
	}
	var preview string

	switch {
	case doc.PDF != nil:
		stats["total_pages"] = doc.PDF.TotalPages
		if len(doc.PDF.Pages) > 0 {
			preview = truncate(doc.PDF.Pages[0].Text, 2000)
		}
	case doc.Word != nil:
		stats["total_paragraphs"] = doc.Word.TotalParagraphs
		stats["total_tables"] = doc.Word.TotalTables
		var texts []string
		for i, p := range doc.Word.Paragraphs {
			if i >= 10 {
				break
			}
			texts = append(texts, p.Text)
		}
		preview = truncate(strings.Join(texts, "\n"), 2000)
	case doc.Excel != nil:
		stats["total_sheets"] = doc.Excel.Metadata.TotalSheets
		stats["sheet_names"] = doc.Excel.Metadata.SheetNames
	case doc.PowerPoint != nil:
		stats["total_slides"] = doc.PowerPoint.Metadata.TotalSlides
		var titles, texts []string
		for i, s := range doc.PowerPoint.Slides {
			if s.Title != "" {
				titles = append(titles, s.Title)
			}
			if i < 5 {
				texts = append(texts, truncate(s.Text, 200))
			}
		}
		stats["slide_titles"] = titles
		preview = strings.Join(texts, "\n")
	}
	return stats, preview
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (a *Agent) toolAnalyzeImage(ctx context.Context, input []byte) (string, error) {
	var args struct {
		Path         string `json:"path"`
		AnalysisType string `json:"analysis_type"`
		Context      string `json:"context"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid analyze_image input: %w", err)
	}

	data, err := os.ReadFile(args.Path)
	if err != nil {
		return toolError("reading image: %v", err), nil
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(args.Path)), ".")

	analysis := a.parser.Vision().Analyze(ctx, data, format, vision.AnalysisKind(args.AnalysisType), args.Context)
	out, err := json.MarshalIndent(analysis.AsMap(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (a *Agent) toolSaveOutput(input []byte) (string, error) {
	var args struct {
		Content  string `json:"content"`
		Filename string `json:"filename"`
		Format   string `json:"format"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid save_output input: %w", err)
	}
	if args.Format == "" {
		args.Format = "txt"
	}

	name, err := a.store.SaveOutput(args.Content, args.Filename, args.Format)
	if err != nil {
		return toolError("saving output: %v", err), nil
	}
	out, _ := json.Marshal(map[string]any{
		"success":    true,
		"filename":   name,
		"size_bytes": len(args.Content),
	})
	return string(out), nil
}

func (a *Agent) toolListFormats() (string, error) {
	out, err := json.Marshal(map[string]any{
		"supported_extensions": a.parser.SupportedExtensions(),
		"max_file_size_bytes":  parser.MaxFileSize,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
