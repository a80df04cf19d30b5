package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/agent"
	"github.com/cpsullivan/file-parser-agent/parser"
	"github.com/cpsullivan/file-parser-agent/render"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

// handleParseDocument implements the parse_document tool
func handleParseDocument(a *fileparser.Agent, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		var opts []fileparser.ParseOption
		if request.GetBool("ai_vision", false) {
			opts = append(opts, fileparser.WithAIVision())
		}

		doc := a.Parse(ctx, path, opts...)

		if strings.EqualFold(request.GetString("output_format", "json"), "markdown") {
			return textResult(render.Markdown(doc)), nil
		}
		out, err := render.JSON(doc, true)
		if err != nil {
			logger.Error("encoding parse result", "error", err)
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(out), nil
	}
}

// handleDocumentSummary implements the get_document_summary tool
func handleDocumentSummary(a *fileparser.Agent, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		doc := a.Parse(ctx, path)
		summary := documentSummary(doc)

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			logger.Error("encoding summary", "error", err)
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(string(out)), nil
	}
}

// documentSummary reduces a parse result to its statistics.
func documentSummary(doc *parser.Document) map[string]any {
	summary := map[string]any{
		"filename":  doc.Filename,
		"file_type": doc.FileType,
		"parsed_at": doc.ParsedAt,
	}
	if doc.Error != "" {
		summary["error"] = doc.Error
	}

	switch {
	case doc.PDF != nil:
		summary["total_pages"] = doc.PDF.TotalPages
		summary["metadata"] = doc.PDF.Metadata
		chars := 0
		for _, p := range doc.PDF.Pages {
			chars += p.CharCount
		}
		summary["total_characters"] = chars
	case doc.Word != nil:
		summary["total_paragraphs"] = doc.Word.TotalParagraphs
		summary["total_tables"] = doc.Word.TotalTables
		summary["image_count"] = doc.Word.ImageCount
		summary["metadata"] = doc.Word.Metadata
	case doc.Excel != nil:
		summary["total_sheets"] = doc.Excel.Metadata.TotalSheets
		summary["sheet_names"] = doc.Excel.Metadata.SheetNames
	case doc.PowerPoint != nil:
		summary["total_slides"] = doc.PowerPoint.Metadata.TotalSlides
		var titles []string
		images, charts, tables := 0, 0, 0
		for _, s := range doc.PowerPoint.Slides {
			if s.Title != "" {
				titles = append(titles, s.Title)
			}
			images += s.ImageCount
			charts += s.ChartCount
			tables += s.TableCount
		}
		summary["slide_titles"] = titles
		summary["image_count"] = images
		summary["chart_count"] = charts
		summary["table_count"] = tables
	}
	return summary
}

// handleExtractTables implements the extract_tables tool
func handleExtractTables(a *fileparser.Agent, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		doc := a.Parse(ctx, path)
		if strings.EqualFold(request.GetString("output_format", "json"), "csv") {
			csv := render.CSV(doc)
			if csv == "" {
				return textResult("No tabular data found in document"), nil
			}
			return textResult(csv), nil
		}

		tables := agent.CollectTables(doc)
		out, err := json.MarshalIndent(map[string]any{
			"table_count": len(tables),
			"tables":      tables,
		}, "", "  ")
		if err != nil {
			logger.Error("encoding tables", "error", err)
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(string(out)), nil
	}
}

// handleValidateFile implements the validate_file tool
func handleValidateFile(a *fileparser.Agent) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		valid, reason := a.Validate(path)
		out, _ := json.Marshal(map[string]any{
			"valid":  valid,
			"reason": reason,
		})
		return textResult(string(out)), nil
	}
}

// handleListFormats implements the list_supported_formats tool
func handleListFormats(a *fileparser.Agent) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, _ := json.Marshal(map[string]any{
			"supported_extensions": a.SupportedExtensions(),
			"max_file_size_bytes":  parser.MaxFileSize,
			"ai_vision_available":  a.VisionAvailable(),
		})
		return textResult(string(out)), nil
	}
}
