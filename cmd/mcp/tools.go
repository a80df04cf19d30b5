package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createParseDocumentTool returns the parse_document tool definition
func createParseDocumentTool() mcp.Tool {
	return mcp.NewTool("parse_document",
		mcp.WithDescription("Parse a PDF, Word, Excel or PowerPoint file into structured content: text, tables, images, metadata"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document file"),
		),
		mcp.WithBoolean("ai_vision",
			mcp.Description("Describe PowerPoint images with AI vision (requires ANTHROPIC_API_KEY)"),
		),
		mcp.WithString("output_format",
			mcp.Description("Result format: json (default) or markdown"),
		),
	)
}

// createDocumentSummaryTool returns the get_document_summary tool definition
func createDocumentSummaryTool() mcp.Tool {
	return mcp.NewTool("get_document_summary",
		mcp.WithDescription("Get high-level statistics about a document without its full content: page/sheet/slide counts, metadata, table counts"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document file"),
		),
	)
}

// createExtractTablesTool returns the extract_tables tool definition
func createExtractTablesTool() mcp.Tool {
	return mcp.NewTool("extract_tables",
		mcp.WithDescription("Extract only the tabular data from a document: Word tables, Excel sheets, PowerPoint table shapes"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document file"),
		),
		mcp.WithString("output_format",
			mcp.Description("Table format: json (default) or csv"),
		),
	)
}

// createValidateFileTool returns the validate_file tool definition
func createValidateFileTool() mcp.Tool {
	return mcp.NewTool("validate_file",
		mcp.WithDescription("Check whether a file can be parsed without parsing it: existence, size limit, supported format"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the file"),
		),
	)
}

// createListFormatsTool returns the list_supported_formats tool definition
func createListFormatsTool() mcp.Tool {
	return mcp.NewTool("list_supported_formats",
		mcp.WithDescription("List the file formats the parser accepts and whether AI vision is available"),
	)
}
