// Command mcp exposes the document parser over the Model Context
// Protocol (stdio transport), so MCP clients can parse local files and
// work with the extracted content.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	fileparser "github.com/cpsullivan/file-parser-agent"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	// Warnings only; stdout belongs to the protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := fileparser.DefaultConfig()
	if path := os.Getenv("FILEPARSER_CONFIG"); path != "" {
		var err error
		cfg, err = fileparser.LoadConfig(path)
		if err != nil {
			logger.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	agent := fileparser.New(cfg, logger)

	mcpServer := server.NewMCPServer(
		"file-parser-agent",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createParseDocumentTool(), handleParseDocument(agent, logger))
	mcpServer.AddTool(createDocumentSummaryTool(), handleDocumentSummary(agent, logger))
	mcpServer.AddTool(createExtractTablesTool(), handleExtractTables(agent, logger))
	mcpServer.AddTool(createValidateFileTool(), handleValidateFile(agent))
	mcpServer.AddTool(createListFormatsTool(), handleListFormats(agent))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("MCP server failed", "error", err)
		os.Exit(1)
	}
}
