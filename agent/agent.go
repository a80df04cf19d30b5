// Package agent wraps the parsing facade in a Claude tool-use loop: the
// model drives parsing, table extraction, rendering and summarization
// through tool calls, and the loop executes them locally.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/filestore"
)

const (
	// DefaultModel drives the conversation loop.
	DefaultModel = "claude-sonnet-4-20250514"

	maxTokens = 4096

	// maxToolRounds bounds the tool-use loop against runaway conversations.
	maxToolRounds = 16
)

// Agent is the conversational wrapper. Construct with New.
type Agent struct {
	client anthropic.Client
	model  string
	parser *fileparser.Agent
	store  *filestore.Store
	logger *slog.Logger
}

// New builds an agent. apiKey is required; parsing itself works without
// one but the conversation loop cannot.
func New(apiKey, model string, parserAgent *fileparser.Agent, store *filestore.Store, logger *slog.Logger) (*Agent, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the conversational agent")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		parser: parserAgent,
		store:  store,
		logger: logger,
	}, nil
}

// Chat sends a user message and runs the tool-use loop to completion,
// returning the model's final text response.
func (a *Agent) Chat(ctx context.Context, userMessage string) (string, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
	}
	tools := a.toolDefinitions()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: maxTokens,
			Tools:     tools,
			Messages:  messages,
		})
		if err != nil {
			return "", fmt.Errorf("conversation request failed: %w", err)
		}

		if resp.StopReason != anthropic.StopReasonToolUse {
			return collectText(resp), nil
		}

		messages = append(messages, resp.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
			if !ok {
				continue
			}
			a.logger.Debug("tool call", "tool", toolUse.Name)
			output, callErr := a.callTool(ctx, toolUse.Name, []byte(toolUse.JSON.Input.Raw()))
			if callErr != nil {
				results = append(results, anthropic.NewToolResultBlock(
					toolUse.ID, fmt.Sprintf(`{"error": %q}`, callErr.Error()), true))
				continue
			}
			results = append(results, anthropic.NewToolResultBlock(toolUse.ID, output, false))
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}
	return "", fmt.Errorf("tool-use loop exceeded %d rounds", maxToolRounds)
}

func collectText(resp *anthropic.Message) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text.Text)
		}
	}
	return b.String()
}

// toolError renders an error as a JSON tool result payload.
func toolError(format string, args ...any) string {
	msg, _ := json.Marshal(fmt.Sprintf(format, args...))
	return fmt.Sprintf(`{"error": %s}`, msg)
}
