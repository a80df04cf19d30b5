// Package vision describes images with the Anthropic vision API. It is
// built for enrichment pipelines: analysis never fails hard, every outcome
// carries a usable description, and oversized images are recompressed to
// fit API limits before upload.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MaxImageSize is the largest payload sent to the API. Larger images are
// recompressed first.
const MaxImageSize = 5 * 1024 * 1024

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

const defaultMaxTokens = 600

// supportedFormats are the image formats accepted by the API.
var supportedFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

var mediaTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// AnalysisKind selects the prompt used for an image.
type AnalysisKind string

const (
	KindGeneral    AnalysisKind = "general"
	KindChart      AnalysisKind = "chart"
	KindDiagram    AnalysisKind = "diagram"
	KindScreenshot AnalysisKind = "screenshot"
)

// Config holds the analyzer settings. An empty APIKey disables analysis
// without error; callers check Available.
type Config struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	Model     string `yaml:"model" json:"model"`
	MaxTokens int64  `yaml:"max_tokens" json:"max_tokens"`
}

// Analysis is the outcome of one image analysis. Description is always
// non-empty; Err holds the failure reason when the API call did not
// succeed or was skipped.
type Analysis struct {
	Enabled     bool         `json:"enabled"`
	Description string       `json:"description"`
	Model       string       `json:"model,omitempty"`
	Kind        AnalysisKind `json:"analysis_type,omitempty"`
	TokensUsed  int64        `json:"tokens_used,omitempty"`
	Note        string       `json:"note,omitempty"`
	Err         string       `json:"error,omitempty"`
}

// AsMap renders the analysis in the flat form embedded into parse results.
func (a *Analysis) AsMap() map[string]any {
	m := map[string]any{
		"enabled":     a.Enabled,
		"description": a.Description,
	}
	if a.Model != "" {
		m["model"] = a.Model
	}
	if a.Kind != "" {
		m["analysis_type"] = string(a.Kind)
	}
	if a.TokensUsed > 0 {
		m["tokens_used"] = a.TokensUsed
	}
	if a.Note != "" {
		m["note"] = a.Note
	}
	if a.Err != "" {
		m["error"] = a.Err
	}
	return m
}

// Analyzer calls the Anthropic vision API. The zero value is unusable;
// construct with New.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	enabled   bool
	logger    *slog.Logger
}

// New builds an analyzer from cfg. A missing API key yields a disabled
// analyzer, not an error: availability is a runtime property here.
func New(cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultMaxTokens
	}
	if cfg.APIKey == "" {
		return a
	}
	a.client = anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)
	a.enabled = true
	return a
}

// Available reports whether the analyzer can make API calls.
func (a *Analyzer) Available() bool {
	return a != nil && a.enabled
}

// Analyze describes one image. It never returns an error: unavailability,
// bad formats and API failures all degrade to a fallback description with
// the reason in Err.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, format string, kind AnalysisKind, imageContext string) *Analysis {
	if kind == "" {
		kind = KindGeneral
	}
	if !a.Available() {
		return &Analysis{
			Enabled:     false,
			Err:         "AI Vision not available (API key not configured)",
			Description: fallbackDescription(kind),
		}
	}

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !supportedFormats[format] {
		return &Analysis{
			Enabled:     false,
			Err:         fmt.Sprintf("Unsupported image format: %s", format),
			Description: fmt.Sprintf("Image (%s format)", format),
		}
	}

	var note string
	if len(data) > MaxImageSize {
		originalSize := len(data)
		compressed, compressedFormat, ok := compressImage(data, MaxImageSize)
		if ok {
			note = fmt.Sprintf("Image compressed from %.1fKB to %.1fKB",
				float64(originalSize)/1024, float64(len(compressed))/1024)
			data, format = compressed, compressedFormat
		}
	}

	prompt := buildPrompt(kind, imageContext)
	encoded := base64.StdEncoding.EncodeToString(data)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaTypes[format], encoded),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		a.logger.Warn("vision API call failed", "kind", kind, "error", err)
		return &Analysis{
			Enabled:     true,
			Err:         err.Error(),
			Kind:        kind,
			Description: fallbackDescription(kind),
		}
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	description := strings.TrimSpace(b.String())
	if description == "" {
		return &Analysis{
			Enabled:     true,
			Err:         "empty response from vision API",
			Kind:        kind,
			Description: fallbackDescription(kind),
		}
	}

	return &Analysis{
		Enabled:     true,
		Description: description,
		Model:       a.model,
		Kind:        kind,
		TokensUsed:  resp.Usage.OutputTokens,
		Note:        note,
	}
}

// DescribeImage adapts Analyze to the enrichment contract used by the
// parsing layer.
func (a *Analyzer) DescribeImage(ctx context.Context, data []byte, format, imageContext string) map[string]any {
	return a.Analyze(ctx, data, format, KindGeneral, imageContext).AsMap()
}

func fallbackDescription(kind AnalysisKind) string {
	switch kind {
	case KindChart:
		return "Chart or data visualization (AI analysis not available)"
	case KindDiagram:
		return "Diagram or flowchart (AI analysis not available)"
	case KindScreenshot:
		return "Screenshot (AI analysis not available)"
	default:
		return "Image (AI analysis not available)"
	}
}
