// Package fileparser extracts structured content from PDF, Word, Excel and
// PowerPoint files into a normalized document record. Parsing degrades
// rather than fails: whole-file problems are reported in the record's
// error field, unit-level problems (a broken PDF page, an unreadable
// sheet) are annotated inline while the rest of the document survives.
package fileparser

import (
	"context"
	"log/slog"

	"github.com/cpsullivan/file-parser-agent/parser"
	"github.com/cpsullivan/file-parser-agent/vision"
)

// Document is the normalized parse result.
type Document = parser.Document

// Agent is the main entry point. It owns the extractor registry and the
// optional vision capability; construct with New and reuse across calls.
// Agent is safe for concurrent use.
type Agent struct {
	cfg      Config
	registry *parser.Registry
	vision   *vision.Analyzer
	logger   *slog.Logger
}

// New creates an agent from cfg. A missing vision API key is not an
// error; AI enrichment is simply reported unavailable.
func New(cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		cfg:      cfg,
		registry: parser.NewRegistry(logger),
		vision:   vision.New(cfg.Vision, logger),
		logger:   logger,
	}
}

// ParseOption configures a single parse call.
type ParseOption func(*parser.Options)

// WithAIVision requests AI image descriptions for PowerPoint images.
// Whether descriptions are actually produced depends on vision
// availability, reported on the result.
func WithAIVision() ParseOption {
	return func(o *parser.Options) { o.EnableAIVision = true }
}

// WithImageDescriber substitutes the enrichment implementation, mainly
// for tests.
func WithImageDescriber(d parser.ImageDescriber) ParseOption {
	return func(o *parser.Options) { o.Vision = d }
}

// Parse validates and parses the file at path. The returned Document is
// never nil: failures of any kind are reported in its Error field.
func (a *Agent) Parse(ctx context.Context, path string, opts ...ParseOption) *Document {
	options := parser.Options{Vision: a.vision}
	for _, o := range opts {
		o(&options)
	}
	return a.registry.Dispatch(ctx, path, options)
}

// Validate checks whether path is parseable without parsing it. The
// reason string explains the first failing check, or "Valid".
func (a *Agent) Validate(path string) (bool, string) {
	return a.registry.Validate(path)
}

// SupportedExtensions returns the accepted file extensions, with dots.
func (a *Agent) SupportedExtensions() []string {
	return a.registry.SupportedExtensions()
}

// VisionAvailable reports whether AI image analysis is configured.
func (a *Agent) VisionAvailable() bool {
	return a.vision.Available()
}

// Vision exposes the analyzer for direct image analysis outside of a
// document parse.
func (a *Agent) Vision() *vision.Analyzer {
	return a.vision
}
