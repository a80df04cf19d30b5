// Command fileparse parses a document from the command line and prints or
// stores the result. With -chat it runs the conversational agent instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/agent"
	"github.com/cpsullivan/file-parser-agent/filestore"
	"github.com/cpsullivan/file-parser-agent/render"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	format := flag.String("format", "json", "Output format: json, markdown, csv")
	output := flag.String("output", "", "Write result to this file instead of stdout")
	save := flag.Bool("save", false, "Store the result in the outputs directory")
	aiVision := flag.Bool("ai-vision", false, "Describe PowerPoint images with AI vision")
	chat := flag.String("chat", "", "Run the conversational agent with this message instead of parsing")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	_ = godotenv.Load()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := fileparser.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = fileparser.LoadConfig(*configPath)
		if err != nil {
			fatal("loading config: %v", err)
		}
	}

	parserAgent := fileparser.New(cfg, logger)

	if *chat != "" {
		runChat(cfg, parserAgent, *chat, logger)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fileparse [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	var opts []fileparser.ParseOption
	if *aiVision {
		opts = append(opts, fileparser.WithAIVision())
	}
	doc := parserAgent.Parse(context.Background(), path, opts...)

	rendered, err := render.Render(doc, render.Format(*format))
	if err != nil {
		fatal("%v", err)
	}

	switch {
	case *output != "":
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			fatal("writing output: %v", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *output)
	case *save:
		store, err := filestore.New(cfg.Storage.UploadDir, cfg.Storage.OutputDir)
		if err != nil {
			fatal("%v", err)
		}
		name, err := store.SaveOutput(rendered, doc.Filename, render.Extensions[render.Format(*format)])
		if err != nil {
			fatal("saving output: %v", err)
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", name)
	default:
		fmt.Println(rendered)
	}

	if doc.Error != "" {
		os.Exit(1)
	}
}

func runChat(cfg fileparser.Config, parserAgent *fileparser.Agent, message string, logger *slog.Logger) {
	store, err := filestore.New(cfg.Storage.UploadDir, cfg.Storage.OutputDir)
	if err != nil {
		fatal("%v", err)
	}
	a, err := agent.New(cfg.Vision.APIKey, "", parserAgent, store, logger)
	if err != nil {
		fatal("%v", err)
	}
	response, err := a.Chat(context.Background(), message)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(response)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fileparse: "+format+"\n", args...)
	os.Exit(1)
}
