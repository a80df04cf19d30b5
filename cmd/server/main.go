package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/filestore"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := fileparser.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = fileparser.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	// Override from environment variables.
	if v := os.Getenv("FILEPARSER_UPLOAD_DIR"); v != "" {
		cfg.Storage.UploadDir = v
	}
	if v := os.Getenv("FILEPARSER_OUTPUT_DIR"); v != "" {
		cfg.Storage.OutputDir = v
	}
	if v := os.Getenv("FILEPARSER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	apiKey := os.Getenv("FILEPARSER_API_KEY")
	corsOrigins := os.Getenv("FILEPARSER_CORS_ORIGINS")

	agent := fileparser.New(cfg, slog.Default())
	store, err := filestore.New(cfg.Storage.UploadDir, cfg.Storage.OutputDir)
	if err != nil {
		slog.Error("creating file store", "error", err)
		os.Exit(1)
	}

	h := newHandler(agent, store, cfg.Server.MaxUploadBytes)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/parse", h.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/formats", h.handleFormats).Methods(http.MethodGet)
	api.HandleFunc("/outputs", h.handleListOutputs).Methods(http.MethodGet)
	api.HandleFunc("/outputs", h.handleClearOutputs).Methods(http.MethodDelete)
	api.HandleFunc("/outputs/{filename}", h.handleGetOutput).Methods(http.MethodGet)
	api.HandleFunc("/outputs/{filename}", h.handleDeleteOutput).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	// Middleware chain: recovery -> cors -> auth -> logging -> router
	var handler http.Handler = r
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // AI vision parsing can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", listenAddr, "vision", agent.VisionAvailable())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
