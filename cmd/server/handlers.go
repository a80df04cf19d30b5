package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	fileparser "github.com/cpsullivan/file-parser-agent"
	"github.com/cpsullivan/file-parser-agent/filestore"
	"github.com/cpsullivan/file-parser-agent/parser"
	"github.com/cpsullivan/file-parser-agent/render"
)

type handler struct {
	agent     *fileparser.Agent
	store     *filestore.Store
	maxUpload int64
}

func newHandler(agent *fileparser.Agent, store *filestore.Store, maxUpload int64) *handler {
	if maxUpload <= 0 {
		maxUpload = parser.MaxFileSize
	}
	return &handler{agent: agent, store: store, maxUpload: maxUpload}
}

// POST /api/parse
// Multipart upload: "file" is the document; optional form fields
// "ai_vision" (true/false), "output_format" (json|markdown|csv) and
// "save" (true to store the rendered output).
func (h *handler) handleParse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		slog.Error("reading upload", "error", err)
		return
	}

	// Spool to disk: extractors work on paths, not streams.
	uploadPath, err := h.store.SaveUpload(header.Filename, content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save upload")
		slog.Error("saving upload", "error", err)
		return
	}
	defer func() {
		if err := h.store.CleanupUpload(uploadPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("upload cleanup failed", "path", uploadPath, "error", err)
		}
	}()

	var opts []fileparser.ParseOption
	if parseBool(r.FormValue("ai_vision")) {
		opts = append(opts, fileparser.WithAIVision())
	}

	parsed := h.agent.Parse(ctx, uploadPath, opts...)

	// Report the uploaded name, not the spool name. Parse records are
	// immutable once returned, so substitute the name on a copy.
	doc := *parsed
	doc.Filename = header.Filename

	format := render.Format(strings.ToLower(r.FormValue("output_format")))
	if format == "" {
		format = render.FormatJSON
	}
	rendered, err := render.Render(&doc, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var savedAs string
	if parseBool(r.FormValue("save")) {
		savedAs, err = h.store.SaveOutput(rendered, header.Filename, render.Extensions[format])
		if err != nil {
			slog.Error("saving output", "error", err)
		}
	}

	switch format {
	case render.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		if savedAs != "" {
			w.Header().Set("X-Output-Filename", savedAs)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, rendered)
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"filename": doc.Filename,
			"format":   format,
			"content":  rendered,
			"saved_as": savedAs,
			"error":    doc.Error,
		})
	}
}

// GET /api/formats
func (h *handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported_extensions": h.agent.SupportedExtensions(),
		"max_file_size_bytes":  parser.MaxFileSize,
		"ai_vision_available":  h.agent.VisionAvailable(),
	})
}

// GET /api/outputs
func (h *handler) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	outputs, err := h.store.ListOutputs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list outputs")
		slog.Error("listing outputs", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outputs": outputs})
}

// GET /api/outputs/{filename}
func (h *handler) handleGetOutput(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	path, ok := h.store.OutputPath(filename)
	if !ok {
		writeError(w, http.StatusNotFound, "output not found")
		return
	}
	http.ServeFile(w, r, path)
}

// DELETE /api/outputs/{filename}
func (h *handler) handleDeleteOutput(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if err := h.store.DeleteOutput(filename); err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "output not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete failed")
		slog.Error("deleting output", "filename", filename, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DELETE /api/outputs
func (h *handler) handleClearOutputs(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.ClearOutputs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "clear failed")
		slog.Error("clearing outputs", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"ai_vision_available": h.agent.VisionAvailable(),
	})
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
