// Package filestore manages the working directories of the parsing agent:
// a spool for uploaded files and a store for rendered parse outputs with
// timestamped, collision-free names.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store owns the upload and output directories. Construct with New, which
// creates both directories.
type Store struct {
	uploadDir string
	outputDir string
}

// OutputInfo describes one stored output file.
type OutputInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Modified  string `json:"modified"`
}

// New creates a store rooted at the given directories, creating them if
// needed.
func New(uploadDir, outputDir string) (*Store, error) {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if outputDir == "" {
		outputDir = "outputs"
	}
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return &Store{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// SaveUpload spools uploaded content to the upload directory under a
// unique name that keeps the original extension, returning the path.
func (s *Store) SaveUpload(originalName string, content []byte) (string, error) {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	name := fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return path, nil
}

// CleanupUpload removes a spooled upload. Paths outside the upload
// directory are refused.
func (s *Store) CleanupUpload(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(s.uploadDir)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove file outside upload dir: %s", path)
	}
	return os.Remove(absPath)
}

// SaveOutput writes rendered content under a timestamped name derived from
// the original document filename, returning the output filename. A counter
// suffix resolves collisions within the same second.
func (s *Store) SaveOutput(content, originalName, ext string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	ext = strings.TrimPrefix(ext, ".")
	timestamp := time.Now().Format("20060102_150405")

	name := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(s.outputDir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%s_%d.%s", base, timestamp, counter, ext)
	}

	if err := os.WriteFile(filepath.Join(s.outputDir, name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("saving output: %w", err)
	}
	return name, nil
}

// ListOutputs returns stored outputs, newest first.
func (s *Store) ListOutputs() ([]OutputInfo, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	outputs := make([]OutputInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		outputs = append(outputs, OutputInfo{
			Filename:  entry.Name(),
			Size:      info.Size(),
			SizeHuman: humanSize(info.Size()),
			Modified:  info.ModTime().Format(time.RFC3339),
		})
	}
	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].Modified > outputs[j].Modified
	})
	return outputs, nil
}

// ReadOutput returns the content of one stored output. The filename is
// reduced to its base name so stored files outside the output directory
// are unreachable.
func (s *Store) ReadOutput(filename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.outputDir, filepath.Base(filename)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutputPath returns the full path of a stored output if it exists.
func (s *Store) OutputPath(filename string) (string, bool) {
	path := filepath.Join(s.outputDir, filepath.Base(filename))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// DeleteOutput removes one stored output.
func (s *Store) DeleteOutput(filename string) error {
	return os.Remove(filepath.Join(s.outputDir, filepath.Base(filename)))
}

// ClearOutputs removes all stored outputs, returning how many were
// deleted.
func (s *Store) ClearOutputs() (int, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.outputDir, entry.Name())); err == nil {
			count++
		}
	}
	return count, nil
}

func humanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
