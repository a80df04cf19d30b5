package fileparser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cpsullivan/file-parser-agent/vision"
)

// Config holds all configuration for the parsing agent.
type Config struct {
	// Vision configures AI image analysis. An empty API key disables the
	// capability; parsing still works without it.
	Vision vision.Config `json:"vision" yaml:"vision"`

	// Server configures the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage configures where uploads and parse outputs live.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// MaxUploadBytes caps multipart upload size. Defaults to the parsing
	// size limit.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// StorageConfig configures the working directories.
type StorageConfig struct {
	UploadDir string `json:"upload_dir" yaml:"upload_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// DefaultConfig returns a Config with sensible defaults. The vision API
// key is read from ANTHROPIC_API_KEY, the model from VISION_MODEL.
func DefaultConfig() Config {
	return Config{
		Vision: vision.Config{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  os.Getenv("VISION_MODEL"),
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
			OutputDir: "outputs",
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. Fields absent
// from the file keep their defaults, including environment-derived ones.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
