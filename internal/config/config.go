// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.lectern/config.yaml, or ./config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Backend: base URL of the notes backend, per-request timeout
//   - Identity: default username for uploads
//   - Generation: chunking and retrieval hyperparameters
//   - Output: directory where downloaded artifacts are written
//   - Logging: level, format, optional rotating log file
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lectern0/lectern/internal/session"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidBackendURL indicates the backend URL is malformed.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidChunkSize indicates the chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates the chunk overlap is out of range.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidRetrieverK indicates the retriever K value is out of range.
	ErrInvalidRetrieverK = errors.New("invalid retriever k")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidOutputDir indicates the output directory is invalid.
	ErrInvalidOutputDir = errors.New("invalid output directory")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Generation hyperparameter bounds. The backend accepts wider ranges but
// values outside these produce degenerate retrieval, so they are rejected
// up front.
const (
	MinChunkSize = 100
	MaxChunkSize = 8000

	MaxRetrieverK = 50
)

// Config stores application configuration.
type Config struct {
	// Backend connection
	BackendURL     string `mapstructure:"backend_url" json:"backend_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`

	// Default identity for uploads. Can be left empty and entered
	// interactively.
	Username string `mapstructure:"username" json:"username"`

	// Generation hyperparameters
	ChunkSize    int     `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	RetrieverK   int     `mapstructure:"retriever_k" json:"retriever_k"`
	Temperature  float64 `mapstructure:"temperature" json:"temperature"`

	// Output directory for downloaded artifacts
	OutputDir string `mapstructure:"output_dir" json:"output_dir"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
	LogFile  string `mapstructure:"log_file" json:"log_file"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".lectern")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fail-fast: a bad config never reaches the stages.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("timeout_seconds", 120)

	// Generation defaults matching the backend's own defaults
	v.SetDefault("chunk_size", session.DefaultChunkSize)
	v.SetDefault("chunk_overlap", session.DefaultChunkOverlap)
	v.SetDefault("retriever_k", session.DefaultRetrieverK)
	v.SetDefault("temperature", session.DefaultTemperature)

	v.SetDefault("output_dir", ".")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("backend_url", "LECTERN_BACKEND_URL")
	mustBind("timeout_seconds", "LECTERN_TIMEOUT_SECONDS")
	mustBind("username", "LECTERN_USERNAME")
	mustBind("output_dir", "LECTERN_OUTPUT_DIR")
	mustBind("log_level", "LECTERN_LOG_LEVEL")
	mustBind("log_json", "LECTERN_LOG_JSON")
	mustBind("log_file", "LECTERN_LOG_FILE")
}

// Timeout returns the per-request backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Hyperparameters returns the generation knobs as a session value.
func (c *Config) Hyperparameters() session.Hyperparameters {
	return session.Hyperparameters{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		RetrieverK:   c.RetrieverK,
		Temperature:  c.Temperature,
	}
}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	u, err := url.Parse(strings.TrimSpace(c.BackendURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidBackendURL)
	}

	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("%w: must be at least 1 second, got %d", ErrInvalidTimeout, c.TimeoutSeconds)
	}

	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidChunkSize, MinChunkSize, MaxChunkSize, c.ChunkSize)
	}

	// Overlap must leave room for new content in every chunk
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: must be between 0 and chunk_size-1, got %d",
			ErrInvalidChunkOverlap, c.ChunkOverlap)
	}

	if c.RetrieverK < 1 || c.RetrieverK > MaxRetrieverK {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidRetrieverK, MaxRetrieverK, c.RetrieverK)
	}

	// Temperature range: 0.0 (deterministic) to 2.0
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir cannot be empty", ErrInvalidOutputDir)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.LogLevel, validLevels)
	}

	return nil
}
