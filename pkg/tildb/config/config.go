package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
)

// Config holds everything a run needs. It is built once at process start
// and passed down explicitly.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	Pattern   string `yaml:"pattern"`
	DBPath    string `yaml:"db_path"`
	Separator string `yaml:"separator"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the conventional layout: markdown notes under ./posts
// written to ./tils.db.
func Default() Config {
	return Config{
		InputDir:  "posts",
		Pattern:   "*.md",
		DBPath:    "tils.db",
		Separator: "-",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML config file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when the file
// does not exist.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("%w: input_dir is required", internalerr.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%w: db_path is required", internalerr.ErrInvalidConfig)
	}
	if !doublestar.ValidatePattern(c.Pattern) {
		return fmt.Errorf("%w: invalid pattern %q", internalerr.ErrInvalidConfig, c.Pattern)
	}
	if err := validateSeparator(c.Separator); err != nil {
		return err
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", internalerr.ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", internalerr.ErrInvalidConfig, c.LogFormat)
	}

	return nil
}

// separator must be one printable ASCII character that can never appear
// inside a slug word.
func validateSeparator(sep string) error {
	if len(sep) != 1 {
		return fmt.Errorf("%w: separator must be a single character, got %q", internalerr.ErrInvalidConfig, sep)
	}
	b := sep[0]
	if b <= ' ' || b > '~' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9') {
		return fmt.Errorf("%w: separator %q must be a non-alphanumeric ASCII symbol", internalerr.ErrInvalidConfig, sep)
	}
	return nil
}
