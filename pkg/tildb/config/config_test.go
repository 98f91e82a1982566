package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tildb.yaml")

	content := `input_dir: notes
db_path: out/notes.db
separator: _
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.InputDir = "notes"
	want.DBPath = "out/notes.db"
	want.Separator = "_"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("input_dir: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"underscore separator", func(c *Config) { c.Separator = "_" }, true},
		{"recursive pattern", func(c *Config) { c.Pattern = "**/*.md" }, true},
		{"empty input dir", func(c *Config) { c.InputDir = " " }, false},
		{"empty db path", func(c *Config) { c.DBPath = "" }, false},
		{"letter separator", func(c *Config) { c.Separator = "x" }, false},
		{"multi-char separator", func(c *Config) { c.Separator = "--" }, false},
		{"space separator", func(c *Config) { c.Separator = " " }, false},
		{"bad pattern", func(c *Config) { c.Pattern = "[" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, false},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
