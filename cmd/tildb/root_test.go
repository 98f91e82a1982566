package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
	"github.com/cognicore/tildb/pkg/tildb/store/sqlite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func TestRootIngests(t *testing.T) {
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts")
	if err := os.MkdirAll(posts, 0755); err != nil {
		t.Fatal(err)
	}
	note := "---\ntitle: Hello World\ndate: 2024-01-02\ntags: [go]\n---\ncontent"
	if err := os.WriteFile(filepath.Join(posts, "hello.md"), []byte(note), 0644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "out.db")

	out, err := execute(t,
		"--config", filepath.Join(dir, "absent.yaml"),
		"--input", posts,
		"--db", dbPath,
		"--separator", "_",
		"--log-format", "json",
	)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"msg":"finished processing"`) {
		t.Errorf("expected JSON summary line, got:\n%s", out)
	}

	st, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	notes, err := st.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].Slug != "hello_world" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestRootConfigFile(t *testing.T) {
	dir := t.TempDir()
	posts := filepath.Join(dir, "notes")
	if err := os.MkdirAll(posts, 0755); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "tildb.yaml")
	content := "input_dir: " + posts + "\ndb_path: " + dbPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("config db_path should be used: %v", err)
	}
	if !strings.Contains(out, "no note files found") {
		t.Errorf("zero notes should be reported as a warning:\n%s", out)
	}
}

func TestRootInvalidSeparator(t *testing.T) {
	_, err := execute(t, "--config", "", "--separator", "ab")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	if _, err := execute(t, "--config", "", "extra"); err == nil {
		t.Fatal("expected error for positional argument")
	}
}
