package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		want     []string
		warnings int
	}{
		{"absent", nil, nil, 0},
		{"simple", []any{"go", "testing"}, []string{"go", "testing"}, 0},
		{"trimmed", []any{"  go ", "testing\t"}, []string{"go", "testing"}, 0},
		{"case preserved", []any{"Go", "go"}, []string{"Go", "go"}, 0},
		{"duplicates after trim", []any{"go", " go", "db", "go"}, []string{"go", "db"}, 0},
		{"scalars coerced", []any{42, 1.5, true}, []string{"42", "1.5", "true"}, 0},
		{"date coerced", []any{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, []string{"2024-01-02"}, 0},
		{"empty dropped", []any{"go", "", "   "}, []string{"go"}, 2},
		{"nil element dropped", []any{nil, "go"}, []string{"go"}, 1},
		{"nested dropped", []any{[]any{"a"}, map[string]any{"k": "v"}, "go"}, []string{"go"}, 2},
		{"empty list", []any{}, nil, 0},
		{"string not list", "not-a-list", nil, 1},
		{"map not list", map[string]any{"a": 1}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := NormalizeTags(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("expected %d warnings, got %v", tt.warnings, warnings)
			}
			for _, w := range warnings {
				if !errors.Is(w, internalerr.ErrTagCoercion) {
					t.Errorf("warning %v should wrap ErrTagCoercion", w)
				}
			}
		})
	}
}
