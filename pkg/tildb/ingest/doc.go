package ingest

// RawDocument is one input file split into its metadata block and body.
// Metadata values keep their decoded YAML types: string, int, float64,
// bool, time.Time for unquoted timestamps, []any and map[string]any.
type RawDocument struct {
	Path     string
	Metadata map[string]any
	Body     string
}

// Note is a validated document ready to be stored.
type Note struct {
	Title     string
	Slug      string
	CreatedAt string // YYYY-MM-DD
	Body      string
	Tags      []string
}
