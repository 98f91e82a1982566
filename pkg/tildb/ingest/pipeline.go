package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
	"github.com/cognicore/tildb/pkg/tildb/slug"
	"github.com/cognicore/tildb/pkg/tildb/store"
)

// Pipeline orchestrates the ingestion of one file:
// parse → validate → slug → tags → store
type Pipeline struct {
	validator *Validator
	slugs     *slug.Generator
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline with the given components
func NewPipeline(validator *Validator, slugs *slug.Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		validator: validator,
		slugs:     slugs,
		logger:    logger,
	}
}

// Outcome classifies what happened to one input file.
type Outcome string

const (
	OutcomeStored     Outcome = "stored"
	OutcomeParse      Outcome = "parse_error"
	OutcomeValidation Outcome = "validation_failure"
	OutcomeStore      Outcome = "store_fault"
)

// FileResult records the outcome of one input file.
type FileResult struct {
	Path     string
	Outcome  Outcome
	NoteID   int64
	Title    string
	Err      error
	Warnings []error
}

// Report summarizes a run.
type Report struct {
	RunID   string
	Found   int
	Stored  int
	Skipped map[Outcome]int
	Files   []FileResult
}

// TagWarnings counts the tag warnings across all files.
func (r Report) TagWarnings() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Warnings)
	}
	return n
}

func (r *Report) add(res FileResult) {
	r.Files = append(r.Files, res)
	if res.Outcome == OutcomeStored {
		r.Stored++
		return
	}
	if r.Skipped == nil {
		r.Skipped = make(map[Outcome]int)
	}
	r.Skipped[res.Outcome]++
}

// Prepare turns one file's content into a Note. Tag problems are returned
// as warnings; any error means the file must be skipped.
func (p *Pipeline) Prepare(path string, content []byte) (Note, []error, error) {
	doc, err := ParseDocument(path, content)
	if err != nil {
		return Note{}, nil, err
	}

	note, err := p.validator.Validate(doc)
	if err != nil {
		return Note{}, nil, err
	}

	note.Slug = p.slugs.Slugify(note.Title)
	if note.Slug == "" {
		return Note{}, nil, &ValidationError{Field: KeyTitle, Reason: ReasonEmptySlug, Value: note.Title}
	}

	tags, warnings := NormalizeTags(doc.Metadata[KeyTags])
	note.Tags = tags

	return note, warnings, nil
}

// Write stores the note, its tags and the associations in one transaction
// and returns the note id. Errors are *StoreError.
func (p *Pipeline) Write(ctx context.Context, st store.Store, n Note) (int64, error) {
	var noteID int64
	err := st.WithTx(ctx, func(w store.Writer) error {
		id, err := w.InsertNote(ctx, store.Note{
			Title:     n.Title,
			Slug:      n.Slug,
			CreatedAt: n.CreatedAt,
			Body:      n.Body,
		})
		if err != nil {
			return &StoreError{Title: n.Title, Op: "insert note", Err: err}
		}

		for _, name := range n.Tags {
			tagID, err := w.LookupOrCreateTag(ctx, name)
			if err != nil {
				return &StoreError{Title: n.Title, Op: fmt.Sprintf("lookup tag %q", name), Err: err}
			}
			if err := w.InsertAssociation(ctx, id, tagID); err != nil {
				return &StoreError{Title: n.Title, Op: fmt.Sprintf("associate tag %q", name), Err: err}
			}
		}

		noteID = id
		return nil
	})
	if err != nil {
		var se *StoreError
		if !errors.As(err, &se) {
			err = &StoreError{Title: n.Title, Op: "commit", Err: err}
		}
		return 0, err
	}
	return noteID, nil
}

// ProcessFile runs one file through the pipeline and into the store. It
// never fails the run; the outcome is reported in the FileResult.
func (p *Pipeline) ProcessFile(ctx context.Context, st store.Store, path string, content []byte) FileResult {
	logger := p.logger.With("file", path)
	res := FileResult{Path: path}

	note, warnings, err := p.Prepare(path, content)
	res.Warnings = warnings
	for _, w := range warnings {
		logger.Warn("tag warning", "reason", w.Error())
	}
	if err != nil {
		res.Err = err
		switch {
		case errors.Is(err, internalerr.ErrParse):
			res.Outcome = OutcomeParse
			logger.Warn("skipping file: malformed metadata", "error", err)
		default:
			res.Outcome = OutcomeValidation
			logger.Warn("skipping file: invalid metadata", "error", err)
		}
		return res
	}
	res.Title = note.Title

	id, err := p.Write(ctx, st, note)
	if err != nil {
		res.Outcome = OutcomeStore
		res.Err = err
		logger.Error("skipping file: store fault", "title", note.Title, "error", err)
		return res
	}

	res.Outcome = OutcomeStored
	res.NoteID = id
	logger.Info("stored note", "id", id, "title", note.Title, "slug", note.Slug, "tags", note.Tags)
	return res
}

// Run processes every file in fsys matching pattern, in lexical order.
// Per-file problems are absorbed into the report; the returned error is
// reserved for failures to enumerate the input.
func (p *Pipeline) Run(ctx context.Context, fsys fs.FS, pattern string, st store.Store) (Report, error) {
	var report Report

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return report, fmt.Errorf("list %s: %w", pattern, err)
	}
	sort.Strings(matches)
	report.Found = len(matches)

	p.logger.Info("found note files", "pattern", pattern, "count", len(matches))

	for _, path := range matches {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			res := FileResult{Path: path, Outcome: OutcomeParse, Err: &ParseError{Err: err}}
			p.logger.Warn("skipping file: unreadable", "file", path, "error", err)
			report.add(res)
			continue
		}
		report.add(p.ProcessFile(ctx, st, path, content))
	}

	p.Summarize(report)
	return report, nil
}

// Summarize logs the end-of-run counts and warns when nothing was found or
// nothing was stored.
func (p *Pipeline) Summarize(r Report) {
	p.logger.Info("finished processing",
		"found", r.Found,
		"stored", r.Stored,
		"parse_errors", r.Skipped[OutcomeParse],
		"validation_failures", r.Skipped[OutcomeValidation],
		"store_faults", r.Skipped[OutcomeStore],
		"tag_warnings", r.TagWarnings(),
	)

	switch {
	case r.Found == 0:
		p.logger.Warn("no note files found")
	case r.Stored == 0:
		p.logger.Warn("note files found but none were stored; check earlier warnings")
	}
}
