package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
	"github.com/cognicore/tildb/pkg/tildb/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	state state

	// FailOn makes the writer return an error for the named operation
	// ("note", "tag", "link") when the argument matches. Used to simulate
	// storage faults.
	FailOn func(op, arg string) error
}

type state struct {
	nextNoteID int64
	nextTagID  int64
	notes      map[int64]store.Note
	tags       map[int64]string
	tagIndex   map[string]int64
	links      []link
}

type link struct {
	noteID int64
	tagID  int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		state: state{
			nextNoteID: 1,
			nextTagID:  1,
			notes:      make(map[int64]store.Note),
			tags:       make(map[int64]string),
			tagIndex:   make(map[string]int64),
		},
	}
}

func (s state) clone() state {
	return state{
		nextNoteID: s.nextNoteID,
		nextTagID:  s.nextTagID,
		notes:      maps.Clone(s.notes),
		tags:       maps.Clone(s.tags),
		tagIndex:   maps.Clone(s.tagIndex),
		links:      slices.Clone(s.links),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// WithTx applies fn to a copy of the current state and swaps it in only
// when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(w store.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &writer{st: s.state.clone(), failOn: s.FailOn}
	if err := fn(w); err != nil {
		return err
	}
	s.state = w.st
	return nil
}

type writer struct {
	st     state
	failOn func(op, arg string) error
}

func (w *writer) fail(op, arg string) error {
	if w.failOn == nil {
		return nil
	}
	return w.failOn(op, arg)
}

func (w *writer) InsertNote(ctx context.Context, n store.Note) (int64, error) {
	if err := w.fail("note", n.Title); err != nil {
		return 0, err
	}

	id := w.st.nextNoteID
	w.st.nextNoteID++
	n.ID = id
	n.Tags = nil
	w.st.notes[id] = n
	return id, nil
}

func (w *writer) LookupOrCreateTag(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: empty tag name", internalerr.ErrInvalidInput)
	}
	if err := w.fail("tag", name); err != nil {
		return 0, err
	}

	if id, ok := w.st.tagIndex[name]; ok {
		return id, nil
	}
	id := w.st.nextTagID
	w.st.nextTagID++
	w.st.tags[id] = name
	w.st.tagIndex[name] = id
	return id, nil
}

func (w *writer) InsertAssociation(ctx context.Context, noteID, tagID int64) error {
	if err := w.fail("link", fmt.Sprintf("%d:%d", noteID, tagID)); err != nil {
		return err
	}
	if _, ok := w.st.notes[noteID]; !ok {
		return fmt.Errorf("note %d: %w", noteID, internalerr.ErrNotFound)
	}
	if _, ok := w.st.tags[tagID]; !ok {
		return fmt.Errorf("tag %d: %w", tagID, internalerr.ErrNotFound)
	}

	l := link{noteID: noteID, tagID: tagID}
	if slices.Contains(w.st.links, l) {
		return nil
	}
	w.st.links = append(w.st.links, l)
	return nil
}

// GetNote implements store.Store.
func (s *Store) GetNote(ctx context.Context, id int64) (store.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.state.notes[id]
	if !ok {
		return store.Note{}, fmt.Errorf("note %d: %w", id, internalerr.ErrNotFound)
	}
	n.Tags = s.tagsFor(id)
	return n, nil
}

// ListNotes implements store.Store.
func (s *Store) ListNotes(ctx context.Context) ([]store.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.state.notes))
	notes := make([]store.Note, 0, len(ids))
	for _, id := range ids {
		n := s.state.notes[id]
		n.Tags = s.tagsFor(id)
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *Store) tagsFor(noteID int64) []string {
	var names []string
	for _, l := range s.state.links {
		if l.noteID == noteID {
			names = append(names, s.state.tags[l.tagID])
		}
	}
	return names
}

// ListTags implements store.Store.
func (s *Store) ListTags(ctx context.Context) ([]store.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.state.tags))
	tags := make([]store.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, store.Tag{ID: id, Name: s.state.tags[id]})
	}
	return tags, nil
}

// Stats implements store.Store.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return store.Stats{
		Notes:        len(s.state.notes),
		Tags:         len(s.state.tags),
		Associations: len(s.state.links),
	}, nil
}
