package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
	"github.com/cognicore/tildb/pkg/tildb/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Create builds a fresh store at path. Any existing database file and its
// journal files are removed first, so every run starts from empty tables.
func Create(ctx context.Context, path string) (store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create store directory: %v", internalerr.ErrFatalInit, err)
		}
	}
	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: remove %s: %v", internalerr.ErrFatalInit, path+suffix, err)
		}
	}

	db, err := open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrFatalInit, err)
	}

	if err := recreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", internalerr.ErrFatalInit, err)
	}

	return &sqliteStore{db: db}, nil
}

// Open opens an existing store without touching its contents.
func Open(ctx context.Context, path string) (store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One shared connection: the run is single-writer and the foreign_keys
	// pragma is per connection.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// recreateSchema drops and defines the three relations
func recreateSchema(ctx context.Context, db *sql.DB) error {
	schema := `
DROP TABLE IF EXISTS note_tags;
DROP TABLE IF EXISTS tags;
DROP TABLE IF EXISTS notes;

CREATE TABLE notes (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL,
	created_at TEXT NOT NULL,
	body TEXT NOT NULL
);

CREATE TABLE tags (
	tag_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE UNIQUE INDEX idx_tags_name ON tags(name);

CREATE TABLE note_tags (
	note_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY(note_id, tag_id),
	FOREIGN KEY(note_id) REFERENCES notes(id),
	FOREIGN KEY(tag_id) REFERENCES tags(tag_id)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// WithTx runs fn in one transaction, committing only when fn succeeds
func (s *sqliteStore) WithTx(ctx context.Context, fn func(w store.Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&txWriter{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

type txWriter struct {
	tx *sql.Tx
}

// InsertNote inserts a note row and returns its id
func (w *txWriter) InsertNote(ctx context.Context, n store.Note) (int64, error) {
	const stmt = `
INSERT INTO notes (title, slug, created_at, body)
VALUES (?, ?, ?, ?)
RETURNING id;
`

	var id int64
	if err := w.tx.QueryRowContext(ctx, stmt, n.Title, n.Slug, n.CreatedAt, n.Body).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

// LookupOrCreateTag finds a tag by name or inserts it
func (w *txWriter) LookupOrCreateTag(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: empty tag name", internalerr.ErrInvalidInput)
	}

	var id int64
	err := w.tx.QueryRowContext(ctx, `SELECT tag_id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup tag %q: %w", name, err)
	}

	if err := w.tx.QueryRowContext(ctx, `INSERT INTO tags (name) VALUES (?) RETURNING tag_id`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	return id, nil
}

// InsertAssociation links a note and a tag unless the link already exists
func (w *txWriter) InsertAssociation(ctx context.Context, noteID, tagID int64) error {
	const stmt = `
INSERT INTO note_tags (note_id, tag_id)
SELECT ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM note_tags WHERE note_id = ? AND tag_id = ?
);
`

	if _, err := w.tx.ExecContext(ctx, stmt, noteID, tagID, noteID, tagID); err != nil {
		return fmt.Errorf("link note %d to tag %d: %w", noteID, tagID, err)
	}
	return nil
}

// GetNote retrieves a note and its tags by id
func (s *sqliteStore) GetNote(ctx context.Context, id int64) (store.Note, error) {
	var n store.Note
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, created_at, body FROM notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.Title, &n.Slug, &n.CreatedAt, &n.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Note{}, fmt.Errorf("note %d: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Note{}, err
	}

	tags, err := s.tagsByNote(ctx, &id)
	if err != nil {
		return store.Note{}, err
	}
	n.Tags = tags[id]
	return n, nil
}

// ListNotes returns every note with its tags, ordered by id
func (s *sqliteStore) ListNotes(ctx context.Context) ([]store.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, slug, created_at, body FROM notes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []store.Note
	for rows.Next() {
		var n store.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Slug, &n.CreatedAt, &n.Body); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.tagsByNote(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].Tags = tags[notes[i].ID]
	}
	return notes, nil
}

// tagsByNote maps note ids to tag names in association order. A nil
// noteID loads every association.
func (s *sqliteStore) tagsByNote(ctx context.Context, noteID *int64) (map[int64][]string, error) {
	query := `
SELECT nt.note_id, t.name
FROM note_tags nt
JOIN tags t ON t.tag_id = nt.tag_id
`
	var args []any
	if noteID != nil {
		query += "WHERE nt.note_id = ?\n"
		args = append(args, *noteID)
	}
	query += "ORDER BY nt.note_id, nt.rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

// ListTags returns every tag ordered by id
func (s *sqliteStore) ListTags(ctx context.Context) ([]store.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag_id, name FROM tags ORDER BY tag_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []store.Tag
	for rows.Next() {
		var t store.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Stats counts rows in each relation
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"notes", &st.Notes},
		{"tags", &st.Tags},
		{"note_tags", &st.Associations},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return store.Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}
