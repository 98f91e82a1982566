package store

import "context"

// Store persists notes, tags and the note/tag association for one
// ingestion run.
type Store interface {
	Close() error

	// WithTx runs fn inside a single transaction. Every write made through
	// the Writer is discarded when fn returns an error.
	WithTx(ctx context.Context, fn func(w Writer) error) error

	// Read side
	GetNote(ctx context.Context, id int64) (Note, error)
	ListNotes(ctx context.Context) ([]Note, error)
	ListTags(ctx context.Context) ([]Tag, error)
	Stats(ctx context.Context) (Stats, error)
}

// Writer is the write contract the ingestion pipeline relies on.
type Writer interface {
	// InsertNote stores the note and returns its assigned id. Tags on the
	// note are ignored; use LookupOrCreateTag and InsertAssociation.
	InsertNote(ctx context.Context, n Note) (int64, error)

	// LookupOrCreateTag returns the id of the tag with the given name,
	// creating it on first sight.
	LookupOrCreateTag(ctx context.Context, name string) (int64, error)

	// InsertAssociation links a note to a tag. Linking an already linked
	// pair is a no-op.
	InsertAssociation(ctx context.Context, noteID, tagID int64) error
}

// Note is a stored note row. CreatedAt is always YYYY-MM-DD.
type Note struct {
	ID        int64
	Title     string
	Slug      string
	CreatedAt string
	Body      string
	Tags      []string // populated on reads, in association order
}

// Tag is a stored tag row. Names are unique and case-sensitive.
type Tag struct {
	ID   int64
	Name string
}

// Stats counts the rows of each relation.
type Stats struct {
	Notes        int
	Tags         int
	Associations int
}
