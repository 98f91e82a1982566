package ingest

import (
	"fmt"

	"github.com/cognicore/tildb/pkg/tildb/internalerr"
)

// Validation failure reasons.
const (
	ReasonMissingTitle      = "missing title"
	ReasonInvalidDateFormat = "invalid date format"
	ReasonInvalidDateValue  = "invalid date value"
	ReasonEmptySlug         = "empty slug"
)

// ParseError reports a document whose metadata block cannot be split from
// its body or decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse metadata: %v", e.Err) }

func (e *ParseError) Unwrap() []error { return []error{internalerr.ErrParse, e.Err} }

// ValidationError reports a document that cannot become a Note.
type ValidationError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return internalerr.ErrValidation }

// TagWarning reports a dropped tag element, or a tags field that is not a
// list. Index is -1 for the latter.
type TagWarning struct {
	Index  int
	Reason string
}

func (e *TagWarning) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("tag %d: %s", e.Index, e.Reason)
}

func (e *TagWarning) Unwrap() error { return internalerr.ErrTagCoercion }

// StoreError reports a storage fault while writing one note.
type StoreError struct {
	Title string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s for %q: %v", e.Op, e.Title, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{internalerr.ErrStore, e.Err} }
