package ingest

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the only accepted string form of a note date, and the form
// every date is stored in.
const DateLayout = "2006-01-02"

// Metadata keys consumed by the pipeline.
const (
	KeyTitle = "title"
	KeyDate  = "date"
	KeyTags  = "tags"
)

// Validator turns raw metadata into a Note (without slug and tags).
type Validator struct {
	title []validation.Rule
	date  []validation.Rule
}

// NewValidator creates a validator with the note field rules.
func NewValidator() *Validator {
	return &Validator{
		title: []validation.Rule{validation.Required},
		date:  []validation.Rule{validation.Required, validation.Date(DateLayout)},
	}
}

// Validate applies the title rule then the date rule. The returned error
// is always a *ValidationError.
func (v *Validator) Validate(doc RawDocument) (Note, error) {
	title := titleString(doc.Metadata[KeyTitle])
	if err := validation.Validate(title, v.title...); err != nil {
		return Note{}, &ValidationError{Field: KeyTitle, Reason: ReasonMissingTitle}
	}

	createdAt, err := v.createdAt(doc.Metadata[KeyDate])
	if err != nil {
		return Note{}, err
	}

	return Note{
		Title:     title,
		CreatedAt: createdAt,
		Body:      doc.Body,
	}, nil
}

func (v *Validator) createdAt(raw any) (string, error) {
	switch d := raw.(type) {
	case time.Time:
		return d.Format(DateLayout), nil
	case string:
		if err := validation.Validate(d, v.date...); err != nil {
			return "", &ValidationError{Field: KeyDate, Reason: ReasonInvalidDateFormat, Value: d}
		}
		return d, nil
	case nil:
		return "", &ValidationError{Field: KeyDate, Reason: ReasonInvalidDateValue}
	default:
		return "", &ValidationError{Field: KeyDate, Reason: ReasonInvalidDateValue, Value: fmt.Sprintf("%T", raw)}
	}
}

// titleString returns the trimmed title for string and numeric values and
// "" for anything else.
func titleString(raw any) string {
	switch t := raw.(type) {
	case string:
		return strings.TrimSpace(t)
	case int, int64, uint64, float64:
		return fmt.Sprint(t)
	}
	return ""
}
