package internalerr

import "errors"

// Sentinel errors for each failure kind of an ingestion run.
// File-level kinds are absorbed by the pipeline; only ErrFatalInit and
// ErrInvalidConfig abort a run.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrParse         = errors.New("parse error")
	ErrValidation    = errors.New("validation failure")
	ErrTagCoercion   = errors.New("tag coercion warning")
	ErrStore         = errors.New("store fault")
	ErrFatalInit     = errors.New("fatal init error")
	ErrInvalidConfig = errors.New("invalid configuration")
)
