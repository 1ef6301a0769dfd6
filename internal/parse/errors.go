// Package parse adapts each source's markup into normalized intermediate
// records. One parser implementation exists per source; parsers do strict
// extraction and leave cross-field fallback policy to the normalizer.
package parse

import (
	"errors"
	"fmt"
)

// ErrorKind classifies parse failures. Parse errors are never retried; the
// candidate is recorded as failed and the run continues.
type ErrorKind string

// Parse error kinds.
const (
	// KindMissingRequiredField means a required field (the title) is absent.
	KindMissingRequiredField ErrorKind = "missing_required_field"
	// KindMalformedDocument means the document structure is unrecognizable.
	KindMalformedDocument ErrorKind = "malformed_document"
)

// Error is a classified parse failure.
type Error struct {
	Kind  ErrorKind
	URL   string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: %s: %s", e.URL, e.Kind, e.Field)
	}
	return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// missingField builds a MissingRequiredField error for the given field.
func missingField(url, field string) *Error {
	return &Error{Kind: KindMissingRequiredField, URL: url, Field: field}
}

// malformed builds a MalformedDocument error.
func malformed(url string, err error) *Error {
	return &Error{Kind: KindMalformedDocument, URL: url, Err: err}
}

// KindOf returns the parse error kind of err, or an empty kind when err is
// not a parse error.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
