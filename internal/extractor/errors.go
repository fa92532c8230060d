package extractor

import (
	"errors"
	"fmt"
)

// Document-level failures. Both are recoverable: the document is skipped and
// the batch continues.
var (
	// ErrFileNotFound is returned when the document path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrParse is returned when the file is not well-formed XML or has no root element.
	ErrParse = errors.New("malformed XML")
)

// ParseError wraps a document-level failure with the path that caused it.
type ParseError struct {
	// Path is the document that could not be loaded.
	Path string

	// Err is the underlying error. It wraps ErrFileNotFound or ErrParse.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("extractor: cannot load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}
