// Package ingestion turns uploaded files and job posting URLs into plain text.
package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for uploads that are not plain text, PDF or DOCX
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when a file parses but holds no readable text
	ErrNoText = errors.New("no text found")
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// ExtractionError reports a source file that could not be turned into text.
type ExtractionError struct {
	MIME    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error (%s): %s: %v", e.MIME, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error (%s): %s", e.MIME, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
