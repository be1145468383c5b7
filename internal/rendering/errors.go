// Package rendering serializes resume documents into downloadable formats.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a package part template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// ExportError represents a failure to serialize a document in one format.
// It is reported to the caller and never retried.
type ExportError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error (%s): %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("export error (%s): %s", e.Format, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
