package pipeline

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Input fields, in the order they are checked
const (
	FieldResume   = "resume"
	FieldPosition = "position"
	FieldName     = "name"
)

// InputMissingError reports a required input that was absent or blank.
// It is returned before any completion is requested. Cause is set when the
// input was supplied but could not be read, such as an unreadable upload.
type InputMissingError struct {
	Field string
	Cause error
}

func (e *InputMissingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("missing input: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("missing input: %s", e.Field)
}

func (e *InputMissingError) Unwrap() error {
	return e.Cause
}

// InvalidInputError reports an input that is present but unusable.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// CompletionError wraps a failed or empty completion. No partial document
// is produced when it occurs.
type CompletionError struct {
	Cause error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("resume generation failed: %v", e.Cause)
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// PositionFetchError wraps a failure to retrieve the job posting from its URL.
type PositionFetchError struct {
	URL   string
	Cause error
}

func (e *PositionFetchError) Error() string {
	return fmt.Sprintf("failed to fetch job posting %s: %v", e.URL, e.Cause)
}

func (e *PositionFetchError) Unwrap() error {
	return e.Cause
}
