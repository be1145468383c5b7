// Package server provides the HTTP front end of the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ErrSessionForbidden indicates a session token for a different session
var ErrSessionForbidden = errors.New("session belongs to another client")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrRequestTooLarge indicates the request body exceeded the upload limit
type ErrRequestTooLarge struct {
	Limit int64
}

func (e *ErrRequestTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		missing    *pipeline.InputMissingError
		invalid    *pipeline.InvalidInputError
		validation *ErrValidation
		schema     *schemas.ValidationError
		extraction *ingestion.ExtractionError
		fetchErr   *pipeline.PositionFetchError
		completion *pipeline.CompletionError
		tooLarge   *ErrRequestTooLarge
	)

	switch {
	case errors.As(err, &missing), errors.As(err, &invalid),
		errors.As(err, &validation), errors.As(err, &schema):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr), errors.As(err, &completion):
		return http.StatusBadGateway
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionForbidden):
		return http.StatusForbidden
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable code for an error
func ErrorCode(err error) string {
	var (
		missing    *pipeline.InputMissingError
		invalid    *pipeline.InvalidInputError
		validation *ErrValidation
		schema     *schemas.ValidationError
		extraction *ingestion.ExtractionError
		fetchErr   *pipeline.PositionFetchError
		completion *pipeline.CompletionError
		tooLarge   *ErrRequestTooLarge
		export     *rendering.ExportError
	)

	switch {
	case errors.As(err, &missing):
		return "input_missing"
	case errors.As(err, &invalid), errors.As(err, &validation), errors.As(err, &schema):
		return "invalid_input"
	case errors.As(err, &fetchErr):
		return "position_fetch_failed"
	case errors.As(err, &completion):
		return "completion_failed"
	case errors.As(err, &extraction):
		return "extraction_failed"
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionForbidden):
		return "forbidden"
	case errors.As(err, &tooLarge):
		return "request_too_large"
	case errors.As(err, &export):
		return "export_failed"
	default:
		return "internal_error"
	}
}

// UserMessage returns the message shown to the user for an error.
func UserMessage(err error) string {
	var missing *pipeline.InputMissingError
	if errors.As(err, &missing) {
		switch missing.Field {
		case pipeline.FieldResume:
			if missing.Cause != nil {
				return "The uploaded resume could not be read. Please upload a resume file or paste your resume text."
			}
			return "Please upload a resume file or paste your resume text."
		case pipeline.FieldPosition:
			return "Please paste the job description or provide a job posting URL."
		case pipeline.FieldName:
			return "Please enter your name."
		}
	}
	var completion *pipeline.CompletionError
	if errors.As(err, &completion) && completion.Cause != nil {
		return "The resume could not be generated: " + completion.Cause.Error()
	}
	return err.Error()
}
