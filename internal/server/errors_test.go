package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusAndErrorCode(t *testing.T) {
	extraction := &ingestion.ExtractionError{MIME: ingestion.MIMEPDF, Message: "failed to read document"}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing input", &pipeline.InputMissingError{Field: pipeline.FieldName}, http.StatusBadRequest, "input_missing"},
		{"invalid input", &pipeline.InvalidInputError{Field: pipeline.FieldPosition, Reason: "bad url"}, http.StatusBadRequest, "invalid_input"},
		{"validation", &ErrValidation{Field: "body", Message: "bad"}, http.StatusBadRequest, "invalid_input"},
		{"schema", &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "text", Message: "required"}}}, http.StatusBadRequest, "invalid_input"},
		{"fetch", &pipeline.PositionFetchError{URL: "https://x", Cause: extraction}, http.StatusBadGateway, "position_fetch_failed"},
		{"completion", &pipeline.CompletionError{Cause: errors.New("quota")}, http.StatusBadGateway, "completion_failed"},
		{"extraction", extraction, http.StatusUnprocessableEntity, "extraction_failed"},
		{"unreadable upload", &pipeline.InputMissingError{Field: pipeline.FieldResume, Cause: extraction}, http.StatusBadRequest, "input_missing"},
		{"not found", pipeline.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{"forbidden", ErrSessionForbidden, http.StatusForbidden, "forbidden"},
		{"too large", &ErrRequestTooLarge{Limit: 10}, http.StatusRequestEntityTooLarge, "request_too_large"},
		{"export", &rendering.ExportError{Format: rendering.FormatDOCX, Message: "boom"}, http.StatusInternalServerError, "export_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"wrapped", fmt.Errorf("outer: %w", pipeline.ErrSessionNotFound), http.StatusNotFound, "session_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please upload a resume file or paste your resume text.",
		UserMessage(&pipeline.InputMissingError{Field: pipeline.FieldResume}))
	assert.Equal(t, "The uploaded resume could not be read. Please upload a resume file or paste your resume text.",
		UserMessage(&pipeline.InputMissingError{Field: pipeline.FieldResume, Cause: errors.New("bad pdf")}))
	assert.Equal(t, "Please paste the job description or provide a job posting URL.",
		UserMessage(&pipeline.InputMissingError{Field: pipeline.FieldPosition}))
	assert.Equal(t, "Please enter your name.",
		UserMessage(fmt.Errorf("wrapped: %w", &pipeline.InputMissingError{Field: pipeline.FieldName})))
	assert.Equal(t, "The resume could not be generated: quota exceeded",
		UserMessage(&pipeline.CompletionError{Cause: errors.New("quota exceeded")}))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestErrValidation_Error(t *testing.T) {
	err := &ErrValidation{Field: "format", Message: "unknown"}
	assert.Equal(t, "validation error: format - unknown", err.Error())
	assert.Equal(t, "request body exceeds 64 bytes", (&ErrRequestTooLarge{Limit: 64}).Error())
}
