package pipeline

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Upload is a resume file supplied instead of, or alongside, pasted text.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request carries the inputs of one generation. Fields are declared in the
// order missing inputs are reported.
type Request struct {
	ResumeText   string  `json:"resume_text" validate:"required_without=Upload"`
	Upload       *Upload `json:"-"`
	PositionText string  `json:"job_description" validate:"required_without=PositionURL"`
	PositionURL  string  `json:"job_url" validate:"omitempty,url,startswith=http"`
	DisplayName  string  `json:"name" validate:"required,max=120"`
}

var fieldNames = map[string]string{
	"ResumeText":   FieldResume,
	"Upload":       FieldResume,
	"PositionText": FieldPosition,
	"PositionURL":  FieldPosition,
	"DisplayName":  FieldName,
}

// normalize trims text inputs and drops empty uploads so blank values count as missing.
func (r Request) normalize() Request {
	r.ResumeText = strings.TrimSpace(r.ResumeText)
	r.PositionText = strings.TrimSpace(r.PositionText)
	r.PositionURL = strings.TrimSpace(r.PositionURL)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if r.Upload != nil && len(r.Upload.Data) == 0 {
		r.Upload = nil
	}
	return r
}

// validateRequest returns the first failing input as an InputMissingError or
// InvalidInputError.
func validateRequest(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	first := validationErrors[0]
	field := fieldNames[first.StructField()]
	switch first.Tag() {
	case "required", "required_without":
		return &InputMissingError{Field: field}
	case "max":
		return &InvalidInputError{Field: field, Reason: "must be at most " + first.Param() + " characters"}
	case "url", "startswith":
		return &InvalidInputError{Field: field, Reason: "must be an http(s) URL"}
	default:
		return &InvalidInputError{Field: field, Reason: "failed " + first.Tag() + " check"}
	}
}
