package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedSchemas(t *testing.T) {
	for _, name := range []string{ConfigSchema, FormatRequestSchema} {
		content, err := Load(name)
		require.NoError(t, err, name)
		assert.Contains(t, content, `"$schema"`)
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("missing.schema.json")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
	assert.Contains(t, err.Error(), "schema not embedded")
}

func TestValidate_ConfigValid(t *testing.T) {
	doc := `{"port": 8080, "model": "gemini-2.5-pro", "temperature": 0.7, "session_ttl": "90m", "formats": ["txt", "docx"]}`
	assert.NoError(t, Validate(ConfigSchema, []byte(doc)))
}

func TestValidate_ConfigWrongType(t *testing.T) {
	err := Validate(ConfigSchema, []byte(`{"port": "eighty"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "port")
}

func TestValidate_ConfigUnknownField(t *testing.T) {
	err := Validate(ConfigSchema, []byte(`{"database_url": "postgres://x"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "database_url")
}

func TestValidate_ConfigBadDuration(t *testing.T) {
	err := Validate(ConfigSchema, []byte(`{"session_ttl": "an hour"}`))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "session_ttl")
}

func TestValidate_ConfigUnknownFormat(t *testing.T) {
	err := Validate(ConfigSchema, []byte(`{"formats": ["pdf"]}`))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidate_FormatRequest(t *testing.T) {
	assert.NoError(t, Validate(FormatRequestSchema, []byte(`{"text": "SKILLS:\n- Go", "name": "Jane", "format": "docx"}`)))

	err := Validate(FormatRequestSchema, []byte(`{"name": "Jane"}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "text")

	assert.NoError(t, Validate(FormatRequestSchema, []byte(`{"text": ""}`)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(ConfigSchema, []byte(`{ invalid`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateValue_DecodedMapping(t *testing.T) {
	value := map[string]any{
		"port":    9000,
		"verbose": true,
		"formats": []any{"docx"},
	}
	assert.NoError(t, ValidateValue(ConfigSchema, value))

	value["verbose"] = "yes"
	err := ValidateValue(ConfigSchema, value)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "verbose")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 1)
	assert.Contains(t, validationErr.Errors[0].Message, "name")
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "port", Message: "Invalid type"}}}
	assert.Equal(t, "validation failed:\n  1. port: Invalid type\n", err.Error())
}
