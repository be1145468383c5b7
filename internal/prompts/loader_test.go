package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("tailoring.json", "tailor_resume")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "{{.OriginalResume}}")
	assert.Contains(t, prompt, "{{.PositionDescription}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("tailoring.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestFormat_ValuesAreNotRescanned(t *testing.T) {
	template := "RESUME:\n{{.OriginalResume}}\nJOB:\n{{.PositionDescription}}"
	data := map[string]string{
		"OriginalResume":      "Skills {{.PositionDescription}}",
		"PositionDescription": "Backend role",
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, "RESUME:\nSkills {{.PositionDescription}}\nJOB:\nBackend role", Format(template, data))
	}
}

func TestCaching(t *testing.T) {
	// First call loads from file
	prompt1, err := Get("tailoring.json", "tailor_resume")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("tailoring.json", "tailor_resume")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestRender_TailorResume(t *testing.T) {
	prompt, err := Render("tailoring.json", "tailor_resume", map[string]string{
		"OriginalResume":      "Jane Doe, Go engineer",
		"PositionDescription": "Senior backend role",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "ORIGINAL RESUME:\nJane Doe, Go engineer")
	assert.Contains(t, prompt, "TARGET POSITION DESCRIPTION:\nSenior backend role")
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_MissingKey(t *testing.T) {
	_, err := Render("tailoring.json", "missing", nil)
	assert.Error(t, err)
}

func TestGet_SystemInstruction(t *testing.T) {
	system, err := Get("tailoring.json", "system")
	require.NoError(t, err)
	assert.Contains(t, system, "ATS-friendly")
}
