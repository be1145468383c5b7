package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		format   Format
		expected string
	}{
		{"simple", "John Doe", FormatDOCX, "John_Doe_Resume.docx"},
		{"text", "John Doe", FormatText, "John_Doe_Resume.txt"},
		{"collapses whitespace", "  Mary \t Jane  ", FormatText, "Mary_Jane_Resume.txt"},
		{"strips unsafe", "O'Neil/../<x>", FormatDOCX, "ONeil..x_Resume.docx"},
		{"keeps unicode letters", "José Núñez", FormatDOCX, "José_Núñez_Resume.docx"},
		{"keeps hyphen", "Anne-Marie Smith", FormatText, "Anne-Marie_Smith_Resume.txt"},
		{"empty", "", FormatDOCX, "Resume.docx"},
		{"only symbols", "///", FormatText, "Resume.txt"},
		{"leading dots", "..hidden", FormatText, "hidden_Resume.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Filename(tt.display, tt.format))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"txt", "TXT", "text", ".txt", " txt "} {
		f, err := ParseFormat(s)
		require.NoError(t, err, s)
		assert.Equal(t, FormatText, f)
	}
	for _, s := range []string{"docx", "DOCX", "word", ".docx"} {
		f, err := ParseFormat(s)
		require.NoError(t, err, s)
		assert.Equal(t, FormatDOCX, f)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormat_MIMEType(t *testing.T) {
	assert.Equal(t, MIMEText, FormatText.MIMEType())
	assert.Equal(t, MIMEDOCX, FormatDOCX.MIMEType())
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatText, FormatDOCX}, Formats())
}

func TestExport_Dispatch(t *testing.T) {
	doc := formatting.BuildText("Body line.")

	txt, err := Export(doc, FormatText, "Jane")
	require.NoError(t, err)
	assert.Equal(t, FormatText, txt.Format)
	assert.Equal(t, "Body line.", string(txt.Data))

	docxFile, err := Export(doc, FormatDOCX, "Jane")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, docxFile.Format)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := Export(formatting.BuildText("x"), Format("pdf"), "Jane")

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, Format("pdf"), exportErr.Format)
}

func TestPlainText_RoundTrip(t *testing.T) {
	inputs := []string{
		"Line one\n\nLine two.",
		"just one line",
		"",
		"\n\n",
		"a sentence.\nanother sentence, with a comma\n\nfinal words",
	}
	for _, input := range inputs {
		doc := formatting.BuildText(input)
		assert.Equal(t, input, PlainText(doc), "input %q", input)
	}
}

func TestPlainText_Scenario(t *testing.T) {
	doc := formatting.BuildText("SKILLS:\n- Python\n- Go\n\nSummary text.")
	assert.Equal(t, "SKILLS:\nPython\nGo\n\nSummary text.", PlainText(doc))
}

func TestPlainText_Empty(t *testing.T) {
	assert.Equal(t, "", PlainText(formatting.NewBuilder().Document()))
	assert.Equal(t, "", PlainText(nil))
}

func TestText_Export(t *testing.T) {
	exported, err := Text(formatting.BuildText("A\nB"), "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, MIMEText, exported.MIMEType)
	assert.Equal(t, "Jane_Doe_Resume.txt", exported.Filename)
	assert.Equal(t, "A\nB", string(exported.Data))
}

func TestText_NilDocument(t *testing.T) {
	_, err := Text(nil, "Jane")
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, FormatText, exportErr.Format)
}

func TestRawText(t *testing.T) {
	raw := "SKILLS:\n- Python\n\n  indented  "
	exported := RawText(raw, "Jane Doe")

	assert.Equal(t, raw, string(exported.Data))
	assert.Equal(t, "Jane_Doe_Resume.txt", exported.Filename)
	assert.Equal(t, FormatText, exported.Format)
}

func TestExportError_Message(t *testing.T) {
	err := &ExportError{Format: FormatDOCX, Message: "boom"}
	assert.Equal(t, "export error (docx): boom", err.Error())

	wrapped := &ExportError{Format: FormatText, Message: "boom", Cause: assert.AnError}
	assert.True(t, strings.HasPrefix(wrapped.Error(), "export error (txt): boom: "))
	assert.ErrorIs(t, wrapped, assert.AnError)
}

func TestExported_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exported, err := Text(formatting.BuildText("A\nB"), "Jane Doe")
	require.NoError(t, err)

	path, err := exported.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Jane_Doe_Resume.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", string(data))
}
