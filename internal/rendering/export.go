package rendering

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jonathan/resume-builder/internal/formatting"
)

// Format identifies a download format.
type Format string

const (
	// FormatText is plain UTF-8 text
	FormatText Format = "txt"
	// FormatDOCX is an OOXML WordprocessingML package
	FormatDOCX Format = "docx"
)

// MIME types for each format
const (
	MIMEText = "text/plain; charset=utf-8"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Formats lists every supported format in download order.
func Formats() []Format {
	return []Format{FormatText, FormatDOCX}
}

// ParseFormat converts a user-supplied name ("txt", "text", "docx", "word") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "."))) {
	case "txt", "text":
		return FormatText, nil
	case "docx", "word":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// MIMEType returns the content type for the format.
func (f Format) MIMEType() string {
	if f == FormatDOCX {
		return MIMEDOCX
	}
	return MIMEText
}

// Exported is a serialized document ready for download.
type Exported struct {
	Format   Format
	MIMEType string
	Filename string
	Data     []byte
}

// Save writes the export into dir under its Filename and returns the path.
func (e *Exported) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, e.Filename)
	if err := os.WriteFile(path, e.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Export serializes doc in the given format.
func Export(doc *formatting.Document, format Format, displayName string) (*Exported, error) {
	switch format {
	case FormatText:
		return Text(doc, displayName)
	case FormatDOCX:
		return DOCX(doc, displayName)
	default:
		return nil, &ExportError{Format: format, Message: "unsupported format"}
	}
}

// Filename returns the suggested download name "{Display_Name}_Resume.{ext}".
// Whitespace runs become underscores and characters outside letters, digits,
// '_', '-' and '.' are removed.
func Filename(displayName string, format Format) string {
	var sb strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(displayName) {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			continue
		}
		if pendingSpace && sb.Len() > 0 {
			sb.WriteByte('_')
		}
		pendingSpace = false
		sb.WriteRune(r)
	}

	name := strings.Trim(sb.String(), ".")
	if name == "" {
		return fmt.Sprintf("Resume.%s", format)
	}
	return fmt.Sprintf("%s_Resume.%s", name, format)
}
