package rendering

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/formatting"
)

// PlainText joins paragraph texts with newlines. Blank paragraphs become blank lines.
func PlainText(doc *formatting.Document) string {
	if doc == nil {
		return ""
	}
	lines := make([]string, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// Text exports a document as plain text.
func Text(doc *formatting.Document, displayName string) (*Exported, error) {
	if doc == nil {
		return nil, &ExportError{Format: FormatText, Message: "document is nil"}
	}
	return &Exported{
		Format:   FormatText,
		MIMEType: MIMEText,
		Filename: Filename(displayName, FormatText),
		Data:     []byte(PlainText(doc)),
	}, nil
}

// RawText exports generated text verbatim, without classification.
func RawText(text, displayName string) *Exported {
	return &Exported{
		Format:   FormatText,
		MIMEType: MIMEText,
		Filename: Filename(displayName, FormatText),
		Data:     []byte(text),
	}
}
