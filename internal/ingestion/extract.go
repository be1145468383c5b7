package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported source MIME types
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var extensionTypes = map[string]string{
	".txt":  MIMEText,
	".text": MIMEText,
	".md":   MIMEText,
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
}

// DetectMIME resolves the media type of an upload. The declared type wins
// unless it is empty or generic, in which case the file extension decides.
func DetectMIME(filename, declared string) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mediaType
		}
		declared = strings.ToLower(declared)
		if declared != "application/octet-stream" {
			return declared
		}
	}
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return declared
}

// Extract returns the cleaned text content of data interpreted as mimeType.
// A document with no text left after cleaning is an error.
func Extract(data []byte, mimeType string) (string, error) {
	text, err := ExtractRaw(data, mimeType)
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", &ExtractionError{MIME: mimeType, Message: "document is empty", Cause: ErrNoText}
	}
	return text, nil
}

// ExtractRaw returns the text content of data interpreted as mimeType
// without cleaning it. Plain text comes back unchanged and may be empty.
func ExtractRaw(data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	switch mimeType {
	case MIMEText:
		if !utf8.Valid(data) {
			return "", &ExtractionError{MIME: mimeType, Message: "text is not valid UTF-8"}
		}
		return string(data), nil
	case MIMEPDF:
		text, err = extractPDFText(data)
	case MIMEDOCX:
		text, err = extractDocxText(data)
	default:
		return "", &ExtractionError{MIME: mimeType, Message: "cannot read upload", Cause: ErrUnsupportedType}
	}
	if err != nil {
		return "", &ExtractionError{MIME: mimeType, Message: "failed to read document", Cause: err}
	}
	return text, nil
}

// ReadFile reads a local file and returns its uncleaned text. Files without a
// known extension are read as plain text.
func ReadFile(path string) (string, error) {
	content, err := readLocal(path)
	if err != nil {
		return "", err
	}
	mimeType := DetectMIME(path, "")
	if mimeType == "" {
		mimeType = MIMEText
	}
	return ExtractRaw(content, mimeType)
}

func readLocal(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// IngestFile reads a resume or job posting from disk and returns its cleaned text.
func IngestFile(path string) (string, *Metadata, error) {
	content, err := readLocal(path)
	if err != nil {
		return "", nil, err
	}

	mimeType := DetectMIME(path, "")
	if mimeType == "" {
		mimeType = MIMEText
	}
	text, err := Extract(content, mimeType)
	if err != nil {
		return "", nil, err
	}

	metadata := NewMetadata(text, "")
	metadata.Filename = filepath.Base(path)
	metadata.MIMEType = mimeType
	return text, metadata, nil
}

// extractPDFText concatenates the plain text of every page.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// extractDocxText returns the paragraphs of a DOCX body joined by newlines.
func extractDocxText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read docx: %w", err)
	}
	defer func() { _ = r.Close() }()

	return paragraphText(r.Editable().GetContent())
}

// paragraphText walks WordprocessingML and collects run text per paragraph.
func paragraphText(documentXML string) (string, error) {
	const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		inBody     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = true
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inBody {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
