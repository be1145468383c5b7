package rendering

import (
	"archive/zip"
	"bytes"
	"embed"
	"io"
	"text/template"
	"time"

	"github.com/jonathan/resume-builder/internal/formatting"
)

// packageModified is the modification time of every package part, so the
// same document always serializes to the same bytes.
var packageModified = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

//go:embed templates/*.xml
var templateFiles embed.FS

// headerColor is the run color applied to section headers.
const headerColor = "000000"

// documentCreator is written to the package core properties.
const documentCreator = "resume-builder"

// packagePart maps a zip entry of the OOXML package to the template producing it.
type packagePart struct {
	Name     string
	Template string
}

// packageParts lists the parts of a WordprocessingML package in write order.
var packageParts = []packagePart{
	{Name: "[Content_Types].xml", Template: "content_types.xml"},
	{Name: "_rels/.rels", Template: "rels.xml"},
	{Name: "docProps/core.xml", Template: "core.xml"},
	{Name: "word/document.xml", Template: "document.xml"},
	{Name: "word/styles.xml", Template: "styles.xml"},
	{Name: "word/numbering.xml", Template: "numbering.xml"},
	{Name: "word/_rels/document.xml.rels", Template: "document_rels.xml"},
}

// PackageData represents the data passed to the package part templates
type PackageData struct {
	Title        string
	Creator      string
	BulletIndent int
	Margins      MarginsData
	Paragraphs   []ParagraphData
}

// MarginsData holds page margins in twips
type MarginsData struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// ParagraphData is one paragraph prepared for the document.xml template.
// Text is already escaped.
type ParagraphData struct {
	Empty         bool
	HasProperties bool
	ListStyle     bool
	SpaceAfter    int
	Indent        int
	Bold          bool
	Color         string
	Size          int
	Text          string
}

// DOCX serializes doc into an in-memory OOXML package.
func DOCX(doc *formatting.Document, displayName string) (*Exported, error) {
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, doc, displayName); err != nil {
		return nil, err
	}
	return &Exported{
		Format:   FormatDOCX,
		MIMEType: MIMEDOCX,
		Filename: Filename(displayName, FormatDOCX),
		Data:     buf.Bytes(),
	}, nil
}

// WriteDOCX writes doc as an OOXML package to w. A document with no
// paragraphs still produces a valid package.
func WriteDOCX(w io.Writer, doc *formatting.Document, title string) error {
	if doc == nil {
		return &ExportError{Format: FormatDOCX, Message: "document is nil"}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return &ExportError{Format: FormatDOCX, Message: "failed to load package templates", Cause: err}
	}

	data := buildPackageData(doc, title)

	zw := zip.NewWriter(w)
	for _, part := range packageParts {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.Name,
			Method:   zip.Deflate,
			Modified: packageModified,
		})
		if err != nil {
			return &ExportError{Format: FormatDOCX, Message: "failed to create " + part.Name, Cause: err}
		}
		if err := tmpl.ExecuteTemplate(entry, part.Template, data); err != nil {
			return &ExportError{
				Format:  FormatDOCX,
				Message: "failed to write " + part.Name,
				Cause:   &TemplateError{Message: "failed to execute " + part.Template, Cause: err},
			}
		}
	}

	if err := zw.Close(); err != nil {
		return &ExportError{Format: FormatDOCX, Message: "failed to finalize package", Cause: err}
	}
	return nil
}

// parseTemplates parses the embedded package part templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("docx").ParseFS(templateFiles, "templates/*.xml")
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse templates",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// buildPackageData converts the document model into template data.
func buildPackageData(doc *formatting.Document, title string) *PackageData {
	paragraphs := make([]ParagraphData, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		paragraphs = append(paragraphs, paragraphData(p))
	}

	return &PackageData{
		Title:        EscapeXML(title),
		Creator:      documentCreator,
		BulletIndent: int(formatting.BulletIndent),
		Margins: MarginsData{
			Top:    int(doc.Margins.Top),
			Bottom: int(doc.Margins.Bottom),
			Left:   int(doc.Margins.Left),
			Right:  int(doc.Margins.Right),
		},
		Paragraphs: paragraphs,
	}
}

func paragraphData(p formatting.Paragraph) ParagraphData {
	if p.IsEmpty() {
		return ParagraphData{Empty: true}
	}

	data := ParagraphData{
		ListStyle:  p.ListStyle,
		SpaceAfter: int(p.SpaceAfter),
		Indent:     int(p.Indent),
		Bold:       p.Bold,
		Size:       p.FontSize.HalfPoints(),
		Text:       EscapeXML(p.Text),
	}
	data.HasProperties = data.ListStyle || data.SpaceAfter > 0 || data.Indent > 0
	if p.Kind == formatting.SectionHeader {
		data.Color = headerColor
	}
	return data
}
