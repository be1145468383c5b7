package formatting

// Length is a distance in twips (1/1440 inch), the unit WordprocessingML uses
// for margins, indentation and spacing.
type Length int

const (
	twipsPerInch  = 1440
	twipsPerPoint = 20
)

// Inches converts inches to a Length.
func Inches(in float64) Length {
	return Length(in * twipsPerInch)
}

// Points converts typographic points to a Length.
func Points(pt float64) Length {
	return Length(pt * twipsPerPoint)
}

// HalfPoints returns the length in half points, the unit used for font sizes.
func (l Length) HalfPoints() int {
	return int(l) / (twipsPerPoint / 2)
}

// Style constants applied by the Builder.
var (
	HeaderFontSize   = Points(12)
	HeaderSpaceAfter = Points(6)
	BodyFontSize     = Points(11)
	BulletIndent     = Inches(0.25)
)

// Margins holds the page margins of a document.
type Margins struct {
	Top    Length
	Bottom Length
	Left   Length
	Right  Length
}

// DefaultMargins returns 0.5in top/bottom and 0.75in left/right.
func DefaultMargins() Margins {
	return Margins{
		Top:    Inches(0.5),
		Bottom: Inches(0.5),
		Left:   Inches(0.75),
		Right:  Inches(0.75),
	}
}

// Paragraph describes one paragraph of the document before serialization.
// A zero FontSize or SpaceAfter means the container default applies.
type Paragraph struct {
	Kind       Kind
	Text       string
	Bold       bool
	FontSize   Length
	Indent     Length
	ListStyle  bool
	SpaceAfter Length
}

// IsEmpty reports whether the paragraph only exists for spacing.
func (p Paragraph) IsEmpty() bool {
	return p.Kind == BlankLine
}

// Document is the styled, ordered paragraph model of a resume.
type Document struct {
	Margins    Margins
	Paragraphs []Paragraph
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	return len(d.Paragraphs)
}

// Builder appends one paragraph per classified line.
// Paragraphs are never modified once appended.
type Builder struct {
	doc *Document
}

// NewBuilder returns a Builder whose document already carries the page margins.
func NewBuilder() *Builder {
	return &Builder{
		doc: &Document{
			Margins:    DefaultMargins(),
			Paragraphs: []Paragraph{},
		},
	}
}

// Append maps a classified line to its paragraph and appends it.
func (b *Builder) Append(line ClassifiedLine) {
	b.doc.Paragraphs = append(b.doc.Paragraphs, paragraphFor(line))
}

// Document returns the document built so far.
func (b *Builder) Document() *Document {
	return b.doc
}

// Build creates a document from classified lines, preserving their order.
func Build(lines []ClassifiedLine) *Document {
	b := NewBuilder()
	for _, line := range lines {
		b.Append(line)
	}
	return b.Document()
}

// BuildText classifies and builds a document from raw resume text.
func BuildText(text string) *Document {
	return Build(ClassifyText(text))
}

func paragraphFor(line ClassifiedLine) Paragraph {
	switch line.Kind {
	case SectionHeader:
		return Paragraph{
			Kind:       SectionHeader,
			Text:       line.Content,
			Bold:       true,
			FontSize:   HeaderFontSize,
			SpaceAfter: HeaderSpaceAfter,
		}
	case BulletItem:
		return Paragraph{
			Kind:      BulletItem,
			Text:      line.Content,
			FontSize:  BodyFontSize,
			Indent:    BulletIndent,
			ListStyle: true,
		}
	case BodyLine:
		return Paragraph{
			Kind:     BodyLine,
			Text:     line.Content,
			FontSize: BodyFontSize,
		}
	default:
		return Paragraph{Kind: BlankLine}
	}
}
