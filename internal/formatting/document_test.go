package formatting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthConversions(t *testing.T) {
	assert.Equal(t, Length(720), Inches(0.5))
	assert.Equal(t, Length(1080), Inches(0.75))
	assert.Equal(t, Length(360), Inches(0.25))
	assert.Equal(t, Length(240), Points(12))
	assert.Equal(t, 24, Points(12).HalfPoints())
	assert.Equal(t, 22, Points(11).HalfPoints())
}

func TestNewBuilder_SetsMargins(t *testing.T) {
	doc := NewBuilder().Document()

	assert.Equal(t, Inches(0.5), doc.Margins.Top)
	assert.Equal(t, Inches(0.5), doc.Margins.Bottom)
	assert.Equal(t, Inches(0.75), doc.Margins.Left)
	assert.Equal(t, Inches(0.75), doc.Margins.Right)
	assert.Equal(t, 0, doc.Len())
}

func TestBuild_SectionHeader(t *testing.T) {
	doc := Build([]ClassifiedLine{{Kind: SectionHeader, Content: "EXPERIENCE"}})
	require.Equal(t, 1, doc.Len())

	p := doc.Paragraphs[0]
	assert.Equal(t, "EXPERIENCE", p.Text)
	assert.True(t, p.Bold)
	assert.Equal(t, Points(12), p.FontSize)
	assert.Equal(t, Length(0), p.Indent)
	assert.False(t, p.ListStyle)
	assert.Equal(t, Points(6), p.SpaceAfter)
}

func TestBuild_BulletItem(t *testing.T) {
	doc := Build([]ClassifiedLine{{Kind: BulletItem, Content: "Led migration"}})
	require.Equal(t, 1, doc.Len())

	p := doc.Paragraphs[0]
	assert.Equal(t, "Led migration", p.Text)
	assert.False(t, p.Bold)
	assert.Equal(t, Points(11), p.FontSize)
	assert.Equal(t, Inches(0.25), p.Indent)
	assert.True(t, p.ListStyle)
}

func TestBuild_BodyLine(t *testing.T) {
	doc := Build([]ClassifiedLine{{Kind: BodyLine, Content: "Plain text."}})
	require.Equal(t, 1, doc.Len())

	p := doc.Paragraphs[0]
	assert.Equal(t, "Plain text.", p.Text)
	assert.False(t, p.Bold)
	assert.Equal(t, Points(11), p.FontSize)
	assert.Equal(t, Length(0), p.Indent)
	assert.False(t, p.ListStyle)
}

func TestBuild_BlankLineIsEmptyParagraph(t *testing.T) {
	doc := Build([]ClassifiedLine{{Kind: BlankLine}})
	require.Equal(t, 1, doc.Len())

	p := doc.Paragraphs[0]
	assert.True(t, p.IsEmpty())
	assert.Equal(t, Paragraph{Kind: BlankLine}, p)
}

func TestBuild_EmptyContentStillProducesParagraph(t *testing.T) {
	doc := Build([]ClassifiedLine{
		{Kind: BulletItem, Content: ""},
		{Kind: BodyLine, Content: ""},
	})
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "", doc.Paragraphs[0].Text)
	assert.True(t, doc.Paragraphs[0].ListStyle)
	assert.Equal(t, "", doc.Paragraphs[1].Text)
	assert.False(t, doc.Paragraphs[1].IsEmpty())
}

func TestBuildText_Scenario(t *testing.T) {
	doc := BuildText("SKILLS:\n- Python\n- Go\n\nSummary text.")
	require.Equal(t, 5, doc.Len())

	assert.True(t, doc.Paragraphs[0].Bold)
	assert.Equal(t, "SKILLS:", doc.Paragraphs[0].Text)

	assert.True(t, doc.Paragraphs[1].ListStyle)
	assert.Equal(t, "Python", doc.Paragraphs[1].Text)
	assert.True(t, doc.Paragraphs[2].ListStyle)
	assert.Equal(t, "Go", doc.Paragraphs[2].Text)

	assert.True(t, doc.Paragraphs[3].IsEmpty())

	assert.False(t, doc.Paragraphs[4].Bold)
	assert.False(t, doc.Paragraphs[4].ListStyle)
	assert.Equal(t, "Summary text.", doc.Paragraphs[4].Text)
}

func TestBuildText_EmptyInput(t *testing.T) {
	doc := BuildText("")
	require.Equal(t, 1, doc.Len())
	assert.True(t, doc.Paragraphs[0].IsEmpty())
}

func TestBuildText_PreservesOrderAndCount(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		switch i % 4 {
		case 0:
			lines = append(lines, fmt.Sprintf("SECTION %d", i))
		case 1:
			lines = append(lines, fmt.Sprintf("- bullet %d", i))
		case 2:
			lines = append(lines, "")
		default:
			lines = append(lines, fmt.Sprintf("body line %d", i))
		}
	}

	classified := make([]ClassifiedLine, 0, len(lines))
	for _, l := range lines {
		classified = append(classified, Classify(l))
	}
	doc := Build(classified)

	require.Equal(t, len(lines), doc.Len())
	for i, p := range doc.Paragraphs {
		assert.Equal(t, classified[i].Kind, p.Kind, "paragraph %d", i)
		assert.Equal(t, classified[i].Content, p.Text, "paragraph %d", i)
	}
}

func TestBuilder_AppendDoesNotMutateEarlierParagraphs(t *testing.T) {
	b := NewBuilder()
	b.Append(Classify("HEADER"))
	first := b.Document().Paragraphs[0]

	b.Append(Classify("- item"))
	b.Append(Classify("body"))

	assert.Equal(t, first, b.Document().Paragraphs[0])
	assert.Equal(t, 3, b.Document().Len())
}
