// Package formatting turns generated resume text into a styled document model.
package formatting

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the classification of a single line of resume text.
type Kind int

const (
	// BlankLine is an empty line, kept for vertical spacing
	BlankLine Kind = iota
	// SectionHeader is an all-caps line or a short line ending in a colon
	SectionHeader
	// BulletItem is a line starting with a bullet glyph, hyphen or asterisk
	BulletItem
	// BodyLine is any other line
	BodyLine
)

// maxColonHeaderLength is the exclusive rune limit for "Heading:" style headers.
const maxColonHeaderLength = 50

// bulletMarkers are stripped from the start of a BulletItem.
const bulletMarkers = "•-* "

func (k Kind) String() string {
	switch k {
	case BlankLine:
		return "blank"
	case SectionHeader:
		return "header"
	case BulletItem:
		return "bullet"
	case BodyLine:
		return "body"
	default:
		return "unknown"
	}
}

// ClassifiedLine is one line of input with its kind and display content.
type ClassifiedLine struct {
	Kind    Kind
	Content string
}

// Classify trims a line and assigns it exactly one Kind.
// Rules are checked in priority order: blank, header, bullet, body.
func Classify(line string) ClassifiedLine {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return ClassifiedLine{Kind: BlankLine}
	case isUpper(line) || (strings.HasSuffix(line, ":") && utf8.RuneCountInString(line) < maxColonHeaderLength):
		return ClassifiedLine{Kind: SectionHeader, Content: line}
	case startsWithBullet(line):
		return ClassifiedLine{Kind: BulletItem, Content: strings.TrimLeft(line, bulletMarkers)}
	default:
		return ClassifiedLine{Kind: BodyLine, Content: line}
	}
}

// ClassifyText splits text on newlines and classifies every line in order.
// An empty string yields a single BlankLine.
func ClassifyText(text string) []ClassifiedLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	classified := make([]ClassifiedLine, 0, len(lines))
	for _, line := range lines {
		classified = append(classified, Classify(line))
	}
	return classified
}

// isUpper reports whether s has at least one uppercase character and no
// lowercase or titlecase ones. Upper and lower follow the Unicode derived
// Uppercase and Lowercase properties, so Roman numerals count as upper and
// ordinal indicators as lower.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if isLowerRune(r) || unicode.IsTitle(r) {
			return false
		}
		if isUpperRune(r) {
			cased = true
		}
	}
	return cased
}

func isUpperRune(r rune) bool {
	return unicode.IsUpper(r) || unicode.Is(unicode.Other_Uppercase, r)
}

func isLowerRune(r rune) bool {
	return unicode.IsLower(r) || unicode.Is(unicode.Other_Lowercase, r)
}

func startsWithBullet(line string) bool {
	return strings.HasPrefix(line, "•") ||
		strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "*")
}
