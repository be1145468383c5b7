// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintSession outputs a summary of a generated session and its warnings.
func (p *Printer) PrintSession(result *pipeline.Result) {
	if result == nil || result.Session == nil {
		return
	}
	session := result.Session

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:  %s\n", session.ID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", session.DisplayName))
	sb.WriteString(fmt.Sprintf("Length:   %d chars, %d lines\n", len(session.GeneratedText), strings.Count(session.GeneratedText, "\n")+1))
	sb.WriteString(fmt.Sprintf("Expires:  %s", session.ExpiresAt.Format(time.RFC3339)))

	if len(result.Warnings) > 0 {
		sb.WriteString("\n\nWarnings:\n")
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("  ! %s\n", w))
		}
	}

	p.printBox("GENERATED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs paragraph counts per kind and the first section headers.
func (p *Printer) PrintDocument(doc *formatting.Document) {
	if doc == nil {
		return
	}

	counts := make(map[formatting.Kind]int)
	var headers []string
	for _, para := range doc.Paragraphs {
		counts[para.Kind]++
		if para.Kind == formatting.SectionHeader {
			headers = append(headers, para.Text)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Paragraphs: %d\n", doc.Len()))
	for _, kind := range []formatting.Kind{formatting.SectionHeader, formatting.BulletItem, formatting.BodyLine, formatting.BlankLine} {
		sb.WriteString(fmt.Sprintf("  %-7s %d\n", kind, counts[kind]))
	}

	if len(headers) > 0 {
		sb.WriteString("\nSections:\n")
		count := min(len(headers), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", headers[i]))
		}
		if len(headers) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(headers)-maxItemsToShow))
		}
	}

	p.printBox("DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDownloads outputs the result of each export, failed ones included.
func (p *Printer) PrintDownloads(downloads []pipeline.Download) {
	if len(downloads) == 0 {
		return
	}

	var sb strings.Builder
	for _, d := range downloads {
		if d.Err != nil {
			sb.WriteString(fmt.Sprintf("✗ %-4s %v\n", d.Format, d.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %-4s %s (%d bytes)\n", d.Format, d.Exported.Filename, len(d.Exported.Data)))
	}

	p.printBox("EXPORTS", strings.TrimSuffix(sb.String(), "\n"))
}
