package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format resume text into downloads without the language model",
	Long:  "Classifies each line of a resume, builds the document and writes one file per format. Use - as --in to read standard input.",
	RunE:  runFormat,
}

var (
	fmtIn      string
	fmtName    string
	fmtOut     string
	fmtFormats []string
	fmtShow    bool
)

func init() {
	formatCmd.Flags().StringVarP(&fmtIn, "in", "i", "", "Path to the resume text, or - for stdin (required)")
	formatCmd.Flags().StringVarP(&fmtName, "name", "n", "", "Candidate name, used in the file names")
	formatCmd.Flags().StringVarP(&fmtOut, "out", "o", "", "Output directory")
	formatCmd.Flags().StringSliceVarP(&fmtFormats, "format", "f", nil, "Formats to write (txt, docx)")
	formatCmd.Flags().BoolVar(&fmtShow, "show", false, "Print the classification of every line")

	_ = formatCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(formatCmd)
}

// formatOptions are the resolved inputs of one format run.
type formatOptions struct {
	Name    string
	OutDir  string
	Formats []rendering.Format
	Show    bool
	// Printer receives verbose summaries; nil disables them
	Printer *observability.Printer
}

func runFormat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("name") {
		cfg.Name = fmtName
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = fmtOut
	}
	if cmd.Flags().Changed("format") {
		cfg.Formats = fmtFormats
	}
	formats, err := cfg.OutputFormats()
	if err != nil {
		return err
	}

	text, err := readInput(fmtIn, cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := formatOptions{
		Name:    cfg.Name,
		OutDir:  cfg.OutDir,
		Formats: formats,
		Show:    fmtShow,
	}
	if cfg.Verbose {
		opts.Printer = observability.NewPrinter(cmd.ErrOrStderr())
	}
	return formatText(text, opts, cmd.OutOrStdout())
}

// readInput reads path, or stdin when path is "-". Text is returned as is so
// every input line becomes one paragraph. PDF and Word files are extracted.
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	text, err := ingestion.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text, nil
}

// formatText classifies and builds text, then writes each format to
// opts.OutDir. A failing format does not stop the others.
func formatText(text string, opts formatOptions, w io.Writer) error {
	lines := formatting.ClassifyText(text)
	if opts.Show {
		for i, line := range lines {
			_, _ = fmt.Fprintf(w, "%4d  %-7s %s\n", i+1, line.Kind, line.Content)
		}
	}

	doc := formatting.Build(lines)
	if opts.Printer != nil {
		opts.Printer.PrintDocument(doc)
	}

	written := 0
	var lastErr error
	for _, format := range opts.Formats {
		exported, err := rendering.Export(doc, format, opts.Name)
		if err == nil {
			var path string
			if path, err = exported.Save(opts.OutDir); err == nil {
				written++
				_, _ = fmt.Fprintf(w, "Wrote %s\n", path)
				continue
			}
		}
		lastErr = err
		_, _ = fmt.Fprintf(os.Stderr, "Failed to export %s: %v\n", format, err)
	}

	if written == 0 && lastErr != nil {
		return fmt.Errorf("no output written: %w", lastErr)
	}
	return nil
}
