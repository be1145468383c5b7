package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Tailor a resume to a job posting and write the downloads",
	Long: `Runs the full pipeline: reads the resume and the job posting, requests the tailored resume, then writes one file per format.

A failed export of one format is reported without blocking the others.`,
	RunE: runGenerate,
}

var (
	genResume     string
	genResumeText string
	genJob        string
	genJobURL     string
	genName       string
	genOut        string
	genFormats    []string
)

func init() {
	generateCmd.Flags().StringVarP(&genResume, "resume", "r", "", "Path to the resume (.txt, .pdf or .docx)")
	generateCmd.Flags().StringVar(&genResumeText, "resume-text", "", "Resume text, used when --resume is missing or unreadable")
	generateCmd.Flags().StringVarP(&genJob, "job", "j", "", "Path to the job posting (mutually exclusive with --job-url)")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Candidate name, used in the file names")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Output directory")
	generateCmd.Flags().StringSliceVarP(&genFormats, "format", "f", nil, "Formats to write (txt, docx)")
	generateCmd.Flags().Bool("use-browser", false, "Use headless browser for SPA sites (requires Chrome)")

	rootCmd.AddCommand(generateCmd)
}

// generateOptions are the resolved inputs of one generate run.
type generateOptions struct {
	ResumePath string
	ResumeText string
	JobPath    string
	JobURL     string
	Name       string
	OutDir     string
	Formats    []rendering.Format
	// Printer receives verbose summaries; nil disables them
	Printer *observability.Printer
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if genJob != "" && genJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("name") {
		cfg.Name = genName
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = genOut
	}
	if cmd.Flags().Changed("format") {
		cfg.Formats = genFormats
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser, _ = cmd.Flags().GetBool("use-browser")
	}
	formats, err := cfg.OutputFormats()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	opts := generateOptions{
		ResumePath: genResume,
		ResumeText: genResumeText,
		JobPath:    genJob,
		JobURL:     genJobURL,
		Name:       cfg.Name,
		OutDir:     cfg.OutDir,
		Formats:    formats,
	}
	if cfg.Verbose {
		opts.Printer = observability.NewPrinter(cmd.ErrOrStderr())
	}
	return generateResume(ctx, svc.Service, opts, cmd.OutOrStdout())
}

// generateResume runs the pipeline and writes every requested format to
// opts.OutDir. It fails only when generation fails or no format was written.
func generateResume(ctx context.Context, svc *pipeline.Service, opts generateOptions, w io.Writer) error {
	req := pipeline.Request{
		DisplayName: opts.Name,
		ResumeText:  opts.ResumeText,
		PositionURL: opts.JobURL,
	}

	if opts.ResumePath != "" {
		data, err := os.ReadFile(opts.ResumePath)
		switch {
		case err == nil:
			req.Upload = &pipeline.Upload{Filename: filepath.Base(opts.ResumePath), Data: data}
		case opts.ResumeText == "":
			return fmt.Errorf("failed to read resume: %w", err)
		default:
			_, _ = fmt.Fprintf(w, "Warning: could not read %s, using --resume-text instead\n", opts.ResumePath)
		}
	}

	if opts.JobPath != "" {
		text, _, err := ingestion.IngestFile(opts.JobPath)
		if err != nil {
			return fmt.Errorf("failed to read job posting: %w", err)
		}
		req.PositionText = text
	}

	result, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	if opts.Printer != nil {
		opts.Printer.PrintSession(result)
		opts.Printer.PrintDocument(result.Document)
	}

	downloads := svc.ExportAll(result.Session, opts.Formats...)
	if opts.Printer != nil {
		opts.Printer.PrintDownloads(downloads)
	}

	var failures []error
	written := 0
	for _, download := range downloads {
		if download.Err != nil {
			failures = append(failures, download.Err)
			_, _ = fmt.Fprintf(w, "Failed to export %s: %v\n", download.Format, download.Err)
			continue
		}
		path, err := download.Exported.Save(opts.OutDir)
		if err != nil {
			failures = append(failures, err)
			_, _ = fmt.Fprintf(w, "Failed to write %s: %v\n", download.Format, err)
			continue
		}
		written++
		_, _ = fmt.Fprintf(w, "Wrote %s\n", path)
	}

	if written == 0 {
		return fmt.Errorf("no output written: %w", errors.Join(failures...))
	}
	return nil
}
