// Package mcptools exposes resume tailoring and formatting as MCP tools.
package mcptools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names
const (
	TailorResumeTool = "tailor_resume"
	FormatResumeTool = "format_resume"
)

// Options configures the registered tools.
type Options struct {
	// OutDir receives exported files. Empty means exports are not written.
	OutDir  string
	Formats []rendering.Format
	Verbose bool
}

// TailorInput is the input of tailor_resume.
type TailorInput struct {
	Name           string `json:"name,omitempty" jsonschema:"Candidate name, used in the download file names"`
	ResumeText     string `json:"resume_text,omitempty" jsonschema:"Resume text. Used when resume_path is empty or unreadable"`
	ResumePath     string `json:"resume_path,omitempty" jsonschema:"Path to a .txt, .pdf or .docx resume on the server"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"Job description text. Takes precedence over job_url"`
	JobURL         string `json:"job_url,omitempty" jsonschema:"URL of the job posting to fetch"`
}

// TailorOutput is the output of tailor_resume.
type TailorOutput struct {
	SessionID     string   `json:"session_id"`
	Name          string   `json:"name"`
	GeneratedText string   `json:"generated_text"`
	ExpiresAt     string   `json:"expires_at"`
	Files         []string `json:"files,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// FormatInput is the input of format_resume.
type FormatInput struct {
	Text   string `json:"text,omitempty" jsonschema:"Resume text to format. Empty text gives a single blank paragraph"`
	Name   string `json:"name,omitempty" jsonschema:"Candidate name, used in the file name"`
	Format string `json:"format,omitempty" jsonschema:"txt or docx (default docx)"`
}

// FormatOutput is the output of format_resume.
type FormatOutput struct {
	Filename   string         `json:"filename"`
	Format     string         `json:"format"`
	Bytes      int            `json:"bytes"`
	Path       string         `json:"path,omitempty"`
	Paragraphs []ParagraphOut `json:"paragraphs"`
}

// ParagraphOut describes one built paragraph.
type ParagraphOut struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// NewServer creates an MCP server with every tool registered.
func NewServer(version string, service *pipeline.Service, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "resume-builder",
		Version: version,
	}, nil)
	RegisterTools(server, service, opts)
	return server
}

// RegisterTools registers tailor_resume and format_resume on server.
func RegisterTools(server *mcp.Server, service *pipeline.Service, opts Options) {
	registerTailorResume(server, service, opts)
	registerFormatResume(server, opts)
}

func registerTailorResume(server *mcp.Server, service *pipeline.Service, opts Options) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        TailorResumeTool,
		Description: "Tailor a resume to a job posting. Provide the resume as text or a file path and the position as a description or URL. Returns the generated resume text and, when an output directory is configured, the exported files.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TailorInput) (*mcp.CallToolResult, TailorOutput, error) {
		req := pipeline.Request{
			DisplayName:  input.Name,
			ResumeText:   input.ResumeText,
			PositionText: input.JobDescription,
			PositionURL:  input.JobURL,
		}
		if input.ResumePath != "" {
			upload, err := readUpload(input.ResumePath)
			if err != nil && input.ResumeText == "" {
				return nil, TailorOutput{}, err
			}
			req.Upload = upload
		}

		result, err := service.Generate(ctx, req)
		if err != nil {
			return nil, TailorOutput{}, err
		}

		out := TailorOutput{
			SessionID:     result.Session.ID,
			Name:          result.Session.DisplayName,
			GeneratedText: result.Session.GeneratedText,
			ExpiresAt:     result.Session.ExpiresAt.Format(time.RFC3339),
			Warnings:      result.Warnings,
		}
		if opts.OutDir == "" {
			return nil, out, nil
		}

		for _, download := range service.ExportAll(result.Session, opts.Formats...) {
			if download.Err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("%s export failed: %v", download.Format, download.Err))
				continue
			}
			path, err := download.Exported.Save(opts.OutDir)
			if err != nil {
				out.Warnings = append(out.Warnings, err.Error())
				continue
			}
			out.Files = append(out.Files, path)
		}
		if opts.Verbose {
			log.Printf("[VERBOSE] %s wrote %d files for session %s", TailorResumeTool, len(out.Files), out.SessionID)
		}
		return nil, out, nil
	})
}

func registerFormatResume(server *mcp.Server, opts Options) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        FormatResumeTool,
		Description: "Format resume text into a document without calling the language model. Lines are classified as section headers, bullets or body text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: opts.OutDir == ""},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input FormatInput) (*mcp.CallToolResult, FormatOutput, error) {
		format := rendering.FormatDOCX
		if input.Format != "" {
			parsed, err := rendering.ParseFormat(input.Format)
			if err != nil {
				return nil, FormatOutput{}, err
			}
			format = parsed
		}

		doc := formatting.BuildText(input.Text)
		exported, err := rendering.Export(doc, format, input.Name)
		if err != nil {
			return nil, FormatOutput{}, err
		}

		out := FormatOutput{
			Filename:   exported.Filename,
			Format:     string(exported.Format),
			Bytes:      len(exported.Data),
			Paragraphs: make([]ParagraphOut, 0, doc.Len()),
		}
		for _, p := range doc.Paragraphs {
			out.Paragraphs = append(out.Paragraphs, ParagraphOut{Kind: p.Kind.String(), Text: p.Text})
		}
		if opts.OutDir != "" {
			if out.Path, err = exported.Save(opts.OutDir); err != nil {
				return nil, FormatOutput{}, err
			}
		}
		return nil, out, nil
	})
}

// readUpload loads a resume file from disk for the pipeline to extract.
func readUpload(path string) (*pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}
	return &pipeline.Upload{Filename: filepath.Base(path), Data: data}, nil
}
