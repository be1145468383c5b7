// Package pipeline runs one resume generation: extract the source resume,
// tailor it with the completion service, then format and export it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/pipeline/steps"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// Completer produces tailored resume text. llm.Tailorer implements it.
type Completer interface {
	Generate(ctx context.Context, originalResume, positionDescription string) (string, error)
}

// JobFetcher retrieves a job posting's text from a URL.
type JobFetcher func(ctx context.Context, url string) (string, error)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures a Service.
type Options struct {
	Store      *Store
	FetchJob   JobFetcher
	OnProgress ProgressCallback
	Verbose    bool
}

// Result is the outcome of a successful generation.
type Result struct {
	Session  *Session
	Document *formatting.Document
	// Warnings lists recoverable problems, such as an unreadable upload
	// replaced by pasted text.
	Warnings []string
}

// Download is one exported format, or the error that prevented it.
type Download struct {
	Format   rendering.Format
	Exported *rendering.Exported
	Err      error
}

// Service runs the generation pipeline.
type Service struct {
	completer  Completer
	store      *Store
	fetchJob   JobFetcher
	validate   *validator.Validate
	onProgress ProgressCallback
	verbose    bool
}

// NewService creates a Service. A nil Store gets an in-memory store with the default TTL.
func NewService(completer Completer, opts Options) *Service {
	store := opts.Store
	if store == nil {
		store = NewStore(DefaultSessionTTL)
	}
	return &Service{
		completer:  completer,
		store:      store,
		fetchJob:   opts.FetchJob,
		validate:   validator.New(),
		onProgress: opts.OnProgress,
		verbose:    opts.Verbose,
	}
}

// Store returns the session store.
func (s *Service) Store() *Store {
	return s.store
}

// Generate validates req, resolves the resume and position text, requests
// the tailored resume and stores it in a new session.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	return s.GenerateWithProgress(ctx, req, s.onProgress)
}

// GenerateWithProgress is Generate reporting progress to onProgress instead
// of the service-wide callback.
func (s *Service) GenerateWithProgress(ctx context.Context, req Request, onProgress ProgressCallback) (*Result, error) {
	req = req.normalize()
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	tracker := steps.NewTracker()
	result := &Result{}

	resumeText, warning, err := s.resolveResume(req)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	positionText, err := s.resolvePosition(ctx, req)
	if err != nil {
		return nil, err
	}
	s.advance(tracker, onProgress, steps.Extract, fmt.Sprintf("Resolved resume (%d chars) and position (%d chars)", len(resumeText), len(positionText)))

	generated, err := s.completer.Generate(ctx, resumeText, positionText)
	if err != nil {
		return nil, &CompletionError{Cause: err}
	}
	if strings.TrimSpace(generated) == "" {
		return nil, &CompletionError{Cause: errors.New("completion returned no content")}
	}
	s.advance(tracker, onProgress, steps.Complete, fmt.Sprintf("Generated %d chars of tailored resume", len(generated)))

	lines := formatting.ClassifyText(generated)
	s.advance(tracker, onProgress, steps.Classify, fmt.Sprintf("Classified %d lines", len(lines)))

	result.Document = formatting.Build(lines)
	s.advance(tracker, onProgress, steps.Build, fmt.Sprintf("Built %d paragraphs", result.Document.Len()))

	result.Session = s.store.Create(req.DisplayName, generated)
	if s.verbose {
		log.Printf("[VERBOSE] Stored session %s for %q", result.Session.ID, result.Session.DisplayName)
	}
	return result, nil
}

// Export serializes a session's resume. Plain text is the generated text
// verbatim; DOCX goes through classification and document building.
func (s *Service) Export(session *Session, format rendering.Format) (*rendering.Exported, error) {
	if session == nil {
		return nil, ErrSessionNotFound
	}
	tracker := steps.NewTracker(steps.Extract, steps.Complete)

	switch format {
	case rendering.FormatText:
		return rendering.RawText(session.GeneratedText, session.DisplayName), nil
	case rendering.FormatDOCX:
		lines := formatting.ClassifyText(session.GeneratedText)
		s.advance(tracker, s.onProgress, steps.Classify, fmt.Sprintf("Classified %d lines", len(lines)))
		doc := formatting.Build(lines)
		s.advance(tracker, s.onProgress, steps.Build, fmt.Sprintf("Built %d paragraphs", doc.Len()))

		exported, err := rendering.DOCX(doc, session.DisplayName)
		if err != nil {
			return nil, err
		}
		s.advance(tracker, s.onProgress, steps.Export, fmt.Sprintf("Exported %s (%d bytes)", exported.Filename, len(exported.Data)))
		return exported, nil
	default:
		return nil, &rendering.ExportError{Format: format, Message: "unsupported format"}
	}
}

// ExportAll exports every requested format independently; a failure in one
// is recorded in its Download and does not stop the others.
func (s *Service) ExportAll(session *Session, formats ...rendering.Format) []Download {
	if len(formats) == 0 {
		formats = rendering.Formats()
	}
	downloads := make([]Download, 0, len(formats))
	for _, format := range formats {
		exported, err := s.Export(session, format)
		downloads = append(downloads, Download{Format: format, Exported: exported, Err: err})
	}
	return downloads
}

// Session returns a live session by ID.
func (s *Service) Session(id string) (*Session, error) {
	return s.store.Get(id)
}

// resolveResume prefers the upload and falls back to pasted text when the
// upload cannot be read. With no pasted text the resume counts as missing.
func (s *Service) resolveResume(req Request) (string, string, error) {
	if req.Upload == nil {
		return req.ResumeText, "", nil
	}

	mimeType := ingestion.DetectMIME(req.Upload.Filename, req.Upload.ContentType)
	text, err := ingestion.Extract(req.Upload.Data, mimeType)
	if err == nil {
		if s.verbose {
			log.Printf("[VERBOSE] Extracted %d chars from %s (%s)", len(text), req.Upload.Filename, mimeType)
		}
		return text, "", nil
	}

	if req.ResumeText == "" {
		return "", "", &InputMissingError{Field: FieldResume, Cause: err}
	}
	if s.verbose {
		log.Printf("[VERBOSE] Upload %s unreadable (%v), using pasted text", req.Upload.Filename, err)
	}
	return req.ResumeText, fmt.Sprintf("could not read %s, used the pasted resume text instead: %v", req.Upload.Filename, err), nil
}

// resolvePosition prefers pasted text and fetches the URL otherwise.
func (s *Service) resolvePosition(ctx context.Context, req Request) (string, error) {
	if req.PositionText != "" {
		return req.PositionText, nil
	}
	if s.fetchJob == nil {
		return "", &InputMissingError{Field: FieldPosition}
	}

	text, err := s.fetchJob(ctx, req.PositionURL)
	if err != nil {
		return "", &PositionFetchError{URL: req.PositionURL, Cause: err}
	}
	if text == "" {
		return "", &InputMissingError{Field: FieldPosition}
	}
	return text, nil
}

// advance marks a step complete and reports progress.
func (s *Service) advance(tracker *steps.Tracker, onProgress ProgressCallback, step, message string) {
	if err := tracker.Complete(step); err != nil {
		log.Printf("[pipeline] %v", err)
		return
	}
	if s.verbose {
		log.Printf("[VERBOSE] %s %s: %s", steps.Label(step), step, message)
	}
	if onProgress != nil {
		onProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
		})
	}
}

// IngestJobFetcher adapts ingestion.IngestJobFromURL to a JobFetcher.
func IngestJobFetcher(opts ingestion.URLOptions) JobFetcher {
	return func(ctx context.Context, url string) (string, error) {
		text, _, err := ingestion.IngestJobFromURL(ctx, url, opts)
		return text, err
	}
}
