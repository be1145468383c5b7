package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/fetch"
)

// URLOptions controls job posting retrieval.
type URLOptions struct {
	// UseBrowser re-renders pages whose static HTML is too short
	UseBrowser bool
	Verbose    bool
	Fetch      *fetch.Options
	// Render overrides the headless renderer; nil means fetch.BrowserSimple
	Render fetch.RenderFunc
}

// IngestJobFromURL fetches a job posting and returns its main content as
// cleaned markdown text. Platform detection picks the content selectors.
func IngestJobFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	if err := fetch.ValidateURL(urlStr); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	platform := fetch.DetectPlatform(urlStr)
	if opts.Verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := mainContent(result.HTML, contentSelectors, noiseSelectors, opts.Verbose)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		if opts.Verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				len(text), fetch.MinContentLength)
		}

		render := opts.Render
		if render == nil {
			render = fetch.BrowserSimple
		}
		browserHTML, browserErr := render(ctx, urlStr, opts.Verbose)
		switch {
		case browserErr != nil:
			if opts.Verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
		default:
			if browserText, err := mainContent(browserHTML, contentSelectors, noiseSelectors, opts.Verbose); err == nil {
				text = browserText
				rendered = true
			} else if opts.Verbose {
				log.Printf("[VERBOSE] Browser content extraction failed: %v", err)
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleaned))
	}

	metadata := NewMetadata(cleaned, urlStr)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered
	metadata.MIMEType = MIMEText
	return cleaned, metadata, nil
}

// mainContent converts the selected content to markdown, falling back to
// flattened text when conversion fails.
func mainContent(html string, contentSelectors, noiseSelectors []string, verbose bool) (string, error) {
	inner, err := fetch.ExtractMainHTML(html, contentSelectors, noiseSelectors...)
	if err == nil {
		md, mdErr := fetch.ToMarkdown(inner)
		if mdErr == nil {
			return md, nil
		}
		if verbose {
			log.Printf("[VERBOSE] Markdown conversion failed: %v, using plain text", mdErr)
		}
	}
	return fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
}
