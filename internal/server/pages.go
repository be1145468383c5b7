package server

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

//go:embed templates/*.html
var pageFiles embed.FS

// IndexData represents the data passed to the index page template
type IndexData struct {
	Name           string
	ResumeText     string
	JobDescription string
	JobURL         string
	Error          string
	Warnings       []string
	Session        *pipeline.Session
	Downloads      []DownloadLink
}

// DownloadLink is one download button on the index page
type DownloadLink struct {
	Label string
	URL   string
}

// parsePages parses the embedded HTML templates.
func parsePages() (*template.Template, error) {
	tmpl, err := template.New("pages").ParseFS(pageFiles, "templates/*.html")
	if err != nil {
		return nil, &PageError{Message: "failed to parse page templates", Cause: err}
	}
	return tmpl, nil
}

// PageError represents errors loading the HTML templates
type PageError struct {
	Message string
	Cause   error
}

func (e *PageError) Error() string {
	return e.Message + ": " + e.Cause.Error()
}

func (e *PageError) Unwrap() error {
	return e.Cause
}

func downloadLinks(session *pipeline.Session) []DownloadLink {
	links := make([]DownloadLink, 0, len(rendering.Formats()))
	for _, format := range rendering.Formats() {
		links = append(links, DownloadLink{
			Label: "Download ." + string(format),
			URL:   downloadPath(session.ID, format),
		})
	}
	return links
}

// handleIndex renders the form and, when the caller holds a live session, its result
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexData{}
	if session := s.cookieSession(r); session != nil {
		data.Session = session
		data.Name = session.DisplayName
		data.Downloads = downloadLinks(session)
	}
	s.renderIndex(w, http.StatusOK, data)
}

// handleIndexSubmit runs the pipeline for the HTML form
func (s *Server) handleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	req, err := s.parseGenerateForm(r)
	data := IndexData{
		Name:           req.DisplayName,
		ResumeText:     req.ResumeText,
		JobDescription: req.PositionText,
		JobURL:         req.PositionURL,
	}
	if err != nil {
		data.Error = UserMessage(err)
		s.renderIndex(w, HTTPStatus(err), data)
		return
	}

	result, err := s.service.Generate(r.Context(), req)
	if err != nil {
		data.Error = UserMessage(err)
		s.renderIndex(w, HTTPStatus(err), data)
		return
	}

	token, err := s.tokens.GenerateToken(result.Session)
	if err != nil {
		data.Error = err.Error()
		s.renderIndex(w, http.StatusInternalServerError, data)
		return
	}
	http.SetCookie(w, s.tokens.Cookie(token, result.Session))

	data.Session = result.Session
	data.Warnings = result.Warnings
	data.Downloads = downloadLinks(result.Session)
	s.renderIndex(w, http.StatusOK, data)
}

// cookieSession returns the live session named by the request's token, if any.
func (s *Server) cookieSession(r *http.Request) *pipeline.Session {
	token := middleware.TokenFromRequest(r, SessionCookieName)
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	session, err := s.service.Session(claims.GetSessionID())
	if err != nil {
		return nil
	}
	return session
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, data IndexData) {
	var sb strings.Builder
	if err := s.pages.ExecuteTemplate(&sb, "index", data); err != nil {
		log.Printf("Error rendering index: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}
