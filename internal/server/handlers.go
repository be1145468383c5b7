package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// Multipart form fields accepted by the generate endpoints
const (
	formName           = "name"
	formResumeText     = "resume_text"
	formResumeFile     = "resume_file"
	formJobDescription = "job_description"
	formJobURL         = "job_url"
)

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// ResumeResponse represents a generated resume session
type ResumeResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	GeneratedText string            `json:"generated_text"`
	CreatedAt     string            `json:"created_at"`
	ExpiresAt     string            `json:"expires_at"`
	Token         string            `json:"token,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Downloads     map[string]string `json:"downloads"`
}

// FormatRequest represents the request body for /api/format
type FormatRequest struct {
	Text   string `json:"text"`
	Name   string `json:"name,omitempty"`
	Format string `json:"format,omitempty"`
}

// downloadPath returns the download URL of a session in format.
func downloadPath(sessionID string, format rendering.Format) string {
	return fmt.Sprintf("/api/resumes/%s/resume.%s", sessionID, format)
}

func newResumeResponse(session *pipeline.Session, token string, warnings []string) ResumeResponse {
	downloads := make(map[string]string)
	for _, format := range rendering.Formats() {
		downloads[string(format)] = downloadPath(session.ID, format)
	}
	return ResumeResponse{
		ID:            session.ID,
		Name:          session.DisplayName,
		GeneratedText: session.GeneratedText,
		CreatedAt:     session.CreatedAt.Format(time.RFC3339),
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
		Token:         token,
		Warnings:      warnings,
		Downloads:     downloads,
	}
}

// handleCreateResume runs the full pipeline and returns the new session
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGenerateRequest(w, r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	result, err := s.service.Generate(r.Context(), req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	token, err := s.tokens.GenerateToken(result.Session)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	http.SetCookie(w, s.tokens.Cookie(token, result.Session))

	if s.verbose {
		log.Printf("[VERBOSE] Generated session %s (%d chars)", result.Session.ID, len(result.Session.GeneratedText))
	}
	s.jsonResponse(w, http.StatusCreated, newResumeResponse(result.Session, token, result.Warnings))
}

// handleCreateResumeStream runs the pipeline and streams progress via SSE.
// The session token is delivered in the complete event.
func (s *Server) handleCreateResumeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGenerateRequest(w, r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	stream, err := newGenerationStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.service.GenerateWithProgress(r.Context(), req, stream.Progress)
	if err != nil {
		stream.Fail(ErrorResponse{Error: UserMessage(err), Code: ErrorCode(err), Details: err.Error()})
		return
	}

	token, err := s.tokens.GenerateToken(result.Session)
	if err != nil {
		stream.Fail(ErrorResponse{Error: err.Error(), Code: ErrorCode(err)})
		return
	}
	stream.Complete(newResumeResponse(result.Session, token, result.Warnings))
}

// handleGetResume returns the caller's session
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	session, err := s.authorizedSession(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newResumeResponse(session, "", nil))
}

// handleDeleteResume discards the caller's session and clears its cookie
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	session, err := s.authorizedSession(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.service.Store().Delete(session.ID)
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

// handleDownload serves one export of the caller's session. Each format is
// exported on its own request, so one failing never affects the other.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	session, err := s.authorizedSession(r)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	name, ok := strings.CutPrefix(r.PathValue("file"), "resume.")
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "unknown download")
		return
	}
	format, err := rendering.ParseFormat(name)
	if err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}

	exported, err := s.service.Export(session, format)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.attachmentResponse(w, exported)
}

// handleFormat classifies, builds and exports supplied text without a
// completion call.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		s.errorFromErr(w, bodyError(err, s.maxUploadBytes))
		return
	}
	var req FormatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()})
		return
	}
	if err := schemas.Validate(schemas.FormatRequestSchema, body); err != nil {
		s.errorFromErr(w, err)
		return
	}

	format := rendering.FormatDOCX
	if req.Format != "" {
		if format, err = rendering.ParseFormat(req.Format); err != nil {
			s.errorFromErr(w, &ErrValidation{Field: "format", Message: err.Error()})
			return
		}
	}

	doc := formatting.BuildText(req.Text)
	exported, err := rendering.Export(doc, format, req.Name)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.attachmentResponse(w, exported)
}

// authorizedSession loads the session named in the path, provided the
// request's token was issued for it.
func (s *Server) authorizedSession(r *http.Request) (*pipeline.Session, error) {
	tokenSessionID, err := middleware.SessionID(r)
	if err != nil {
		return nil, ErrSessionForbidden
	}
	if id := r.PathValue("id"); id != tokenSessionID {
		return nil, ErrSessionForbidden
	}
	return s.service.Session(tokenSessionID)
}

// attachmentResponse writes an export as a file download.
func (s *Server) attachmentResponse(w http.ResponseWriter, exported *rendering.Exported) {
	w.Header().Set("Content-Type", exported.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exported.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(exported.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, bytes.NewReader(exported.Data)); err != nil {
		log.Printf("Error writing %s: %v", exported.Filename, err)
	}
}

// parseGenerateRequest reads a generation request from a multipart or
// urlencoded form, or from a JSON body.
func (s *Server) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return s.parseGenerateForm(r)
	default:
		var req pipeline.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, bodyError(err, s.maxUploadBytes)
		}
		return req, nil
	}
}

func (s *Server) parseGenerateForm(r *http.Request) (pipeline.Request, error) {
	var req pipeline.Request

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			return req, bodyError(err, s.maxUploadBytes)
		}
	} else if err := r.ParseForm(); err != nil {
		return req, bodyError(err, s.maxUploadBytes)
	}

	req.DisplayName = r.FormValue(formName)
	req.ResumeText = r.FormValue(formResumeText)
	req.PositionText = r.FormValue(formJobDescription)
	req.PositionURL = r.FormValue(formJobURL)

	file, header, err := r.FormFile(formResumeFile)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return req, nil
	case err != nil:
		return req, &ErrValidation{Field: formResumeFile, Message: err.Error()}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, bodyError(err, s.maxUploadBytes)
	}
	req.Upload = &pipeline.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return req, nil
}

// bodyError converts a body size overflow into ErrRequestTooLarge.
func bodyError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &ErrRequestTooLarge{Limit: limit}
	}
	if strings.Contains(err.Error(), "request body too large") {
		return &ErrRequestTooLarge{Limit: limit}
	}
	return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
}
