package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/pipeline"
)

// Events sent by POST /api/resumes/stream
const (
	eventProgress = "progress"
	eventComplete = "complete"
	eventError    = "error"
)

// generationStream reports one generation request as Server-Sent Events.
// After the first failed write the client is assumed gone and later events
// are dropped.
type generationStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	err     error
}

// newGenerationStream sets the event stream headers on w.
func newGenerationStream(w http.ResponseWriter) (*generationStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &generationStream{w: w, flusher: flusher}, nil
}

// Progress forwards a pipeline step. It matches pipeline.ProgressCallback.
func (s *generationStream) Progress(event pipeline.ProgressEvent) {
	if err := s.send(eventProgress, event); err != nil {
		log.Printf("[sse] dropped %s progress: %v", event.Step, err)
	}
}

// Complete sends the finished session, including its token.
func (s *generationStream) Complete(resp ResumeResponse) {
	if err := s.send(eventComplete, resp); err != nil {
		log.Printf("[sse] failed to send session %s: %v", resp.ID, err)
	}
}

// Fail sends the error that ended the request.
func (s *generationStream) Fail(resp ErrorResponse) {
	if err := s.send(eventError, resp); err != nil {
		log.Printf("[sse] failed to send %s error: %v", resp.Code, err)
	}
}

func (s *generationStream) send(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}
