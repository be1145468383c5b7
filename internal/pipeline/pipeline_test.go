package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/formatting"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/pipeline/steps"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedResume = "SKILLS:\n- Python\n- Go\n\nSummary text."

// fakeCompleter returns a canned completion and records its inputs.
type fakeCompleter struct {
	response string
	err      error
	calls    int
	resume   string
	position string
}

func (f *fakeCompleter) Generate(_ context.Context, resume, position string) (string, error) {
	f.calls++
	f.resume = resume
	f.position = position
	return f.response, f.err
}

func validRequest() Request {
	return Request{
		DisplayName:  "Jane Doe",
		ResumeText:   "Jane Doe\nGo engineer",
		PositionText: "Senior Go engineer",
	}
}

func TestGenerate_Success(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	var events []ProgressEvent
	svc := NewService(completer, Options{OnProgress: func(e ProgressEvent) { events = append(events, e) }})

	result, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, "Jane Doe\nGo engineer", completer.resume)
	assert.Equal(t, "Senior Go engineer", completer.position)

	require.NotNil(t, result.Session)
	assert.Equal(t, "Jane Doe", result.Session.DisplayName)
	assert.Equal(t, generatedResume, result.Session.GeneratedText)
	assert.Empty(t, result.Warnings)

	require.NotNil(t, result.Document)
	assert.Equal(t, 5, result.Document.Len())
	assert.True(t, result.Document.Paragraphs[0].Bold)

	stored, err := svc.Session(result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Session, stored)

	var names []string
	for _, e := range events {
		names = append(names, e.Step)
	}
	assert.Equal(t, []string{steps.Extract, steps.Complete, steps.Classify, steps.Build}, names)
}

func TestGenerate_InputMissingOrder(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"everything missing", Request{}, FieldResume},
		{"blank resume", Request{ResumeText: "  \n ", PositionText: "p", DisplayName: "n"}, FieldResume},
		{"empty upload", Request{Upload: &Upload{Filename: "r.txt"}, PositionText: "p", DisplayName: "n"}, FieldResume},
		{"position missing", Request{ResumeText: "r"}, FieldPosition},
		{"blank position", Request{ResumeText: "r", PositionText: "\t", DisplayName: "n"}, FieldPosition},
		{"name missing", Request{ResumeText: "r", PositionText: "p"}, FieldName},
		{"blank name", Request{ResumeText: "r", PositionText: "p", DisplayName: "   "}, FieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{response: "x"}
			svc := NewService(completer, Options{})

			_, err := svc.Generate(context.Background(), tt.req)

			var missing *InputMissingError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
			assert.Equal(t, 0, completer.calls, "completion must not run")
			assert.Equal(t, 0, svc.Store().Len())
		})
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	long := validRequest()
	long.DisplayName = strings.Repeat("a", 121)

	badURL := validRequest()
	badURL.PositionText = ""
	badURL.PositionURL = "ftp://example.com/job"

	for name, req := range map[string]Request{"long name": long, "bad url": badURL} {
		t.Run(name, func(t *testing.T) {
			_, err := NewService(&fakeCompleter{response: "x"}, Options{}).Generate(context.Background(), req)
			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestGenerate_CompletionFailure(t *testing.T) {
	boom := errors.New("rate limited")
	svc := NewService(&fakeCompleter{err: boom}, Options{})

	result, err := svc.Generate(context.Background(), validRequest())
	assert.Nil(t, result)

	var completionErr *CompletionError
	require.ErrorAs(t, err, &completionErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, svc.Store().Len())
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	svc := NewService(&fakeCompleter{response: " \n "}, Options{})

	_, err := svc.Generate(context.Background(), validRequest())
	var completionErr *CompletionError
	assert.ErrorAs(t, err, &completionErr)
	assert.Equal(t, 0, svc.Store().Len())
}

func TestGenerate_UploadPreferred(t *testing.T) {
	exported, err := rendering.DOCX(formatting.BuildText("UPLOADED RESUME\n- Led migrations"), "x")
	require.NoError(t, err)

	completer := &fakeCompleter{response: generatedResume}
	req := validRequest()
	req.Upload = &Upload{Filename: "resume.docx", ContentType: "application/octet-stream", Data: exported.Data}

	result, err := NewService(completer, Options{}).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "UPLOADED RESUME\nLed migrations", completer.resume)
	assert.Empty(t, result.Warnings)
}

func TestGenerate_UploadOnly(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	req := Request{
		DisplayName:  "Jane",
		PositionText: "p",
		Upload:       &Upload{Filename: "resume.txt", Data: []byte("Plain   resume")},
	}

	_, err := NewService(completer, Options{}).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Plain resume", completer.resume)
}

func TestGenerate_UnreadableUploadFallsBackToText(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	req := validRequest()
	req.Upload = &Upload{Filename: "resume.pdf", Data: []byte("not a pdf")}

	result, err := NewService(completer, Options{}).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo engineer", completer.resume)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "resume.pdf")
}

func TestGenerate_UnreadableUploadWithoutText(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	req := Request{
		DisplayName:  "Jane",
		PositionText: "p",
		Upload:       &Upload{Filename: "photo.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	}

	_, err := NewService(completer, Options{}).Generate(context.Background(), req)

	var missing *InputMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FieldResume, missing.Field)

	var extractionErr *ingestion.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.ErrorIs(t, err, ingestion.ErrUnsupportedType)
	assert.Equal(t, 0, completer.calls)
}

func TestGenerate_PositionFromURL(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	var fetched string
	svc := NewService(completer, Options{FetchJob: func(_ context.Context, url string) (string, error) {
		fetched = url
		return "Fetched posting", nil
	}})

	req := validRequest()
	req.PositionText = ""
	req.PositionURL = "https://jobs.example.com/1"

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com/1", fetched)
	assert.Equal(t, "Fetched posting", completer.position)
}

func TestGenerate_PositionTextWinsOverURL(t *testing.T) {
	completer := &fakeCompleter{response: generatedResume}
	svc := NewService(completer, Options{FetchJob: func(context.Context, string) (string, error) {
		t.Fatal("fetcher should not run")
		return "", nil
	}})

	req := validRequest()
	req.PositionURL = "https://jobs.example.com/1"

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer", completer.position)
}

func TestGenerate_PositionFetchFailure(t *testing.T) {
	boom := errors.New("404")
	svc := NewService(&fakeCompleter{response: "x"}, Options{FetchJob: func(context.Context, string) (string, error) {
		return "", boom
	}})

	req := validRequest()
	req.PositionText = ""
	req.PositionURL = "https://jobs.example.com/1"

	_, err := svc.Generate(context.Background(), req)
	var fetchErr *PositionFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_PositionURLWithoutFetcher(t *testing.T) {
	req := validRequest()
	req.PositionText = ""
	req.PositionURL = "https://jobs.example.com/1"

	_, err := NewService(&fakeCompleter{response: "x"}, Options{}).Generate(context.Background(), req)
	var missing *InputMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FieldPosition, missing.Field)
}

func TestExport_TextIsVerbatim(t *testing.T) {
	svc := NewService(&fakeCompleter{}, Options{})
	session := svc.Store().Create("Jane Doe", "SKILLS:\n- Python\n\n  Body  ")

	exported, err := svc.Export(session, rendering.FormatText)
	require.NoError(t, err)
	assert.Equal(t, "SKILLS:\n- Python\n\n  Body  ", string(exported.Data))
	assert.Equal(t, "Jane_Doe_Resume.txt", exported.Filename)
}

func TestExport_DOCX(t *testing.T) {
	var events []ProgressEvent
	svc := NewService(&fakeCompleter{}, Options{OnProgress: func(e ProgressEvent) { events = append(events, e) }})
	session := svc.Store().Create("Jane Doe", generatedResume)

	exported, err := svc.Export(session, rendering.FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Jane_Doe_Resume.docx", exported.Filename)
	assert.Equal(t, rendering.MIMEDOCX, exported.MIMEType)

	_, err = zip.NewReader(bytes.NewReader(exported.Data), int64(len(exported.Data)))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, steps.Export, events[2].Step)
}

func TestExport_Errors(t *testing.T) {
	svc := NewService(&fakeCompleter{}, Options{})

	_, err := svc.Export(nil, rendering.FormatText)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session := svc.Store().Create("Jane", "x")
	_, err = svc.Export(session, rendering.Format("pdf"))
	var exportErr *rendering.ExportError
	assert.ErrorAs(t, err, &exportErr)
}

func TestExportAll_Independent(t *testing.T) {
	svc := NewService(&fakeCompleter{}, Options{})
	session := svc.Store().Create("Jane", generatedResume)

	downloads := svc.ExportAll(session, rendering.Format("pdf"), rendering.FormatText, rendering.FormatDOCX)
	require.Len(t, downloads, 3)

	assert.Error(t, downloads[0].Err)
	assert.Nil(t, downloads[0].Exported)
	assert.NoError(t, downloads[1].Err)
	assert.Equal(t, generatedResume, string(downloads[1].Exported.Data))
	assert.NoError(t, downloads[2].Err)
	assert.NotEmpty(t, downloads[2].Exported.Data)
}

func TestExportAll_DefaultFormats(t *testing.T) {
	svc := NewService(&fakeCompleter{}, Options{})
	session := svc.Store().Create("Jane", generatedResume)

	downloads := svc.ExportAll(session)
	require.Len(t, downloads, 2)
	assert.Equal(t, rendering.FormatText, downloads[0].Format)
	assert.Equal(t, rendering.FormatDOCX, downloads[1].Format)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "missing input: resume", (&InputMissingError{Field: FieldResume}).Error())
	assert.Equal(t, "missing input: resume: "+assert.AnError.Error(), (&InputMissingError{Field: FieldResume, Cause: assert.AnError}).Error())
	assert.Equal(t, "invalid input name: too long", (&InvalidInputError{Field: FieldName, Reason: "too long"}).Error())
	assert.Contains(t, (&CompletionError{Cause: assert.AnError}).Error(), "resume generation failed")
	assert.Contains(t, (&PositionFetchError{URL: "u", Cause: assert.AnError}).Error(), "failed to fetch job posting u")
}

func TestGenerateWithProgress_PerCallCallback(t *testing.T) {
	var serviceEvents, callEvents []ProgressEvent
	svc := NewService(&fakeCompleter{response: generatedResume}, Options{
		OnProgress: func(e ProgressEvent) { serviceEvents = append(serviceEvents, e) },
	})

	_, err := svc.GenerateWithProgress(context.Background(), validRequest(), func(e ProgressEvent) {
		callEvents = append(callEvents, e)
	})
	require.NoError(t, err)

	assert.Empty(t, serviceEvents)
	require.Len(t, callEvents, 4)
	assert.Equal(t, steps.CategoryInput, callEvents[0].Category)
	assert.Equal(t, steps.Build, callEvents[3].Step)
}
