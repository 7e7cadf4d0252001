package ocr_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/scribe/internal/document"
	"github.com/JaimeStill/scribe/internal/ocr"
	"github.com/JaimeStill/scribe/internal/prompts"
	"github.com/JaimeStill/scribe/internal/workflow"
	"github.com/JaimeStill/scribe/pkg/middleware"
	"github.com/JaimeStill/scribe/pkg/routes"
)

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

type fakeProcessor struct {
	image    *workflow.ImageResult
	batch    *workflow.BatchResult
	batchErr error

	calls   int
	lastReq workflow.Request
	ctxErr  error
}

func (p *fakeProcessor) ProcessImage(ctx context.Context, req workflow.Request) *workflow.ImageResult {
	p.calls++
	p.lastReq = req
	p.ctxErr = ctx.Err()
	return p.image
}

func (p *fakeProcessor) ProcessDocument(ctx context.Context, req workflow.Request) (*workflow.BatchResult, error) {
	p.calls++
	p.lastReq = req
	p.ctxErr = ctx.Err()
	return p.batch, p.batchErr
}

func newServer(proc ocr.Processor, ready bool, cfg ocr.Config) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := ocr.NewHandler(proc, readiness(ready), prompts.NewResolver(""), cfg, logger)

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return middleware.RequestID()(mux)
}

type form struct {
	file     []byte
	filename string
	fields   map[string]string
	noFile   bool
}

func (f form) request(t *testing.T, path string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if !f.noFile {
		part, err := w.CreateFormFile("file", f.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(f.file)
	}
	for k, v := range f.fields {
		w.WriteField(k, v)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, map[string]any) {
	t.Helper()
	var typed T
	if err := json.Unmarshal(rec.Body.Bytes(), &typed); err != nil {
		t.Fatalf("unmarshal: %v: %s", err, rec.Body.String())
	}
	var raw map[string]any
	json.Unmarshal(rec.Body.Bytes(), &raw)
	return typed, raw
}

func TestImageSuccess(t *testing.T) {
	proc := &fakeProcessor{image: &workflow.ImageResult{Success: true, Text: "# Invoice", PageCount: 1}}
	srv := newServer(proc, true, ocr.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{file: []byte("png"), filename: "a.png"}.request(t, "/image"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	resp, raw := decode[ocr.ImageResponse](t, rec)
	if !resp.Success || resp.Result == nil || *resp.Result != "# Invoice" || resp.PageCount != 1 {
		t.Errorf("response: %+v", resp)
	}
	if v, ok := raw["error"]; !ok || v != nil {
		t.Errorf("error field should be present and null: %v", raw)
	}
	if _, ok := raw["html"]; ok {
		t.Error("html should be omitted unless requested")
	}

	if proc.lastReq.Document.Kind != document.KindImage || proc.lastReq.Document.Filename != "a.png" {
		t.Errorf("document: %+v", proc.lastReq.Document)
	}
	if proc.lastReq.ID == "" || proc.lastReq.ID != rec.Header().Get(middleware.RequestIDHeader) {
		t.Errorf("request id: got %q, header %q", proc.lastReq.ID, rec.Header().Get(middleware.RequestIDHeader))
	}
}

func TestImageFailureIsInBody(t *testing.T) {
	proc := &fakeProcessor{image: &workflow.ImageResult{
		Err: fmt.Errorf("%w: bad bytes", document.ErrDecode),
	}}
	srv := newServer(proc, true, ocr.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{file: []byte("garbage"), filename: "x.png"}.request(t, "/image"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	resp, raw := decode[ocr.ImageResponse](t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error == nil || !strings.Contains(*resp.Error, "bad bytes") {
		t.Errorf("error: got %v", resp.Error)
	}
	if resp.PageCount != 0 {
		t.Errorf("page count: got %d, want 0", resp.PageCount)
	}
	if v, ok := raw["result"]; !ok || v != nil {
		t.Errorf("result field should be present and null: %v", raw)
	}
}

func TestPDFPartialFailure(t *testing.T) {
	proc := &fakeProcessor{batch: &workflow.BatchResult{
		Outcomes: []workflow.Outcome{
			workflow.Success(1, "one"),
			workflow.Failure(2, fmt.Errorf("%w: engine exploded", workflow.ErrInference)),
			workflow.Success(3, "three"),
		},
		TotalPages: 3,
		Filename:   "report.pdf",
		Success:    true,
	}}
	srv := newServer(proc, true, ocr.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{file: []byte("%PDF"), filename: "report.pdf"}.request(t, "/pdf"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	resp, _ := decode[ocr.BatchResponse](t, rec)
	if !resp.Success || resp.TotalPages != 3 || resp.Filename != "report.pdf" || resp.Error != nil {
		t.Errorf("batch: %+v", resp)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results: got %d, want 3", len(resp.Results))
	}

	wantOK := []bool{true, false, true}
	for i, r := range resp.Results {
		if r.PageNumber != i+1 {
			t.Errorf("results[%d].page_number: got %d", i, r.PageNumber)
		}
		if r.Success != wantOK[i] {
			t.Errorf("results[%d].success: got %v, want %v", i, r.Success, wantOK[i])
		}
	}
	if e := resp.Results[1].Error; e == nil || !strings.Contains(*e, "engine exploded") {
		t.Errorf("page 2 error: got %v", e)
	}
	if resp.Results[1].Result != nil {
		t.Error("page 2 should carry no result")
	}
}

func TestPDFDecomposeFailure(t *testing.T) {
	proc := &fakeProcessor{batchErr: fmt.Errorf("%w: not a pdf", document.ErrDecode)}
	srv := newServer(proc, true, ocr.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{file: []byte("junk"), filename: "bad.pdf"}.request(t, "/pdf"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}

	resp, raw := decode[ocr.BatchResponse](t, rec)
	if resp.Success || resp.TotalPages != 0 || resp.Error == nil {
		t.Errorf("batch: %+v", resp)
	}
	if results, ok := raw["results"].([]any); !ok || len(results) != 0 {
		t.Errorf("results should be an empty array: %v", raw["results"])
	}
}

func TestPDFPageLimitRejectsCorruptDocument(t *testing.T) {
	proc := &fakeProcessor{}
	srv := newServer(proc, true, ocr.Config{MaxPages: 10})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{file: []byte("junk"), filename: "bad.pdf"}.request(t, "/pdf"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if proc.calls != 0 {
		t.Error("processor should not run for an unreadable document")
	}
}

func TestRequestRejections(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		cfg        ocr.Config
		form       form
		path       string
		wantStatus int
	}{
		{
			name:       "not ready image",
			form:       form{file: []byte("x"), filename: "a.png"},
			path:       "/image",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "not ready pdf",
			form:       form{file: []byte("x"), filename: "a.pdf"},
			path:       "/pdf",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing file",
			ready:      true,
			form:       form{noFile: true, fields: map[string]string{"prompt": "x"}},
			path:       "/image",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "oversized upload",
			ready:      true,
			cfg:        ocr.Config{MaxUploadSize: 64},
			form:       form{file: bytes.Repeat([]byte("a"), 4096), filename: "big.pdf"},
			path:       "/pdf",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "unknown mode",
			ready:      true,
			form:       form{file: []byte("x"), filename: "a.png", fields: map[string]string{"mode": "poetry"}},
			path:       "/image",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			srv := newServer(proc, tt.ready, tt.cfg)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, tt.form.request(t, tt.path))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if proc.calls != 0 {
				t.Error("processor should not run for a rejected request")
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("expected error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestPromptAndModeForwarding(t *testing.T) {
	free, _ := prompts.Preset(prompts.ModeFree)

	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"none", nil, prompts.DefaultPrompt},
		{"prompt", map[string]string{"prompt": "Read it."}, "Read it."},
		{"mode", map[string]string{"mode": "free"}, free},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{image: &workflow.ImageResult{Success: true, Text: "x", PageCount: 1}}
			srv := newServer(proc, true, ocr.Config{})

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, form{file: []byte("x"), filename: "a.png", fields: tt.fields}.request(t, "/image"))

			if proc.lastReq.Prompt != tt.want {
				t.Errorf("prompt: got %q, want %q", proc.lastReq.Prompt, tt.want)
			}
		})
	}
}

func TestHTMLFormat(t *testing.T) {
	text := "<|ref|>title<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>\n# Heading\n\nBody"
	proc := &fakeProcessor{image: &workflow.ImageResult{Success: true, Text: text, PageCount: 1}}
	srv := newServer(proc, true, ocr.Config{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, form{
		file:     []byte("x"),
		filename: "a.png",
		fields:   map[string]string{"format": "html"},
	}.request(t, "/image"))

	resp, _ := decode[ocr.ImageResponse](t, rec)
	if resp.HTML == nil {
		t.Fatal("html missing")
	}
	if !strings.Contains(*resp.HTML, "<h1>Heading</h1>") {
		t.Errorf("html: got %q", *resp.HTML)
	}
	if strings.Contains(*resp.HTML, "<|ref|>") {
		t.Errorf("grounding tags leaked into html: %q", *resp.HTML)
	}
	if *resp.Result != text {
		t.Error("raw result must be unchanged")
	}
}

func TestCancellationPolicy(t *testing.T) {
	tests := []struct {
		name      string
		propagate bool
		want      error
	}{
		{"detached by default", false, nil},
		{"propagated when configured", true, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{image: &workflow.ImageResult{Success: true, Text: "x", PageCount: 1}}
			srv := newServer(proc, true, ocr.Config{PropagateCancel: tt.propagate})

			ctx, cancel := context.WithCancel(context.Background())
			req := form{file: []byte("x"), filename: "a.png"}.request(t, "/image").WithContext(ctx)
			cancel()

			srv.ServeHTTP(httptest.NewRecorder(), req)

			if !errors.Is(proc.ctxErr, tt.want) && proc.ctxErr != tt.want {
				t.Errorf("pipeline context error: got %v, want %v", proc.ctxErr, tt.want)
			}
		})
	}
}

func TestReadable(t *testing.T) {
	in := "<|grounding|><|ref|>text<|/ref|><|det|>[[0,0,1,1]]<|/det|>\nHello\n\n\n\nWorld"
	if got := ocr.Readable(in); got != "Hello\n\nWorld" {
		t.Errorf("got %q", got)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ocr.ErrInvalidFile, http.StatusBadRequest},
		{ocr.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{ocr.ErrTooManyPages, http.StatusRequestEntityTooLarge},
		{prompts.ErrInvalidMode, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ocr.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}
