// Package ocr exposes the OCR pipeline over HTTP.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/scribe/internal/document"
	"github.com/JaimeStill/scribe/internal/engine"
	"github.com/JaimeStill/scribe/internal/prompts"
	"github.com/JaimeStill/scribe/internal/workflow"
	"github.com/JaimeStill/scribe/pkg/handlers"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
	"github.com/JaimeStill/scribe/pkg/middleware"
	"github.com/JaimeStill/scribe/pkg/routes"
)

const (
	multipartMemory = 32 << 20
	formatHTML      = "html"
)

// Processor runs OCR requests.
type Processor interface {
	ProcessImage(ctx context.Context, req workflow.Request) *workflow.ImageResult
	ProcessDocument(ctx context.Context, req workflow.Request) (*workflow.BatchResult, error)
}

// Config holds the request limits and cancellation policy of the handler.
type Config struct {
	MaxUploadSize   int64
	MaxPages        int
	PropagateCancel bool
}

// Handler provides the OCR endpoints.
type Handler struct {
	proc     Processor
	ready    lifecycle.ReadinessChecker
	resolver *prompts.Resolver
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a Handler. Requests are rejected with 503 until ready
// reports true.
func NewHandler(
	proc Processor,
	ready lifecycle.ReadinessChecker,
	resolver *prompts.Resolver,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		proc:     proc,
		ready:    ready,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.With("handler", "ocr"),
	}
}

// Routes returns the route group definition for OCR endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Tags:   []string{"OCR"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/image", Handler: h.Image, OpenAPI: imageOp},
			{Method: "POST", Pattern: "/pdf", Handler: h.PDF, OpenAPI: pdfOp},
		},
	}
}

type upload struct {
	data     []byte
	filename string
	prompt   string
	html     bool
}

// Image runs OCR over a single uploaded image. Decode and inference
// failures are reported in the body with status 200.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Ready() {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, engine.ErrNotReady)
		return
	}

	up, err := h.readUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result := h.proc.ProcessImage(h.pipelineContext(r), workflow.Request{
		ID: middleware.RequestIDFrom(r.Context()),
		Document: document.Document{
			Data:     up.data,
			Kind:     document.KindImage,
			Filename: up.filename,
		},
		Prompt: up.prompt,
	})

	if !result.Success {
		h.logger.Error("image request failed", "filename", up.filename, "error", result.Err)
	}

	var html *string
	if up.html && result.Success {
		html = h.render(result.Text)
	}

	handlers.RespondJSON(w, http.StatusOK, imageResponse(result, html))
}

// PDF runs OCR over every page of an uploaded PDF. A document that cannot be
// decomposed yields status 500 with a well-formed failed batch.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Ready() {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, engine.ErrNotReady)
		return
	}

	up, err := h.readUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if h.cfg.MaxPages > 0 {
		count, err := document.PageCount(up.data)
		if err != nil {
			h.respondFailedBatch(w, up.filename, err)
			return
		}
		if count > h.cfg.MaxPages {
			err := fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, count, h.cfg.MaxPages)
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
	}

	result, err := h.proc.ProcessDocument(h.pipelineContext(r), workflow.Request{
		ID: middleware.RequestIDFrom(r.Context()),
		Document: document.Document{
			Data:     up.data,
			Kind:     document.KindPaged,
			Filename: up.filename,
		},
		Prompt: up.prompt,
	})
	if err != nil {
		h.respondFailedBatch(w, up.filename, err)
		return
	}

	h.logger.Info(
		"pdf processed",
		"filename", up.filename,
		"pages", result.TotalPages,
		"failed", result.Failed(),
	)

	resp := BatchResponse{
		Success:    result.Success,
		Results:    make([]PageResponse, 0, len(result.Outcomes)),
		TotalPages: result.TotalPages,
		Filename:   result.Filename,
	}

	for _, o := range result.Outcomes {
		var html *string
		if up.html && o.OK() {
			html = h.render(o.Text)
		}
		resp.Results = append(resp.Results, pageResponse(o, html))
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondFailedBatch(w http.ResponseWriter, filename string, err error) {
	h.logger.Error("pdf request failed", "filename", filename, "error", err)
	handlers.RespondJSON(w, http.StatusInternalServerError, failedBatch(filename, err))
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	if h.cfg.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, uploadError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, uploadError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, uploadError(err)
	}

	prompt, err := h.resolver.Select(r.FormValue("prompt"), r.FormValue("mode"))
	if err != nil {
		return nil, err
	}

	return &upload{
		data:     data,
		filename: header.Filename,
		prompt:   prompt,
		html:     r.FormValue("format") == formatHTML,
	}, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %w", ErrFileTooLarge, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidFile, err)
}

// Engine calls outlive a disconnected client unless cancellation is
// configured to propagate.
func (h *Handler) pipelineContext(r *http.Request) context.Context {
	if h.cfg.PropagateCancel {
		return r.Context()
	}
	return context.WithoutCancel(r.Context())
}

func (h *Handler) render(text string) *string {
	out, err := RenderHTML(text)
	if err != nil {
		h.logger.Warn("html rendering failed", "error", err)
		return nil
	}
	return &out
}
