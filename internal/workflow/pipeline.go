package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scribe/internal/document"
	"github.com/JaimeStill/scribe/internal/engine"
	"github.com/JaimeStill/scribe/internal/prompts"
	"github.com/JaimeStill/scribe/pkg/gate"
)

// Config holds the per-process pipeline settings.
type Config struct {
	// PageConcurrency bounds in-request page fan-out. Zero uses the gate
	// capacity.
	PageConcurrency int
	Sampling        engine.SamplingConfig
}

// Pipeline runs OCR requests end to end.
type Pipeline struct {
	decomposer      *document.Decomposer
	resolver        *prompts.Resolver
	invoker         *Invoker
	gate            *gate.Gate
	sampling        engine.SamplingConfig
	pageConcurrency int
	logger          *slog.Logger
}

// New assembles a Pipeline. The gate is shared by every request.
func New(
	decomposer *document.Decomposer,
	resolver *prompts.Resolver,
	invoker *Invoker,
	g *gate.Gate,
	cfg Config,
	logger *slog.Logger,
) *Pipeline {
	pageConcurrency := cfg.PageConcurrency
	if pageConcurrency <= 0 {
		pageConcurrency = g.Capacity()
	}

	return &Pipeline{
		decomposer:      decomposer,
		resolver:        resolver,
		invoker:         invoker,
		gate:            g,
		sampling:        cfg.Sampling,
		pageConcurrency: pageConcurrency,
		logger:          logger.With("system", "workflow"),
	}
}

// ProcessImage runs a single-image request. It never returns an error:
// decode and inference failures are reported in the result.
func (p *Pipeline) ProcessImage(ctx context.Context, req Request) *ImageResult {
	logger := p.requestLogger(req)
	logger.Info("request", "stage", StageReceived)

	pages, err := p.decompose(ctx, req, logger)
	if err != nil {
		return &ImageResult{Err: err}
	}

	prompt := p.resolver.Resolve(req.Prompt)
	logger.Info("request", "stage", StageDispatching, "pages", len(pages))

	outcome := p.runPage(ctx, Job{
		Page:     pages[0],
		Prompt:   prompt,
		Sampling: p.sampling,
	}, logger)

	logger.Info("request", "stage", StageAggregated, "success", outcome.OK())

	if !outcome.OK() {
		return &ImageResult{Err: outcome.Err}
	}

	return &ImageResult{
		Success:   true,
		Text:      outcome.Text,
		PageCount: 1,
	}
}

// ProcessDocument runs a paged-document request. Decomposition failure is
// returned as an error wrapping document.ErrDecode; page failures are
// isolated into their outcomes and never abort sibling pages.
func (p *Pipeline) ProcessDocument(ctx context.Context, req Request) (*BatchResult, error) {
	start := time.Now()
	logger := p.requestLogger(req)
	logger.Info("request", "stage", StageReceived)

	pages, err := p.decompose(ctx, req, logger)
	if err != nil {
		return nil, err
	}

	prompt := p.resolver.Resolve(req.Prompt)
	logger.Info(
		"request",
		"stage", StageDispatching,
		"pages", len(pages),
		"page_concurrency", min(p.pageConcurrency, len(pages)),
	)

	outcomes := make([]Outcome, len(pages))

	var g errgroup.Group
	g.SetLimit(p.pageConcurrency)

	for i, page := range pages {
		g.Go(func() error {
			outcomes[i] = p.runPage(ctx, Job{
				Page:     page,
				Prompt:   prompt,
				Sampling: p.sampling,
			}, logger)
			return nil
		})
	}

	g.Wait()

	result := &BatchResult{
		Outcomes:   outcomes,
		TotalPages: len(pages),
		Filename:   req.Document.Filename,
		Success:    true,
	}

	logger.Info(
		"request",
		"stage", StageAggregated,
		"pages", result.TotalPages,
		"failed", result.Failed(),
		"duration", time.Since(start),
	)

	return result, nil
}

func (p *Pipeline) decompose(ctx context.Context, req Request, logger *slog.Logger) ([]document.Page, error) {
	logger.Info("request", "stage", StageDecomposing, "kind", req.Document.Kind)

	pages, err := p.decomposer.Decompose(ctx, req.Document)
	if err != nil {
		logger.Error("request", "stage", StageDecomposeFailed, "error", err)
		return nil, err
	}

	logger.Info("request", "stage", StageDecomposed, "pages", len(pages))
	return pages, nil
}

func (p *Pipeline) runPage(ctx context.Context, job Job, logger *slog.Logger) Outcome {
	n := job.Page.Number

	var raw string
	err := p.gate.Do(ctx, func() error {
		var err error
		raw, err = p.invoker.Invoke(ctx, job)
		return err
	})

	if err != nil {
		if !errors.Is(err, ErrInference) {
			err = fmt.Errorf("%w: %w", ErrInference, err)
		}
		logger.Warn("page failed", "page", n, "error", err)
		return Failure(n, err)
	}

	logger.Debug("page", "stage", StageSanitizing, "page", n)
	return Success(n, Sanitize(raw))
}

func (p *Pipeline) requestLogger(req Request) *slog.Logger {
	return p.logger.With(
		"request_id", req.ID,
		"filename", req.Document.Filename,
	)
}
