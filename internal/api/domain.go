package api

import (
	"github.com/JaimeStill/scribe/internal/document"
	"github.com/JaimeStill/scribe/internal/ocr"
	"github.com/JaimeStill/scribe/internal/prompts"
	"github.com/JaimeStill/scribe/internal/workflow"
)

// Domain holds the systems that comprise the API.
type Domain struct {
	Pipeline *workflow.Pipeline
	Resolver *prompts.Resolver
	OCR      *ocr.Handler
	Prompts  *prompts.Handler
}

// NewDomain wires the OCR pipeline from the API runtime. Every request
// shares the runtime's engine handle and inference gate.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	decomposer := document.NewDecomposer(
		document.NewMagickRasterizer(cfg.Document.TempDir),
		cfg.Document.DPI,
		runtime.Logger,
	)

	resolver := prompts.NewResolver(cfg.Document.Prompt)

	pipeline := workflow.New(
		decomposer,
		resolver,
		workflow.NewInvoker(runtime.Engine),
		runtime.Gate,
		workflow.Config{
			PageConcurrency: cfg.Engine.PageConcurrency,
			Sampling:        cfg.Engine.SamplingParams(),
		},
		runtime.Logger,
	)

	handler := ocr.NewHandler(
		pipeline,
		runtime.Engine,
		resolver,
		ocr.Config{
			MaxUploadSize:   int64(cfg.API.MaxUploadSize),
			MaxPages:        cfg.API.MaxPages,
			PropagateCancel: cfg.Engine.PropagateCancel,
		},
		runtime.Logger,
	)

	return &Domain{
		Pipeline: pipeline,
		Resolver: resolver,
		OCR:      handler,
		Prompts:  prompts.NewHandler(resolver, runtime.Logger),
	}
}
