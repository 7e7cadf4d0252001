package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/scribe/internal/engine"
)

// Invoker performs one inference call for a Job.
type Invoker struct {
	engine engine.Engine
}

// NewInvoker creates an Invoker submitting to e.
func NewInvoker(e engine.Engine) *Invoker {
	return &Invoker{engine: e}
}

// Invoke encodes the page raster and submits it with the job's prompt and
// sampling configuration. Errors are wrapped with ErrInference and are not
// retried.
func (i *Invoker) Invoke(ctx context.Context, job Job) (string, error) {
	visual, err := engine.EncodeVisual(job.Page.Image)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInference, err)
	}

	text, err := i.engine.Submit(ctx, job.Prompt, visual, job.Sampling)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInference, err)
	}

	return text, nil
}
