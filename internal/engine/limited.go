package engine

import (
	"context"

	"golang.org/x/time/rate"
)

type limitedEngine struct {
	limiter *rate.Limiter
	engine  Engine
}

// WithRateLimit throttles submissions to e through l. A nil limiter
// returns e unchanged.
func WithRateLimit(l *rate.Limiter, e Engine) Engine {
	if l == nil {
		return e
	}
	return &limitedEngine{
		limiter: l,
		engine:  e,
	}
}

func (e *limitedEngine) Submit(ctx context.Context, prompt string, visual Visual, sampling SamplingConfig) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return e.engine.Submit(ctx, prompt, visual, sampling)
}
