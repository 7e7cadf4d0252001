package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/JaimeStill/scribe/internal/engine"

type observableEngine struct {
	model  string
	engine Engine

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// WithTelemetry records a span, a call counter and a duration histogram for
// every submission to e. Without a configured provider the global no-op
// implementations apply.
func WithTelemetry(model string, e Engine) Engine {
	meter := otel.Meter(instrumentationName)

	calls, _ := meter.Int64Counter(
		"scribe.engine.calls",
		metric.WithDescription("Inference calls by outcome"),
	)
	duration, _ := meter.Float64Histogram(
		"scribe.engine.duration",
		metric.WithDescription("Inference call duration"),
		metric.WithUnit("s"),
	)

	return &observableEngine{
		model:    model,
		engine:   e,
		calls:    calls,
		duration: duration,
	}
}

func (e *observableEngine) Submit(ctx context.Context, prompt string, visual Visual, sampling SamplingConfig) (string, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "ocr "+e.model)
	defer span.End()

	span.SetAttributes(
		attribute.String("gen_ai.request.model", e.model),
		attribute.Int64("gen_ai.request.max_tokens", sampling.MaxTokens),
		attribute.Int("scribe.visual.width", visual.Width),
		attribute.Int("scribe.visual.height", visual.Height),
	)

	start := time.Now()
	text, err := e.engine.Submit(ctx, prompt, visual, sampling)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("gen_ai.request.model", e.model),
		attribute.String("outcome", outcome),
	)
	e.calls.Add(ctx, 1, attrs)
	e.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	return text, err
}
