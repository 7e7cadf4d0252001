// Package telemetry installs the global OpenTelemetry trace, metric and log
// providers, exporting over OTLP/HTTP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/JaimeStill/scribe"

// Provider owns the installed telemetry providers.
type Provider struct {
	handler   slog.Handler
	shutdowns []func(context.Context) error
}

// Setup installs global providers when cfg.Enabled. A disabled
// configuration yields a Provider whose methods are no-ops.
func Setup(ctx context.Context, cfg Config, version string) (*Provider, error) {
	p := &Provider{}
	if !cfg.Enabled {
		return p, nil
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	if err := p.setupTracer(ctx, resource); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if err := p.setupMeter(ctx, resource); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if err := p.setupLogger(ctx, resource); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

// Handler returns the slog handler bridging records to OTLP, or nil when
// telemetry is disabled.
func (p *Provider) Handler() slog.Handler {
	return p.handler
}

// Shutdown flushes and stops every installed provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdowns {
		errs = append(errs, fn(ctx))
	}
	p.shutdowns = nil
	return errors.Join(errs...)
}

func (p *Provider) setupTracer(ctx context.Context, resource *sdkresource.Resource) error {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return fmt.Errorf("trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(provider)
	p.shutdowns = append(p.shutdowns, provider.Shutdown)
	return nil
}

func (p *Provider) setupMeter(ctx context.Context, resource *sdkresource.Resource) error {
	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return fmt.Errorf("metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
		sdkmetric.WithResource(resource),
	)
	otel.SetMeterProvider(provider)
	p.shutdowns = append(p.shutdowns, provider.Shutdown)
	return nil
}

func (p *Provider) setupLogger(ctx context.Context, resource *sdkresource.Resource) error {
	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return fmt.Errorf("log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(resource),
	)
	global.SetLoggerProvider(provider)
	p.handler = otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider))
	p.shutdowns = append(p.shutdowns, provider.Shutdown)
	return nil
}
