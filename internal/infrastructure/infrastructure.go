// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, telemetry, the engine handle, and the
// inference gate) that the OCR module requires.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/engine"
	"github.com/JaimeStill/scribe/pkg/gate"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
	"github.com/JaimeStill/scribe/pkg/telemetry"
)

const telemetryFlushTimeout = 5 * time.Second

// Infrastructure holds the core systems required by the OCR module.
// The engine handle and gate are process-wide singletons shared by every request.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Telemetry *telemetry.Provider
	Engine    *engine.Handle
	Gate      *gate.Gate
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()

	tp, err := telemetry.Setup(lc.Context(), cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}

	logger := slog.New(telemetry.Tee(
		slog.NewTextHandler(os.Stderr, nil),
		tp.Handler(),
	))

	g, err := gate.New(cfg.Engine.MaxConcurrency, cfg.Engine.AcquireTimeoutDuration())
	if err != nil {
		return nil, fmt.Errorf("gate init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Telemetry: tp,
		Engine:    newEngine(&cfg.Engine, cfg.Telemetry.Enabled, logger),
		Gate:      g,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The engine readiness probe runs as a startup hook; telemetry is flushed on shutdown.
func (i *Infrastructure) Start() error {
	if err := i.Engine.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("engine start failed: %w", err)
	}
	i.Lifecycle.Register("engine", i.Engine)

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := i.Telemetry.Shutdown(ctx); err != nil {
			i.Logger.Error("telemetry shutdown failed", "error", err)
		}
	})

	return nil
}

func newEngine(cfg *config.EngineConfig, traced bool, logger *slog.Logger) *engine.Handle {
	opts := []engine.Option{
		engine.WithRequestTimeout(cfg.RequestTimeoutDuration()),
	}
	if cfg.Token != "" {
		opts = append(opts, engine.WithToken(cfg.Token))
	}
	if traced {
		opts = append(opts, engine.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}))
	}

	client := engine.NewClient(cfg.BaseURL, cfg.Model, opts...)

	var e engine.Engine = client
	if cfg.RateLimit > 0 {
		burst := max(1, int(cfg.RateLimit))
		e = engine.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst), e)
	}
	if traced {
		e = engine.WithTelemetry(cfg.Model, e)
	}

	return engine.NewHandle(e, client, cfg.Deployment(), cfg.ProbeIntervalDuration(), logger)
}
