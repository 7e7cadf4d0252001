package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

// Prober reports whether the model server is serving the configured model.
type Prober interface {
	Served(ctx context.Context) (bool, error)
}

// Deployment describes how the model server was provisioned. It is reported
// at startup and on the health endpoint; the server itself is not configured
// from here.
type Deployment struct {
	Model                string
	MaxConcurrency       int
	GPUMemoryUtilization float64
	MaxModelLen          int
}

// Handle is the process-wide engine singleton. It rejects submissions with
// ErrNotReady until the startup probe has confirmed the model is served.
type Handle struct {
	engine     Engine
	prober     Prober
	deployment Deployment
	interval   time.Duration
	ready      atomic.Bool
	logger     *slog.Logger
}

// NewHandle wraps e. The prober is polled every interval during startup.
// A nil prober marks the handle ready as soon as Start runs.
func NewHandle(
	e Engine,
	prober Prober,
	deployment Deployment,
	interval time.Duration,
	logger *slog.Logger,
) *Handle {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Handle{
		engine:     e,
		prober:     prober,
		deployment: deployment,
		interval:   interval,
		logger:     logger.With("system", "engine"),
	}
}

// Ready reports whether the engine has finished initializing.
func (h *Handle) Ready() bool {
	return h.ready.Load()
}

// Model returns the served model name.
func (h *Handle) Model() string {
	return h.deployment.Model
}

// Deployment returns the provisioning parameters of the model server.
func (h *Handle) Deployment() Deployment {
	return h.deployment
}

// Submit forwards to the wrapped engine once ready.
func (h *Handle) Submit(ctx context.Context, prompt string, visual Visual, sampling SamplingConfig) (string, error) {
	if !h.Ready() {
		return "", ErrNotReady
	}
	return h.engine.Submit(ctx, prompt, visual, sampling)
}

// Start registers the one-time initialization probe with the lifecycle
// coordinator. The probe runs until the model is served or shutdown begins.
func (h *Handle) Start(lc *lifecycle.Coordinator) error {
	h.logger.Info(
		"initializing engine",
		"model", h.deployment.Model,
		"max_concurrency", h.deployment.MaxConcurrency,
		"gpu_memory_utilization", h.deployment.GPUMemoryUtilization,
		"max_model_len", h.deployment.MaxModelLen,
	)

	lc.OnStartup(func() {
		if err := h.await(lc.Context()); err != nil {
			h.logger.Error("engine initialization aborted", "error", err)
			return
		}
		h.ready.Store(true)
		h.logger.Info("engine ready", "model", h.deployment.Model)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		h.ready.Store(false)
		h.logger.Info("engine released")
	})

	return nil
}

func (h *Handle) await(ctx context.Context) error {
	if h.prober == nil {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		served, err := h.prober.Served(ctx)
		switch {
		case err != nil:
			h.logger.Warn("engine probe failed", "error", err)
		case served:
			return nil
		default:
			h.logger.Info("waiting for model", "model", h.deployment.Model)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
