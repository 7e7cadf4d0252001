package main

import (
	"net/http"

	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/infrastructure"
	"github.com/JaimeStill/scribe/pkg/handlers"
	"github.com/JaimeStill/scribe/pkg/module"
)

const (
	statusHealthy      = "healthy"
	statusInitializing = "initializing"
)

// HealthResponse reports engine initialization and inference load.
type HealthResponse struct {
	Status         string `json:"status"`
	ModelLoaded    bool   `json:"model_loaded"`
	ModelPath      string `json:"model_path"`
	MaxConcurrency int    `json:"max_concurrency"`
	InFlight       int    `json:"in_flight"`
}

// InfoResponse describes the service and its endpoints.
type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	info := InfoResponse{
		Message: "Scribe OCR API",
		Version: cfg.Version,
		Endpoints: map[string]string{
			"health":    "/health",
			"docs":      docsPath,
			"openapi":   cfg.API.BasePath + "/openapi.json",
			"ocr_image": cfg.API.BasePath + "/image",
			"ocr_pdf":   cfg.API.BasePath + "/pdf",
			"prompts":   cfg.API.BasePath + "/prompts",
		},
	}

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, info)
	})

	router.HandleNative("GET /health", func(w http.ResponseWriter, r *http.Request) {
		loaded := infra.Engine.Ready()
		status := statusInitializing
		if loaded {
			status = statusHealthy
		}

		handlers.RespondJSON(w, http.StatusOK, HealthResponse{
			Status:         status,
			ModelLoaded:    loaded,
			ModelPath:      infra.Engine.Model(),
			MaxConcurrency: infra.Gate.Capacity(),
			InFlight:       infra.Gate.InFlight(),
		})
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checks := infra.Lifecycle.Checks()
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": checks,
			})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	})

	return router
}
