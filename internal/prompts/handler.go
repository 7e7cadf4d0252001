package prompts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/scribe/pkg/handlers"
	"github.com/JaimeStill/scribe/pkg/routes"
)

// Handler exposes the prompt presets over HTTP.
type Handler struct {
	resolver *Resolver
	logger   *slog.Logger
}

// ModeContent pairs a mode with its prompt text.
type ModeContent struct {
	Mode   Mode   `json:"mode"`
	Prompt string `json:"prompt"`
}

// NewHandler creates a Handler backed by resolver.
func NewHandler(resolver *Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger.With("handler", "prompts"),
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "GET", Pattern: "/default", Handler: h.Default, OpenAPI: defaultOp},
			{Method: "GET", Pattern: "/{mode}", Handler: h.Find, OpenAPI: findOp},
		},
	}
}

// List returns every preset mode with its prompt.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result := make([]ModeContent, 0, len(modes))
	for _, m := range modes {
		result = append(result, ModeContent{Mode: m, Prompt: presets[m]})
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Default returns the prompt applied when a request supplies none.
func (h *Handler) Default(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"prompt": h.resolver.Default(),
	})
}

// Find returns the prompt for the mode path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	mode, err := ParseMode(r.PathValue("mode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	text, err := Preset(mode)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ModeContent{Mode: mode, Prompt: text})
}
