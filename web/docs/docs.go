// Package docs serves the interactive API reference for the OpenAPI document.
package docs

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/scribe/pkg/module"
)

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

// NewModule creates a module that serves the Scalar API reference UI at
// basePath, rendering the spec found at specURL.
func NewModule(basePath, title, specURL string) (*module.Module, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, map[string]string{
			"Title":   title,
			"SpecURL": specURL,
		})
	})
	return module.New(basePath, mux)
}
