// Package routes declares HTTP routes as nested prefix groups and registers
// them on a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/scribe/pkg/openapi"
)

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk("", groups, func(path string, _ []string, route Route) {
		mux.HandleFunc(route.Method+" "+path, route.Handler)
	})
}

// Describe adds every documented route to spec, with paths rooted at base.
// Group tags are applied to operations that declare none.
func Describe(spec *openapi.Spec, base string, groups ...Group) {
	walk(base, groups, func(path string, tags []string, route Route) {
		if route.OpenAPI == nil {
			return
		}
		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		spec.AddOperation(path, route.Method, &op)
	})
}

func walk(prefix string, groups []Group, fn func(path string, tags []string, route Route)) {
	for _, group := range groups {
		full := prefix + group.Prefix
		for _, route := range group.Routes {
			fn(full+route.Pattern, group.Tags, route)
		}
		walk(full, group.Children, fn)
	}
}
