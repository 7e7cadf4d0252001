// Package middleware provides composable HTTP middleware: request ids,
// request logging, CORS, and OpenTelemetry instrumentation.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	mws []Middleware
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Middleware) {
	s.mws = append(s.mws, mw)
}

// Apply wraps handler so the first middleware added is outermost.
func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, s.mws...)
}

// Chain wraps handler with mws, the first being outermost.
func Chain(handler http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
