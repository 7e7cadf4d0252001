package engine

import (
	"errors"
	"net/http"
)

// Engine errors.
var (
	ErrNotReady   = errors.New("inference engine is not ready")
	ErrEmptyReply = errors.New("inference engine returned no choices")
	ErrEncode     = errors.New("failed to encode visual input")
)

// MapHTTPStatus maps engine errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
