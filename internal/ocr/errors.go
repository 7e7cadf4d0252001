package ocr

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scribe/internal/engine"
	"github.com/JaimeStill/scribe/internal/prompts"
)

// Request validation errors.
var (
	ErrInvalidFile  = errors.New("a file upload is required in the 'file' field")
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
	ErrTooManyPages = errors.New("document exceeds the page limit")
)

// MapHTTPStatus maps request errors to HTTP status codes. Readiness is
// checked first.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrTooManyPages):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, prompts.ErrInvalidMode):
		return prompts.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
