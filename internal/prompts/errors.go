package prompts

import (
	"errors"
	"net/http"
)

// ErrInvalidMode reports an unrecognized recognition mode.
var ErrInvalidMode = errors.New("mode must be markdown, free, figure, or describe")

// MapHTTPStatus maps prompt errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidMode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
