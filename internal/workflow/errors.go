// Package workflow orchestrates OCR requests: it decomposes an upload into
// pages, runs each page through the inference engine under the shared gate,
// sanitizes the output and aggregates per-page outcomes in page order.
package workflow

import "errors"

// ErrInference wraps any failure of a single inference call.
var ErrInference = errors.New("inference failed")
