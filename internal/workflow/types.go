package workflow

import (
	"github.com/JaimeStill/scribe/internal/document"
	"github.com/JaimeStill/scribe/internal/engine"
)

// Stage names a step of request processing. Each transition is logged.
type Stage string

// Processing stages in order. A request ends in either StageDecomposeFailed
// or StageAggregated.
const (
	StageReceived        Stage = "received"
	StageDecomposing     Stage = "decomposing"
	StageDecomposeFailed Stage = "decompose_failed"
	StageDecomposed      Stage = "decomposed"
	StageDispatching     Stage = "dispatching"
	StageSanitizing      Stage = "sanitizing"
	StageAggregated      Stage = "aggregated"
)

// Request is one OCR request entering the pipeline.
type Request struct {
	ID       string
	Document document.Document
	// Prompt overrides the default prompt when non-blank.
	Prompt string
}

// Job is the unit of work for a single inference call.
type Job struct {
	Page     document.Page
	Prompt   string
	Sampling engine.SamplingConfig
}

// Outcome is the result of one page: either text or an error, never both.
type Outcome struct {
	PageNumber int
	Text       string
	Err        error
}

// Success builds a successful Outcome.
func Success(page int, text string) Outcome {
	return Outcome{PageNumber: page, Text: text}
}

// Failure builds a failed Outcome.
func Failure(page int, err error) Outcome {
	return Outcome{PageNumber: page, Err: err}
}

// OK reports whether the page succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Message returns the failure message, or an empty string on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// BatchResult aggregates the outcomes of a paged document. Outcomes are in
// ascending page order and hold exactly one entry per page.
type BatchResult struct {
	Outcomes   []Outcome
	TotalPages int
	Filename   string
	Success    bool
}

// Failed returns the number of pages whose inference failed.
func (b *BatchResult) Failed() int {
	n := 0
	for _, o := range b.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// ImageResult is the outcome of a single-image request. PageCount is 1 on
// success and 0 on any failure.
type ImageResult struct {
	Success   bool
	Text      string
	Err       error
	PageCount int
}
