// Package engine is the boundary to the vision-language model that performs
// OCR. The model server is external; this package submits single-image
// requests to it and tracks whether it is ready to serve them.
package engine

import "context"

// Engine runs one OCR inference over a single visual input.
type Engine interface {
	Submit(ctx context.Context, prompt string, visual Visual, sampling SamplingConfig) (string, error)
}

// Visual is an encoded page raster ready for submission.
type Visual struct {
	DataURI string
	Width   int
	Height  int
}

// NGramPolicy configures the server-side no-repeat-n-gram logits processor.
// Tokens listed in WhitelistTokenIDs are exempt from the repetition ban.
type NGramPolicy struct {
	NGramSize         int     `json:"ngram_size"`
	WindowSize        int     `json:"window_size"`
	WhitelistTokenIDs []int64 `json:"whitelist_token_ids"`
}

// SamplingConfig is the fixed decoding configuration applied to every call.
type SamplingConfig struct {
	Temperature            float64
	MaxTokens              int64
	SkipSpecialTokens      bool
	IncludeStopStrInOutput bool
	NGram                  NGramPolicy
}

// DefaultSampling returns greedy decoding with the repetition guard the OCR
// model is tuned for. The whitelisted ids are the table cell delimiters.
func DefaultSampling() SamplingConfig {
	return SamplingConfig{
		Temperature:            0,
		MaxTokens:              8192,
		SkipSpecialTokens:      false,
		IncludeStopStrInOutput: true,
		NGram: NGramPolicy{
			NGramSize:         20,
			WindowSize:        50,
			WhitelistTokenIDs: []int64{128821, 128822},
		},
	}
}
