package engine

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/JaimeStill/scribe/internal/prompts"
)

var _ Engine = (*Client)(nil)

// Client submits OCR requests to an OpenAI-compatible vLLM server.
type Client struct {
	model  string
	client openai.Client
}

type clientConfig struct {
	token   string
	timeout time.Duration
	http    *http.Client
}

// Option configures a Client.
type Option func(*clientConfig)

// WithToken sets the bearer token sent to the server.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithRequestTimeout bounds each request. Zero leaves requests unbounded.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient overrides the transport used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.http = client
	}
}

// NewClient creates a Client for model served at url. Requests are never
// retried.
func NewClient(url, model string, options ...Option) *Client {
	cfg := &clientConfig{
		token: "EMPTY",
		http:  http.DefaultClient,
	}

	for _, o := range options {
		o(cfg)
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(url, "/") + "/"),
		option.WithHTTPClient(cfg.http),
		option.WithAPIKey(cfg.token),
		option.WithMaxRetries(0),
	}

	if cfg.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.timeout))
	}

	return &Client{
		model:  model,
		client: openai.NewClient(opts...),
	}
}

// Model returns the served model name.
func (c *Client) Model() string {
	return c.model
}

// Submit sends one chat completion carrying the prompt and a single image.
func (c *Client) Submit(ctx context.Context, prompt string, visual Visual, sampling SamplingConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: visual.DataURI,
				}),
				openai.TextContentPart(chatPrompt(prompt)),
			}),
		},
		MaxTokens:   openai.Int(sampling.MaxTokens),
		Temperature: openai.Float(sampling.Temperature),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params, samplingOptions(sampling)...)
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyReply
	}

	return completion.Choices[0].Message.Content, nil
}

// Served reports whether the server currently lists the configured model.
func (c *Client) Served(ctx context.Context) (bool, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list models: %w", err)
	}

	return slices.ContainsFunc(page.Data, func(m openai.Model) bool {
		return m.ID == c.model
	}), nil
}

// The chat template inserts the image token itself, so a leading placeholder
// in the prompt text would duplicate it.
func chatPrompt(prompt string) string {
	trimmed := strings.TrimLeft(prompt, " \t\r\n")
	if rest, ok := strings.CutPrefix(trimmed, prompts.ImagePlaceholder); ok {
		return strings.TrimLeft(rest, "\r\n")
	}
	return prompt
}

func samplingOptions(s SamplingConfig) []option.RequestOption {
	return []option.RequestOption{
		option.WithJSONSet("skip_special_tokens", s.SkipSpecialTokens),
		option.WithJSONSet("include_stop_str_in_output", s.IncludeStopStrInOutput),
		option.WithJSONSet("vllm_xargs", map[string]any{
			"ngram_size":          s.NGram.NGramSize,
			"window_size":         s.NGram.WindowSize,
			"whitelist_token_ids": s.NGram.WhitelistTokenIDs,
		}),
	}
}
