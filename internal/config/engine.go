package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/scribe/internal/engine"
)

const (
	EnvEngineBaseURL              = "SCRIBE_ENGINE_BASE_URL"
	EnvEngineToken                = "SCRIBE_ENGINE_TOKEN"
	EnvEngineModel                = "SCRIBE_ENGINE_MODEL"
	EnvEngineMaxConcurrency       = "SCRIBE_ENGINE_MAX_CONCURRENCY"
	EnvEnginePageConcurrency      = "SCRIBE_ENGINE_PAGE_CONCURRENCY"
	EnvEngineAcquireTimeout       = "SCRIBE_ENGINE_ACQUIRE_TIMEOUT"
	EnvEngineRequestTimeout       = "SCRIBE_ENGINE_REQUEST_TIMEOUT"
	EnvEngineRateLimit            = "SCRIBE_ENGINE_RATE_LIMIT"
	EnvEnginePropagateCancel      = "SCRIBE_ENGINE_PROPAGATE_CANCEL"
	EnvEngineProbeInterval        = "SCRIBE_ENGINE_PROBE_INTERVAL"
	EnvEngineGPUMemoryUtilization = "SCRIBE_ENGINE_GPU_MEMORY_UTILIZATION"
	EnvEngineMaxModelLen          = "SCRIBE_ENGINE_MAX_MODEL_LEN"
)

// EngineConfig holds the model server connection, the inference gate, and
// the decoding parameters applied to every call.
//
// Durations are optional: an empty acquire_timeout waits for a gate slot
// indefinitely and an empty request_timeout leaves engine calls unbounded.
type EngineConfig struct {
	BaseURL              string         `toml:"base_url"`
	Token                string         `toml:"token"`
	Model                string         `toml:"model"`
	MaxConcurrency       int            `toml:"max_concurrency"`
	PageConcurrency      int            `toml:"page_concurrency"`
	AcquireTimeout       string         `toml:"acquire_timeout"`
	RequestTimeout       string         `toml:"request_timeout"`
	RateLimit            float64        `toml:"rate_limit"`
	PropagateCancel      bool           `toml:"propagate_cancel"`
	ProbeInterval        string         `toml:"probe_interval"`
	GPUMemoryUtilization float64        `toml:"gpu_memory_utilization"`
	MaxModelLen          int            `toml:"max_model_len"`
	Sampling             SamplingConfig `toml:"sampling"`
}

// SamplingConfig overrides the default decoding parameters. Zero values keep
// the defaults.
type SamplingConfig struct {
	Temperature       float64 `toml:"temperature"`
	MaxTokens         int64   `toml:"max_tokens"`
	NGramSize         int     `toml:"ngram_size"`
	WindowSize        int     `toml:"window_size"`
	WhitelistTokenIDs []int64 `toml:"whitelist_token_ids"`
}

// AcquireTimeoutDuration returns AcquireTimeout as a time.Duration, zero when unset.
func (c *EngineConfig) AcquireTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AcquireTimeout)
	return d
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration, zero when unset.
func (c *EngineConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// ProbeIntervalDuration returns ProbeInterval as a time.Duration.
func (c *EngineConfig) ProbeIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.ProbeInterval)
	return d
}

// Deployment returns the model server provisioning parameters.
func (c *EngineConfig) Deployment() engine.Deployment {
	return engine.Deployment{
		Model:                c.Model,
		MaxConcurrency:       c.MaxConcurrency,
		GPUMemoryUtilization: c.GPUMemoryUtilization,
		MaxModelLen:          c.MaxModelLen,
	}
}

// SamplingParams returns the default decoding configuration with the
// configured overrides applied.
func (c *EngineConfig) SamplingParams() engine.SamplingConfig {
	s := engine.DefaultSampling()
	if c.Sampling.Temperature != 0 {
		s.Temperature = c.Sampling.Temperature
	}
	if c.Sampling.MaxTokens != 0 {
		s.MaxTokens = c.Sampling.MaxTokens
	}
	if c.Sampling.NGramSize != 0 {
		s.NGram.NGramSize = c.Sampling.NGramSize
	}
	if c.Sampling.WindowSize != 0 {
		s.NGram.WindowSize = c.Sampling.WindowSize
	}
	if c.Sampling.WhitelistTokenIDs != nil {
		s.NGram.WhitelistTokenIDs = c.Sampling.WhitelistTokenIDs
	}
	return s
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. PropagateCancel always applies.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.PageConcurrency != 0 {
		c.PageConcurrency = overlay.PageConcurrency
	}
	if overlay.AcquireTimeout != "" {
		c.AcquireTimeout = overlay.AcquireTimeout
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	c.PropagateCancel = overlay.PropagateCancel
	if overlay.ProbeInterval != "" {
		c.ProbeInterval = overlay.ProbeInterval
	}
	if overlay.GPUMemoryUtilization != 0 {
		c.GPUMemoryUtilization = overlay.GPUMemoryUtilization
	}
	if overlay.MaxModelLen != 0 {
		c.MaxModelLen = overlay.MaxModelLen
	}

	if overlay.Sampling.Temperature != 0 {
		c.Sampling.Temperature = overlay.Sampling.Temperature
	}
	if overlay.Sampling.MaxTokens != 0 {
		c.Sampling.MaxTokens = overlay.Sampling.MaxTokens
	}
	if overlay.Sampling.NGramSize != 0 {
		c.Sampling.NGramSize = overlay.Sampling.NGramSize
	}
	if overlay.Sampling.WindowSize != 0 {
		c.Sampling.WindowSize = overlay.Sampling.WindowSize
	}
	if overlay.Sampling.WhitelistTokenIDs != nil {
		c.Sampling.WhitelistTokenIDs = overlay.Sampling.WhitelistTokenIDs
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8001/v1"
	}
	if c.Model == "" {
		c.Model = "deepseek-ai/DeepSeek-OCR"
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 5
	}
	if c.ProbeInterval == "" {
		c.ProbeInterval = "2s"
	}
	if c.GPUMemoryUtilization == 0 {
		c.GPUMemoryUtilization = 0.85
	}
	if c.MaxModelLen == 0 {
		c.MaxModelLen = 8192
	}
}

func (c *EngineConfig) loadEnv() error {
	strs := map[string]*string{
		EnvEngineBaseURL:        &c.BaseURL,
		EnvEngineToken:          &c.Token,
		EnvEngineModel:          &c.Model,
		EnvEngineAcquireTimeout: &c.AcquireTimeout,
		EnvEngineRequestTimeout: &c.RequestTimeout,
		EnvEngineProbeInterval:  &c.ProbeInterval,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvEngineMaxConcurrency:  &c.MaxConcurrency,
		EnvEnginePageConcurrency: &c.PageConcurrency,
		EnvEngineMaxModelLen:     &c.MaxModelLen,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		EnvEngineRateLimit:            &c.RateLimit,
		EnvEngineGPUMemoryUtilization: &c.GPUMemoryUtilization,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}

	if v := os.Getenv(EnvEnginePropagateCancel); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEnginePropagateCancel, err)
		}
		c.PropagateCancel = b
	}
	return nil
}

func (c *EngineConfig) validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1: %d", c.MaxConcurrency)
	}
	if c.PageConcurrency < 0 {
		return fmt.Errorf("page_concurrency must not be negative: %d", c.PageConcurrency)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative: %v", c.RateLimit)
	}
	if c.GPUMemoryUtilization <= 0 || c.GPUMemoryUtilization > 1 {
		return fmt.Errorf("gpu_memory_utilization must be in (0, 1]: %v", c.GPUMemoryUtilization)
	}

	durations := map[string]string{
		"acquire_timeout": c.AcquireTimeout,
		"request_timeout": c.RequestTimeout,
		"probe_interval":  c.ProbeInterval,
	}
	for name, v := range durations {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}
	return nil
}
