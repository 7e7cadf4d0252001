package telemetry

import (
	"os"
	"strconv"
)

// Config controls OpenTelemetry export. Exporter endpoints and protocols
// follow the standard OTEL_EXPORTER_OTLP_* environment variables.
type Config struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled     string
	ServiceName string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	if c.ServiceName == "" {
		c.ServiceName = "scribe"
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v, err := strconv.ParseBool(os.Getenv(env.Enabled)); err == nil {
			c.Enabled = v
		}
	}
	if env.ServiceName != "" {
		if v := os.Getenv(env.ServiceName); v != "" {
			c.ServiceName = v
		}
	}
}
