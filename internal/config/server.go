package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "SCRIBE_SERVER_HOST"
	EnvServerPort            = "SCRIBE_SERVER_PORT"
	EnvServerReadTimeout     = "SCRIBE_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "SCRIBE_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "SCRIBE_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "SCRIBE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Duration accessors are valid
// after Finalize.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`

	read, write, idle, shutdown time.Duration
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeoutDuration returns the parsed read timeout.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration { return c.read }

// WriteTimeoutDuration returns the parsed write timeout.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return c.write }

// IdleTimeoutDuration returns the parsed keep-alive idle timeout.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration { return c.idle }

// ShutdownTimeoutDuration returns the parsed drain timeout for in-flight
// requests.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return c.shutdown }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.durations() {
		if v := *f.field(overlay); v != "" {
			*f.field(c) = v
		}
	}
}

type durationField struct {
	name   string
	env    string
	def    string
	field  func(*ServerConfig) *string
	parsed func(*ServerConfig) *time.Duration
}

func (c *ServerConfig) durations() []durationField {
	return []durationField{
		{"read_timeout", EnvServerReadTimeout, "5m",
			func(s *ServerConfig) *string { return &s.ReadTimeout },
			func(s *ServerConfig) *time.Duration { return &s.read }},
		{"write_timeout", EnvServerWriteTimeout, "30m",
			func(s *ServerConfig) *string { return &s.WriteTimeout },
			func(s *ServerConfig) *time.Duration { return &s.write }},
		{"idle_timeout", EnvServerIdleTimeout, "2m",
			func(s *ServerConfig) *string { return &s.IdleTimeout },
			func(s *ServerConfig) *time.Duration { return &s.idle }},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s",
			func(s *ServerConfig) *string { return &s.ShutdownTimeout },
			func(s *ServerConfig) *time.Duration { return &s.shutdown }},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	for _, f := range c.durations() {
		if *f.field(c) == "" {
			*f.field(c) = f.def
		}
	}
}

func (c *ServerConfig) loadEnv() error {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerPort, err)
		}
		c.Port = port
	}
	for _, f := range c.durations() {
		if v := os.Getenv(f.env); v != "" {
			*f.field(c) = v
		}
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations() {
		d, err := time.ParseDuration(*f.field(c))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s: must not be negative", f.name)
		}
		*f.parsed(c) = d
	}
	return nil
}
