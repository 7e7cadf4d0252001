package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/scribe/internal/document"
)

const (
	EnvDocumentDPI     = "SCRIBE_DOCUMENT_DPI"
	EnvDocumentPrompt  = "SCRIBE_DOCUMENT_PROMPT"
	EnvDocumentTempDir = "SCRIBE_DOCUMENT_TEMP_DIR"
)

// DocumentConfig holds page rasterization and default prompt settings.
type DocumentConfig struct {
	DPI     int    `toml:"dpi"`
	Prompt  string `toml:"prompt"`
	TempDir string `toml:"temp_dir"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DocumentConfig) Finalize() error {
	if c.DPI == 0 {
		c.DPI = document.DefaultDPI
	}
	if v := os.Getenv(EnvDocumentDPI); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDocumentDPI, err)
		}
		c.DPI = dpi
	}
	if v := os.Getenv(EnvDocumentPrompt); v != "" {
		c.Prompt = v
	}
	if v := os.Getenv(EnvDocumentTempDir); v != "" {
		c.TempDir = v
	}

	if c.DPI < document.NativeDPI || c.DPI > 600 {
		return fmt.Errorf("dpi must be between %d and 600: %d", document.NativeDPI, c.DPI)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *DocumentConfig) Merge(overlay *DocumentConfig) {
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Prompt != "" {
		c.Prompt = overlay.Prompt
	}
	if overlay.TempDir != "" {
		c.TempDir = overlay.TempDir
	}
}
