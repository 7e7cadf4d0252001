// Package prompts selects the instruction text sent to the OCR model with
// each page. A caller-supplied prompt always wins; otherwise a named preset
// or the configured default applies.
package prompts

import "strings"

// Resolver chooses the effective prompt for a request.
type Resolver struct {
	defaultPrompt string
}

// NewResolver creates a Resolver falling back to defaultPrompt.
// A blank defaultPrompt uses DefaultPrompt.
func NewResolver(defaultPrompt string) *Resolver {
	if strings.TrimSpace(defaultPrompt) == "" {
		defaultPrompt = DefaultPrompt
	}
	return &Resolver{defaultPrompt: defaultPrompt}
}

// Default returns the configured default prompt.
func (r *Resolver) Default() string {
	return r.defaultPrompt
}

// Resolve returns override when it carries any non-whitespace text,
// otherwise the default prompt. The override is returned verbatim.
func (r *Resolver) Resolve(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return r.defaultPrompt
}

// Select resolves a request that may name a preset mode instead of a
// literal prompt. An explicit override takes precedence over mode.
func (r *Resolver) Select(override, mode string) (string, error) {
	if strings.TrimSpace(override) != "" || mode == "" {
		return r.Resolve(override), nil
	}

	m, err := ParseMode(mode)
	if err != nil {
		return "", err
	}
	return Preset(m)
}
