package prompts

import (
	"encoding/json"
	"slices"
)

// Mode names a preset recognition task understood by the OCR model.
type Mode string

// Known recognition modes.
const (
	ModeMarkdown Mode = "markdown"
	ModeFree     Mode = "free"
	ModeFigure   Mode = "figure"
	ModeDescribe Mode = "describe"
)

var modes = []Mode{
	ModeMarkdown,
	ModeFree,
	ModeFigure,
	ModeDescribe,
}

// Modes returns the list of known modes.
func Modes() []Mode {
	return modes
}

// UnmarshalJSON validates that the decoded string is a known mode.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseMode(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode validates a string as a known mode.
// Returns ErrInvalidMode if the value is not recognized.
func ParseMode(s string) (Mode, error) {
	v := Mode(s)
	if !slices.Contains(modes, v) {
		return "", ErrInvalidMode
	}
	return v, nil
}
