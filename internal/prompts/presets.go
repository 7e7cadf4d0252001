package prompts

// ImagePlaceholder marks where the model expects the visual input within a
// prompt.
const ImagePlaceholder = "<image>"

const (
	markdownPrompt = ImagePlaceholder + "\n<|grounding|>Convert the document to markdown. "
	freePrompt     = ImagePlaceholder + "\nFree OCR. "
	figurePrompt   = ImagePlaceholder + "\nParse the figure. "
	describePrompt = ImagePlaceholder + "\nDescribe this image in detail."
)

// DefaultPrompt is the prompt used when neither configuration nor the caller
// supplies one.
const DefaultPrompt = markdownPrompt

var presets = map[Mode]string{
	ModeMarkdown: markdownPrompt,
	ModeFree:     freePrompt,
	ModeFigure:   figurePrompt,
	ModeDescribe: describePrompt,
}

// Preset returns the prompt text for a mode.
// Returns ErrInvalidMode if the mode is not recognized.
func Preset(mode Mode) (string, error) {
	text, ok := presets[mode]
	if !ok {
		return "", ErrInvalidMode
	}
	return text, nil
}
