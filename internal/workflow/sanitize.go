package workflow

import "strings"

// EndOfSentence is the model's end-of-sequence marker, which survives in the
// output because special tokens are not skipped during decoding.
const EndOfSentence = "<｜end▁of▁sentence｜>"

// Sanitize removes every end-of-sequence marker from raw model output.
func Sanitize(text string) string {
	return strings.ReplaceAll(text, EndOfSentence, "")
}
