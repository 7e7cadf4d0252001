package ocr

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	groundingBlock = regexp.MustCompile(`(?s)<\|ref\|>.*?<\|/ref\|>\s*<\|det\|>.*?<\|/det\|>`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// The model emits tables as raw HTML, so raw HTML must pass through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Readable strips grounding annotations from model output, leaving the
// recognized content.
func Readable(text string) string {
	out := groundingBlock.ReplaceAllString(text, "")
	out = strings.ReplaceAll(out, "<|grounding|>", "")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// RenderHTML converts model markdown output to HTML.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Readable(text)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
