package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

// EncodeVisual encodes img as a PNG data URI.
func EncodeVisual(img image.Image) (Visual, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Visual{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	uri, err := encoding.EncodeImageDataURI(buf.Bytes(), document.PNG)
	if err != nil {
		return Visual{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	b := img.Bounds()
	return Visual{
		DataURI: uri,
		Width:   b.Dx(),
		Height:  b.Dy(),
	}, nil
}
