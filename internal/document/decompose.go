package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultDPI is the resolution used to rasterize paged documents.
const DefaultDPI = 144

// Decomposer converts a Document into its ordered pages.
type Decomposer struct {
	rasterizer Rasterizer
	dpi        int
	logger     *slog.Logger
}

// NewDecomposer creates a Decomposer that renders paged documents with r
// at dpi. A non-positive dpi falls back to DefaultDPI.
func NewDecomposer(r Rasterizer, dpi int, logger *slog.Logger) *Decomposer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Decomposer{
		rasterizer: r,
		dpi:        dpi,
		logger:     logger.With("system", "document"),
	}
}

// DPI returns the rasterization resolution.
func (d *Decomposer) DPI() int {
	return d.dpi
}

// Scale returns the rasterization magnification relative to PDF user space.
func (d *Decomposer) Scale() float64 {
	return float64(d.dpi) / NativeDPI
}

// Decompose returns the pages of doc in ascending order. Any failure yields
// ErrDecode and no pages.
func (d *Decomposer) Decompose(ctx context.Context, doc Document) ([]Page, error) {
	switch doc.Kind {
	case KindImage:
		img, err := DecodeImage(doc.Data)
		if err != nil {
			return nil, err
		}
		return []Page{{Number: 1, Image: img}}, nil
	case KindPaged:
		return d.decomposePaged(ctx, doc)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrDecode, doc.Kind)
	}
}

func (d *Decomposer) decomposePaged(ctx context.Context, doc Document) ([]Page, error) {
	src, err := d.rasterizer.Open(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer src.Close()

	count := src.PageCount()
	if count < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrDecode)
	}

	pages := make([]Page, 0, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := src.Render(n, d.dpi)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		pages = append(pages, Page{Number: n, Image: img})
	}

	d.logger.Info(
		"document decomposed",
		"filename", doc.Filename,
		"pages", count,
		"dpi", d.dpi,
	)

	return pages, nil
}

// DecodeImage decodes a single raster in any registered format.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}
