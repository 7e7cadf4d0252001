package document

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	dcconfig "github.com/JaimeStill/document-context/pkg/config"
	dcdocument "github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const sourcePDF = "source.pdf"

// Rasterizer opens paged documents for rendering.
type Rasterizer interface {
	Open(data []byte) (Source, error)
}

// Source is an open paged document. Callers must Close it on every path.
type Source interface {
	PageCount() int
	// Render rasterizes the 1-based page at the given resolution.
	Render(page, dpi int) (image.Image, error)
	Close() error
}

// PageCount reads the page count of a PDF without rendering it.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return count, nil
}

// MagickRasterizer renders PDF pages through document-context's ImageMagick
// renderer. PDFs are staged in a private temp directory for the lifetime of
// the Source.
type MagickRasterizer struct {
	tempRoot string
}

// NewMagickRasterizer creates a rasterizer staging files under tempRoot.
// An empty tempRoot uses the OS default temp directory.
func NewMagickRasterizer(tempRoot string) *MagickRasterizer {
	return &MagickRasterizer{tempRoot: tempRoot}
}

func (r *MagickRasterizer) Open(data []byte) (Source, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.tempRoot, "scribe-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	path := filepath.Join(dir, sourcePDF)
	if err := os.WriteFile(path, data, 0600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	doc, err := dcdocument.OpenPDF(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: open pdf: %w", ErrDecode, err)
	}

	return &magickSource{
		doc:   doc,
		dir:   dir,
		pages: count,
	}, nil
}

type magickSource struct {
	doc   dcdocument.Document
	dir   string
	pages int
}

func (s *magickSource) PageCount() int {
	return s.pages
}

func (s *magickSource) Render(page, dpi int) (image.Image, error) {
	p, err := s.doc.ExtractPage(page)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", page, err)
	}

	renderer, err := dcimage.NewImageMagickRenderer(renderConfig(dpi))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	data, err := p.ToImage(renderer, nil)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page %d raster: %w", page, err)
	}

	return img, nil
}

func (s *magickSource) Close() error {
	s.doc.Close()
	return os.RemoveAll(s.dir)
}

// ImageMagick's density is the target DPI, which renders at DPI/72
// magnification of PDF user space.
func renderConfig(dpi int) dcconfig.ImageConfig {
	return dcconfig.ImageConfig{
		Format: "png",
		DPI:    dpi,
		Options: map[string]any{
			"background": "white",
		},
	}
}
