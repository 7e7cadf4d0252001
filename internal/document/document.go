// Package document turns uploaded bytes into an ordered sequence of page
// rasters. Images pass through as a single page; PDFs are rasterized page by
// page through a Rasterizer.
package document

import (
	"errors"
	"image"
)

// Kind declares how the bytes of a Document are interpreted.
type Kind string

// Supported document kinds.
const (
	KindImage Kind = "image"
	KindPaged Kind = "paged-document"
)

// NativeDPI is the coordinate resolution of PDF user space.
const NativeDPI = 72

// ErrDecode reports bytes that could not be parsed as the declared kind.
var ErrDecode = errors.New("failed to decode document")

// Document is an uploaded file and its declared kind.
type Document struct {
	Data     []byte
	Kind     Kind
	Filename string
}

// Page is a single decoded raster with its 1-based position in the document.
type Page struct {
	Number int
	Image  image.Image
}
