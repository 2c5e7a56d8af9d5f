// Package raster renders PDF pages into images for OCR.
package raster

import (
	"context"
	"errors"
)

// ErrToolchainMissing means the rendering toolchain is not installed or cannot
// be found at the configured location. It requires operator intervention.
var ErrToolchainMissing = errors.New("pdf rendering toolchain not found")

// ErrConversion wraps any other failure while rendering a document.
var ErrConversion = errors.New("pdf to image conversion failed")

// PageImage is one rendered page, PNG encoded. Number is 1-based.
type PageImage struct {
	Number int
	PNG    []byte
}

// Rasterizer converts a PDF on disk into page images in page order.
// A document without pages yields an empty slice and no error.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) ([]PageImage, error)
}
