package raster

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
)

// MuPDF renders pages in-process with go-fitz. The renderer is linked into the
// binary, so it never reports ErrToolchainMissing.
type MuPDF struct {
	dpi    float64
	logger zerolog.Logger
}

// NewMuPDF creates a go-fitz backed Rasterizer.
func NewMuPDF(dpi int, logger zerolog.Logger) *MuPDF {
	if dpi <= 0 {
		dpi = 300
	}
	return &MuPDF{dpi: float64(dpi), logger: logging.Component(logger, "rasterizer")}
}

// Rasterize renders every page of path as PNG.
func (m *MuPDF) Rasterize(ctx context.Context, path string) ([]PageImage, error) {
	doc, err := fitz.New(path)
	if err != nil {
		m.logger.Error().Str("event", "rasterize_failed").Str("path", path).Err(err).Msg("failed to open pdf")
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make([]PageImage, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := doc.ImagePNG(i, m.dpi)
		if err != nil {
			m.logger.Error().Str("event", "rasterize_failed").Str("path", path).Int("page", i+1).Err(err).Msg("failed to render page")
			return nil, fmt.Errorf("%w: page %d: %v", ErrConversion, i+1, err)
		}
		pages = append(pages, PageImage{Number: i + 1, PNG: png})
	}
	return pages, nil
}
