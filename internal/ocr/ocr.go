// Package ocr turns rendered page images into plain text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
	"receiptiq/internal/raster"
)

var (
	// ErrEngineUnavailable means the OCR engine or its language data is not installed.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrNoText means recognition produced nothing but whitespace.
	ErrNoText = errors.New("no text recognized")
)

// Engine recognizes the text of one PNG image.
type Engine interface {
	Text(ctx context.Context, png []byte) (string, error)
}

// Recognizer runs an Engine over every page of a document.
type Recognizer struct {
	engine Engine
	logger zerolog.Logger
}

func NewRecognizer(engine Engine, logger zerolog.Logger) *Recognizer {
	return &Recognizer{engine: engine, logger: logging.Component(logger, "ocr")}
}

// Recognize concatenates page texts in page order, each followed by a blank line.
// A page that fails is skipped. An unavailable engine aborts the whole run.
func (r *Recognizer) Recognize(ctx context.Context, pages []raster.PageImage) (string, error) {
	var sb strings.Builder
	failed := 0
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := r.engine.Text(ctx, pg.PNG)
		if err != nil {
			if errors.Is(err, ErrEngineUnavailable) {
				logging.Critical(&r.logger).
					Str("event", "engine_unavailable").
					Err(err).
					Msg("tesseract is not installed or language data is missing")
				return "", err
			}
			failed++
			r.logger.Warn().Str("event", "page_failed").Int("page", pg.Number).Err(err).Msg("skipping page")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		r.logger.Warn().Str("event", "no_text").Int("pages", len(pages)).Int("failed_pages", failed).Msg("ocr produced no text")
		return "", fmt.Errorf("%w (%d pages, %d failed)", ErrNoText, len(pages), failed)
	}
	r.logger.Debug().Str("event", "recognized").Int("pages", len(pages)).Int("chars", len(out)).Msg("ocr complete")
	return out, nil
}
