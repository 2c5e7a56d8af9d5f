// Package pipeline chains rasterization, OCR and structured extraction for one PDF.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"receiptiq/internal/logging"
	"receiptiq/internal/raster"
	"receiptiq/internal/record"
)

// ErrExtractionFailed is the single failure signal of a run. The stage cause is wrapped alongside it.
var ErrExtractionFailed = errors.New("failed to extract data from receipt")

// ErrNoPages means the document rendered to zero pages.
var ErrNoPages = errors.New("document has no renderable pages")

// ErrEmptyRecord means extraction returned no fields at all.
var ErrEmptyRecord = errors.New("extraction returned an empty record")

const (
	StageRasterize = "rasterize"
	StageRecognize = "recognize"
	StageExtract   = "extract"
)

// Recognizer turns page images into text.
type Recognizer interface {
	Recognize(ctx context.Context, pages []raster.PageImage) (string, error)
}

// Extractor turns text into a structured record.
type Extractor interface {
	Extract(ctx context.Context, text string) (record.Record, error)
}

// Pipeline runs the stages sequentially. It holds no per-run state and may be
// shared by concurrent requests.
type Pipeline struct {
	rasterizer raster.Rasterizer
	recognizer Recognizer
	extractor  Extractor
	metrics    *Metrics
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New creates a Pipeline. metrics may be nil.
func New(r raster.Rasterizer, rec Recognizer, ext Extractor, metrics *Metrics, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		rasterizer: r,
		recognizer: rec,
		extractor:  ext,
		metrics:    metrics,
		tracer:     otel.Tracer("receiptiq/pipeline"),
		logger:     logging.Component(logger, "pipeline"),
	}
}

// Run extracts a structured record from the PDF at path. On any failure it
// returns a nil record and an error wrapping ErrExtractionFailed.
func (p *Pipeline) Run(ctx context.Context, path string) (rec record.Record, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.String("receipt.path", path)))
	failedStage := ""

	defer func() {
		if r := recover(); r != nil {
			failedStage = "panic"
			rec, err = nil, fmt.Errorf("%w: panic: %v", ErrExtractionFailed, r)
			logging.Critical(&p.logger).Str("event", "pipeline_panic").Interface("panic", r).Msg("recovered from panic")
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, failedStage)
		}
		span.End()
		p.metrics.observe(time.Since(start).Seconds(), failedStage)
	}()

	fail := func(stage string, cause error) (record.Record, error) {
		failedStage = stage
		p.logger.Error().Str("event", "stage_failed").Str("stage", stage).Str("path", path).Err(cause).Msg("extraction failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, stage, cause)
	}

	var pages []raster.PageImage
	err = p.stage(ctx, StageRasterize, func(ctx context.Context) error {
		var err error
		pages, err = p.rasterizer.Rasterize(ctx, path)
		if err == nil && len(pages) == 0 {
			err = ErrNoPages
		}
		return err
	})
	if err != nil {
		return fail(StageRasterize, err)
	}

	var text string
	err = p.stage(ctx, StageRecognize, func(ctx context.Context) error {
		var err error
		text, err = p.recognizer.Recognize(ctx, pages)
		return err
	})
	if err != nil {
		return fail(StageRecognize, err)
	}

	err = p.stage(ctx, StageExtract, func(ctx context.Context) error {
		var err error
		rec, err = p.extractor.Extract(ctx, text)
		if err == nil && len(rec) == 0 {
			err = ErrEmptyRecord
		}
		return err
	})
	if err != nil {
		return fail(StageExtract, err)
	}

	p.logger.Info().Str("event", "pipeline_succeeded").Str("path", path).Int("pages", len(pages)).Dur("elapsed", time.Since(start)).Msg("extraction complete")
	return rec, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
