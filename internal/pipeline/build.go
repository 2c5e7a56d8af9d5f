package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"receiptiq/internal/config"
	"receiptiq/internal/llm"
	"receiptiq/internal/ocr"
	"receiptiq/internal/raster"
)

// Build assembles the rasterizer, OCR engine and extractor selected by cfg.
func Build(cfg *config.AppConfig, metrics *Metrics, logger zerolog.Logger) (*Pipeline, error) {
	var r raster.Rasterizer
	switch cfg.Raster.Backend {
	case config.RasterBackendMuPDF:
		r = raster.NewMuPDF(cfg.Raster.DPI, logger)
	case config.RasterBackendPoppler:
		r = raster.NewPoppler(raster.PopplerConfig{
			InstallDir: cfg.Raster.PopplerPath,
			DPI:        cfg.Raster.DPI,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported raster backend %q", cfg.Raster.Backend)
	}

	recognizer := ocr.NewRecognizer(ocr.NewTesseract(cfg.OCR.Languages, cfg.OCR.TessdataPrefix), logger)

	model, err := llm.NewOpenAIModel(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	extractor := llm.NewExtractor(model, cfg.LLM.MaxRetries, logger)

	return New(r, recognizer, extractor, metrics, logger), nil
}
