package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
)

const pdftoppmBinary = "pdftoppm"

// Runner executes an external command. It exists so tests can replace pdftoppm.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) (stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// PopplerConfig configures the pdftoppm backend.
type PopplerConfig struct {
	// InstallDir holds the pdftoppm binary. Empty means search $PATH.
	InstallDir string
	DPI        int
	TempDir    string
}

// Poppler renders pages with poppler's pdftoppm.
type Poppler struct {
	cfg    PopplerConfig
	runner Runner
	logger zerolog.Logger
}

// NewPoppler creates a pdftoppm-backed Rasterizer.
func NewPoppler(cfg PopplerConfig, logger zerolog.Logger) *Poppler {
	return NewPopplerWithRunner(cfg, execRunner{}, logger)
}

// NewPopplerWithRunner is NewPoppler with a custom command runner.
func NewPopplerWithRunner(cfg PopplerConfig, runner Runner, logger zerolog.Logger) *Poppler {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Poppler{cfg: cfg, runner: runner, logger: logging.Component(logger, "rasterizer")}
}

func (p *Poppler) binary() string {
	if p.cfg.InstallDir == "" {
		return pdftoppmBinary
	}
	return filepath.Join(p.cfg.InstallDir, pdftoppmBinary)
}

// Rasterize renders every page of path as PNG.
func (p *Poppler) Rasterize(ctx context.Context, path string) ([]PageImage, error) {
	bin, err := p.runner.LookPath(p.binary())
	if err != nil {
		logging.Critical(&p.logger).
			Str("event", "toolchain_missing").
			Str("poppler_path", p.cfg.InstallDir).
			Err(err).
			Msg("pdftoppm not found; verify POPPLER_PATH")
		return nil, fmt.Errorf("%w: %v", ErrToolchainMissing, err)
	}

	outDir, err := os.MkdirTemp(p.cfg.TempDir, "receiptiq-pages-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %v", ErrConversion, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(outDir); rmErr != nil {
			p.logger.Warn().Str("event", "temp_cleanup_failed").Str("dir", outDir).Err(rmErr).Msg("failed to remove page images")
		}
	}()

	prefix := filepath.Join(outDir, "page")
	stderr, err := p.runner.Run(ctx, bin, "-r", strconv.Itoa(p.cfg.DPI), "-png", path, prefix)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			logging.Critical(&p.logger).Str("event", "toolchain_missing").Err(err).Msg("pdftoppm could not be executed")
			return nil, fmt.Errorf("%w: %v", ErrToolchainMissing, err)
		}
		p.logger.Error().
			Str("event", "rasterize_failed").
			Str("path", path).
			Bytes("stderr", bytes.TrimSpace(stderr)).
			Err(err).
			Msg("error during pdf to image conversion")
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order.
	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	sort.Strings(files)

	pages := make([]PageImage, 0, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read page %d: %v", ErrConversion, i+1, err)
		}
		pages = append(pages, PageImage{Number: i + 1, PNG: data})
	}

	p.logger.Debug().Str("event", "rasterized").Str("path", path).Int("pages", len(pages)).Msg("pdf rendered")
	return pages, nil
}
