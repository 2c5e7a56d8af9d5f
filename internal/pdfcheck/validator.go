// Package pdfcheck verifies that a stored file is a structurally sound PDF.
package pdfcheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
)

const (
	ReasonValid    = "File is a valid PDF."
	ReasonCorrupt  = "File is not a valid PDF or is corrupted."
	ReasonNotFound = "File not found at the specified path."
)

var disableConfigDir sync.Once

// Validator reads a PDF's header, cross-reference table and trailer without
// extracting page content.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator creates a Validator.
func NewValidator(logger zerolog.Logger) *Validator {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Validator{logger: logging.Component(logger, "pdf_validator")}
}

// Validate reports whether path holds a readable PDF and a human-readable reason.
// Every failure, including parser panics, is converted into (false, reason).
func (v *Validator) Validate(path string) (valid bool, reason string) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, ReasonNotFound
		}
		return false, fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	defer f.Close()

	if err := readStructure(f); err != nil {
		v.logger.Warn().Str("event", "pdf_invalid").Str("path", path).Err(err).Msg("pdf structure rejected")
		return false, ReasonCorrupt
	}

	v.logger.Info().Str("event", "pdf_valid").Str("path", path).Msg(ReasonValid)
	return true, ReasonValid
}

func readStructure(f *os.File) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	_, err = api.ReadContext(f, conf)
	return err
}
