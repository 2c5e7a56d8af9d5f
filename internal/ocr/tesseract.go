package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type tessClient interface {
	SetLanguage(langs ...string) error
	SetTessdataPrefix(prefix string) error
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	Close() error
}

// Tesseract is an Engine backed by libtesseract through gosseract.
// Each call gets its own client; gosseract clients are not safe for concurrent use.
type Tesseract struct {
	languages      []string
	tessdataPrefix string
	newClient      func() tessClient
}

func NewTesseract(languages []string, tessdataPrefix string) *Tesseract {
	return &Tesseract{
		languages:      languages,
		tessdataPrefix: tessdataPrefix,
		newClient:      func() tessClient { return gosseract.NewClient() },
	}
}

func (t *Tesseract) Text(_ context.Context, png []byte) (string, error) {
	client := t.newClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
	}
	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("load page image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		if isInitError(err) {
			return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return "", fmt.Errorf("recognize page: %w", err)
	}
	return text, nil
}

// gosseract initializes lazily, so missing language data only surfaces on Text.
func isInitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "initialize tessbaseapi") ||
		strings.Contains(msg, "tessdata") ||
		strings.Contains(msg, "failed loading language")
}
