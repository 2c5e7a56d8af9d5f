// Package llm turns raw receipt text into a structured record using an
// OpenAI-compatible chat completion endpoint in JSON mode.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"receiptiq/internal/logging"
	"receiptiq/internal/record"
)

// ErrExtraction is returned for any failure to obtain a structured record.
var ErrExtraction = errors.New("structured extraction failed")

var errEmptyRecord = errors.New("model returned an empty object")

// ChatModel is the subset of llms.Model the extractor needs.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Config configures NewOpenAIModel and the Extractor.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// NewOpenAIModel builds a langchaingo OpenAI client with a traced HTTP transport.
func NewOpenAIModel(cfg Config) (ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return model, nil
}

// Extractor sends OCR text to the model and parses the JSON reply.
type Extractor struct {
	model      ChatModel
	maxRetries int
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

func NewExtractor(model ChatModel, maxRetries int, logger zerolog.Logger) *Extractor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Extractor{
		model:      model,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logging.Component(logger, "extractor"),
	}
}

// Extract returns the structured record for text. On failure the record is nil
// and the error wraps ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, text string) (record.Record, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(text)),
	}

	attempt := 0
	op := func() (record.Record, error) {
		attempt++
		resp, err := e.model.GenerateContent(ctx, messages, llms.WithJSONMode())
		if err != nil {
			e.logger.Warn().Str("event", "llm_call_failed").Int("attempt", attempt).Err(err).Msg("chat completion failed")
			return nil, err
		}
		if resp == nil || len(resp.Choices) == 0 {
			return nil, errors.New("empty completion")
		}
		rec, err := record.Parse([]byte(strings.TrimSpace(resp.Choices[0].Content)))
		if err != nil {
			// A malformed reply is not retried; the model answered.
			return nil, backoff.Permanent(err)
		}
		if len(rec) == 0 {
			return nil, backoff.Permanent(errEmptyRecord)
		}
		return rec, nil
	}

	rec, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(e.newBackOff()),
		backoff.WithMaxTries(uint(e.maxRetries+1)),
	)
	if err != nil {
		e.logger.Error().Str("event", "extraction_failed").Int("attempts", attempt).Err(err).Msg("llm error during json parsing")
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return rec, nil
}
