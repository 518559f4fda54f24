package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

// AnthropicExtractor extracts thoughts through the Anthropic Messages API
type AnthropicExtractor struct {
	client          anthropic.Client
	model           string
	maxTokens       int
	temperature     float64
	maxRetryElapsed time.Duration
	limiter         *rate.Limiter
	logger          *zap.Logger
}

// NewAnthropicExtractor creates an extractor from the provided config.
// Retries are handled here, so the SDK's own retry loop is disabled.
func NewAnthropicExtractor(cfg *config.ExtractorConfig, logger *zap.Logger) *AnthropicExtractor {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicExtractor{
		client:          anthropic.NewClient(opts...),
		model:           cfg.Model,
		maxTokens:       maxTokens,
		temperature:     cfg.Temperature,
		maxRetryElapsed: cfg.MaxRetryElapsed,
		limiter:         newLimiter(cfg.RequestsPerMinute),
		logger:          logger,
	}
}

// Extract sends one chunk to the model and decodes the returned thoughts
func (a *AnthropicExtractor) Extract(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
	system, user := BuildExtractionPrompt(chunk, vocabulary, version)

	var response *anthropic.Message
	call := func() error {
		if err := a.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		resp, apiErr := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(a.model),
			MaxTokens:   int64(a.maxTokens),
			Temperature: anthropic.Float(a.temperature),
			System:      []anthropic.TextBlockParam{{Text: system}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
			},
		})
		if apiErr != nil {
			return classifyAnthropic(apiErr)
		}
		response = resp
		return nil
	}

	if err := backoff.Retry(call, backoff.WithContext(newBackOff(a.maxRetryElapsed), ctx)); err != nil {
		return nil, &entities.ExtractionError{Reason: "anthropic request failed", Err: err}
	}

	// Extract the text content from the response
	var responseText strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText.WriteString(block.Text)
		}
	}

	result := DecodeExtraction(responseText.String(), version)
	if !result.Success {
		return nil, &entities.ExtractionError{Reason: result.Error}
	}
	if result.Dropped > 0 && a.logger != nil {
		a.logger.Warn("⚠️ Dropped invalid thought candidates",
			zap.Int("dropped", result.Dropped),
			zap.Int("kept", len(result.Candidates)),
		)
	}
	return result.Candidates, nil
}

func classifyAnthropic(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}
	return classify(err)
}
