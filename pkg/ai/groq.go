package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
	"github.com/johnquangdev/meeting-thoughts/pkg/jobcontext"
)

// GroqClient extracts thoughts through Groq's OpenAI-compatible chat completions API
type GroqClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxTokens       int
	temperature     float64
	maxRetryElapsed time.Duration
	client          *http.Client
	limiter         *rate.Limiter
	logger          *zap.Logger
}

// NewGroqClient creates a Groq client using values from the provided config
func NewGroqClient(cfg *config.ExtractorConfig, logger *zap.Logger) *GroqClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GroqClient{
		apiKey:          cfg.APIKey,
		baseURL:         base,
		model:           cfg.Model,
		maxTokens:       cfg.MaxTokens,
		temperature:     cfg.Temperature,
		maxRetryElapsed: cfg.MaxRetryElapsed,
		client:          &http.Client{Timeout: timeout},
		limiter:         newLimiter(cfg.RequestsPerMinute),
		logger:          logger,
	}
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for a JSON object
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []ChatMessage   `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends one chunk to the model and decodes the returned thoughts
func (g *GroqClient) Extract(ctx context.Context, chunk string, vocabulary []string, version int) ([]entities.Candidate, error) {
	system, user := BuildExtractionPrompt(chunk, vocabulary, version)

	content, err := g.chatCompletion(ctx, system, user)
	if err != nil {
		return nil, &entities.ExtractionError{Reason: "groq request failed", Err: err}
	}

	result := DecodeExtraction(content, version)
	if !result.Success {
		return nil, &entities.ExtractionError{Reason: result.Error}
	}
	if result.Dropped > 0 && g.logger != nil {
		g.logger.Warn("⚠️ Dropped invalid thought candidates",
			zap.Int("dropped", result.Dropped),
			zap.Int("kept", len(result.Candidates)),
		)
	}
	return result.Candidates, nil
}

func (g *GroqClient) chatCompletion(ctx context.Context, system, user string) (string, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    g.temperature,
		MaxTokens:      g.maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	var content string
	call := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return classify(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return classify(fmt.Errorf("groq API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}

		var cr ChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode groq response: %w", err))
		}
		if len(cr.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty response from groq"))
		}
		content = cr.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(call, backoff.WithContext(newBackOff(g.maxRetryElapsed), ctx)); err != nil {
		return "", err
	}
	return content, nil
}

// newLimiter paces requests evenly across a minute
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// newBackOff mirrors the retry policy used for external submissions
func newBackOff(maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = jobcontext.CalculateBackoff(0, 500*time.Millisecond, 0)
	bo.MaxInterval = jobcontext.CalculateBackoff(4, 500*time.Millisecond, 10*time.Second)
	if maxElapsed > 0 {
		bo.MaxElapsedTime = maxElapsed
	}
	return bo
}

// classify marks errors that retrying cannot fix as permanent
func classify(err error) error {
	if jobcontext.IsRetryableError(err) {
		return err
	}
	return backoff.Permanent(err)
}
