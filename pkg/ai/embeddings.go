package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

// EmbeddingClient calls any OpenAI-compatible /embeddings endpoint
type EmbeddingClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingClient creates an embedding client from the provided config
func NewEmbeddingClient(cfg *config.EmbeddingConfig) *EmbeddingClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EmbeddingClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Model returns the embedding model name
func (e *EmbeddingClient) Model() string {
	return e.model
}

// Embed returns one vector per input text, in input order
func (e *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(embeddingRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, &entities.EmbeddingError{Reason: "encode request", Err: err}
	}

	var result embeddingResponse
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return classify(fmt.Errorf("embedding request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return classify(fmt.Errorf("embedding API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}

		result = embeddingResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode embedding response: %w", err))
		}
		return nil
	}

	bo := backoff.WithMaxRetries(newBackOff(0), 3)
	if err := backoff.Retry(call, backoff.WithContext(bo, ctx)); err != nil {
		return nil, &entities.EmbeddingError{Reason: "request failed", Err: err}
	}

	if len(result.Data) != len(texts) {
		return nil, &entities.EmbeddingError{
			Reason: fmt.Sprintf("expected %d vectors, got %d", len(texts), len(result.Data)),
		}
	}

	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})
	vectors := make([][]float64, len(result.Data))
	for i, d := range result.Data {
		if len(d.Embedding) == 0 {
			return nil, &entities.EmbeddingError{Reason: fmt.Sprintf("empty vector at index %d", i)}
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
