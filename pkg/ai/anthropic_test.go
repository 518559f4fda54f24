package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

func TestAnthropicExtract_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content": []map[string]string{
				{"type": "text", "text": "```json\n{\"thoughts\":[{\"content\":\"Ship Friday\",\"confidence\":0.7,\"speaker\":\"An\"}]}\n```"},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer ts.Close()

	ext := NewAnthropicExtractor(&config.ExtractorConfig{
		APIKey:          "test-key",
		BaseURL:         ts.URL,
		Model:           "claude-test",
		MaxRetryElapsed: 5 * time.Second,
	}, zap.NewNop())

	got, err := ext.Extract(context.Background(), "chunk", []string{"decision"}, entities.ExtractionVersionV2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ship Friday", got[0].Content)
	assert.Equal(t, "An", got[0].Speaker)
}

func TestAnthropicExtract_BadRequestIsExtractionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer ts.Close()

	ext := NewAnthropicExtractor(&config.ExtractorConfig{APIKey: "k", BaseURL: ts.URL, Model: "m"}, nil)
	_, err := ext.Extract(context.Background(), "chunk", nil, entities.ExtractionVersionV1)
	var extractionErr *entities.ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}
