package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Embedder maps texts to vectors, one per text in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// CachingEmbedder serves repeated texts from a Store and forwards only
// misses to the wrapped embedder. Cache failures never fail a call.
type CachingEmbedder struct {
	inner  Embedder
	store  Store
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingEmbedder wraps inner. model is part of every key so vectors from
// different models never mix.
func NewCachingEmbedder(inner Embedder, store Store, model string, ttl time.Duration, logger *zap.Logger) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, store: store, model: model, ttl: ttl, logger: logger}
}

// EmbeddingKey returns the cache key of text under model
func EmbeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Embed returns one vector per text
func (c *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if v, ok := c.lookup(ctx, text); ok {
			vectors[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(fresh), len(missTexts))
	}
	for j, i := range missIdx {
		vectors[i] = fresh[j]
		c.save(ctx, missTexts[j], fresh[j])
	}
	return vectors, nil
}

func (c *CachingEmbedder) lookup(ctx context.Context, text string) ([]float64, bool) {
	raw, ok, err := c.store.Get(ctx, EmbeddingKey(c.model, text))
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("⚠️ Embedding cache read failed", zap.Error(err))
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var v []float64
	if err := json.Unmarshal([]byte(raw), &v); err != nil || len(v) == 0 {
		return nil, false
	}
	return v, true
}

func (c *CachingEmbedder) save(ctx context.Context, text string, v []float64) {
	if len(v) == 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, EmbeddingKey(c.model, text), string(raw), c.ttl); err != nil && c.logger != nil {
		c.logger.Warn("⚠️ Embedding cache write failed", zap.Error(err))
	}
}
