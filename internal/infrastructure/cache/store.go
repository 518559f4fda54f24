// Package cache provides key-value stores and the embedding cache built on them.
package cache

import (
	"context"
	"time"
)

// Store is a string key-value store with per-key expiry
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
