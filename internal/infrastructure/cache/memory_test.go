package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	require.NoError(t, ms.Set(ctx, "k", "v", time.Minute))
	v, ok, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, ms.Delete(ctx, "k"))
	_, ok, _ = ms.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	require.NoError(t, ms.Set(ctx, "short", "v", time.Millisecond))
	require.NoError(t, ms.Set(ctx, "forever", "v", 0))
	time.Sleep(5 * time.Millisecond)

	_, ok, _ := ms.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = ms.Get(ctx, "forever")
	assert.True(t, ok)

	ms.purge(time.Now())
	assert.Equal(t, 1, ms.Len())
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	ms := NewMemoryStore()
	assert.NoError(t, ms.Close())
	assert.NoError(t, ms.Close())
}
