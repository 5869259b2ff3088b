package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordercraft/shiprate/pkg/rating/memstore"
)

func TestStore_GetSet(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	value, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), value)
}

func TestStore_SetOverwrites(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))
	require.NoError(t, store.Set(ctx, "k1", []byte("v2")))

	value, ok, _ := store.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Delete(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))
	require.NoError(t, store.Delete(ctx, "k1"))
	require.NoError(t, store.Delete(ctx, "k1")) // idempotent

	_, ok, _ := store.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestStore_TTLExpiry(t *testing.T) {
	store := memstore.NewWithTTL(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	_, ok, _ := store.Get(ctx, "k1")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok, _ = store.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len()) // expired entry was collected on read
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				store.Set(ctx, "shared", []byte("v"))
				store.Get(ctx, "shared")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	_, ok, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
}
