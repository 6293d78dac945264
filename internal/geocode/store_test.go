package geocode_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gigpilot/gigpilot/internal/geocode"
)

func TestLRUStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := geocode.NewLRUStore(2)

	_, ok := store.Get(ctx, "a")
	assert.False(t, ok)

	store.Put(ctx, "a", "Andheri")
	v, ok := store.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "Andheri", v)

	store.Put(ctx, "a", "Andheri East")
	v, _ = store.Get(ctx, "a")
	assert.Equal(t, "Andheri East", v)
	assert.Equal(t, 1, store.Len())
}

func TestLRUStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := geocode.NewLRUStore(2)

	store.Put(ctx, "a", "A")
	store.Put(ctx, "b", "B")

	// Touch a so b becomes the eviction candidate.
	_, _ = store.Get(ctx, "a")
	store.Put(ctx, "c", "C")

	_, ok := store.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = store.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestLRUStore_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	store := geocode.NewLRUStore(0)

	for i := 0; i < geocode.DefaultCapacity+10; i++ {
		store.Put(ctx, fmt.Sprintf("k%d", i), "v")
	}
	assert.Equal(t, geocode.DefaultCapacity, store.Len())
}

func TestLRUStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := geocode.NewLRUStore(16)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			store.Put(ctx, key, key)
			if v, ok := store.Get(ctx, key); ok {
				assert.Equal(t, key, v)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 16)
}

// mapStore is a plain map-backed Store for exercising tiering.
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
	gets int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]string)}
}

func (m *mapStore) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	return v, ok
}

func (m *mapStore) Put(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func TestTieredStore_PromotesSharedHits(t *testing.T) {
	ctx := context.Background()
	local := geocode.NewLRUStore(8)
	shared := newMapStore()
	shared.data["19.0760,72.8777"] = "Fort"

	store := geocode.NewTieredStore(local, shared)

	v, ok := store.Get(ctx, "19.0760,72.8777")
	assert.True(t, ok)
	assert.Equal(t, "Fort", v)

	v, ok = local.Get(ctx, "19.0760,72.8777")
	assert.True(t, ok, "shared hit should be promoted")
	assert.Equal(t, "Fort", v)

	_, _ = store.Get(ctx, "19.0760,72.8777")
	assert.Equal(t, 1, shared.gets, "second read should be served locally")
}

func TestTieredStore_PutWritesBothTiers(t *testing.T) {
	ctx := context.Background()
	local := geocode.NewLRUStore(8)
	shared := newMapStore()

	geocode.NewTieredStore(local, shared).Put(ctx, "k", "Colaba")

	v, _ := local.Get(ctx, "k")
	assert.Equal(t, "Colaba", v)
	assert.Equal(t, "Colaba", shared.data["k"])
}

func TestTieredStore_NilSharedReturnsLocal(t *testing.T) {
	local := geocode.NewLRUStore(8)
	assert.Same(t, local, geocode.NewTieredStore(local, nil))
}

func TestRedisStore_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := geocode.NewRedisStore(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	store.Put(ctx, "k", "v")
	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
}
