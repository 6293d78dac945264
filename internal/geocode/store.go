package geocode

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCapacity is the default number of area names held in memory.
const DefaultCapacity = 128

// Store is a key/value cache of resolved area names.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string)
}

// LRUStore is a capacity-bounded, mutex-guarded, least-recently-used Store.
type LRUStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type lruEntry struct {
	key   string
	value string
}

// NewLRUStore creates an LRU store. Non-positive capacity uses DefaultCapacity.
func NewLRUStore(capacity int) *LRUStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRUStore{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached value and marks it most recently used.
func (s *LRUStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return "", false
	}
	s.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

// Put inserts or refreshes a value, evicting the least recently used entry when full.
func (s *LRUStore) Put(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*lruEntry).value = value
		s.order.MoveToFront(el)
		return
	}

	s.entries[key] = s.order.PushFront(&lruEntry{key: key, value: value})

	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*lruEntry).key)
	}
}

// Len returns the number of cached entries.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// TieredStore reads through a fast local store to a shared one and promotes
// shared hits into the local tier. Writes go to both.
type TieredStore struct {
	local  Store
	shared Store
}

// NewTieredStore creates a two-tier store. A nil shared store yields local.
func NewTieredStore(local, shared Store) Store {
	if shared == nil {
		return local
	}
	return &TieredStore{local: local, shared: shared}
}

// Get implements Store.
func (t *TieredStore) Get(ctx context.Context, key string) (string, bool) {
	if v, ok := t.local.Get(ctx, key); ok {
		return v, true
	}
	v, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Put(ctx, key, v)
	}
	return v, ok
}

// Put implements Store.
func (t *TieredStore) Put(ctx context.Context, key, value string) {
	t.local.Put(ctx, key, value)
	t.shared.Put(ctx, key, value)
}
