package skein

import (
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/cespare/xxhash/v2"
)

// Cache retains evaluated polynomials across calls, keyed by family-prefixed canonical diagram keys.
//
// Implementations must be safe for concurrent use.
type Cache interface {

	// Load returns the polynomial stored for key, if any.
	Load(key []byte) (poly.Poly, bool)

	// Store retains P for key.  Storing an already present key has no effect.
	Store(key []byte, P poly.Poly)
}

// MemoCache is an in-memory Cache split into independently locked shards.
type MemoCache struct {
	shards []memoShard
}

type memoShard struct {
	mu    sync.RWMutex
	polys map[string]poly.Poly
}

// NewMemoCache returns a MemoCache with the given number of shards (DefaultCacheShards if <= 0).
func NewMemoCache(numShards int) *MemoCache {
	if numShards <= 0 {
		numShards = goknots.DefaultCacheShards
	}
	cache := &MemoCache{
		shards: make([]memoShard, numShards),
	}
	for i := range cache.shards {
		cache.shards[i].polys = make(map[string]poly.Poly)
	}
	return cache
}

func (cache *MemoCache) shard(key []byte) *memoShard {
	return &cache.shards[xxhash.Sum64(key)%uint64(len(cache.shards))]
}

func (cache *MemoCache) Load(key []byte) (poly.Poly, bool) {
	s := cache.shard(key)
	s.mu.RLock()
	P, ok := s.polys[string(key)]
	s.mu.RUnlock()
	return P, ok
}

func (cache *MemoCache) Store(key []byte, P poly.Poly) {
	s := cache.shard(key)
	s.mu.Lock()
	if _, exists := s.polys[string(key)]; !exists {
		s.polys[string(key)] = P
	}
	s.mu.Unlock()
}

// Len returns the number of cached polynomials.
func (cache *MemoCache) Len() int {
	n := 0
	for i := range cache.shards {
		s := &cache.shards[i]
		s.mu.RLock()
		n += len(s.polys)
		s.mu.RUnlock()
	}
	return n
}

// TieredCache fronts a slower Cache, such as a catalog, with a MemoCache.  Hits in the back tier are
// promoted to the front; stores go to both.
type TieredCache struct {
	front *MemoCache
	back  Cache
}

func NewTieredCache(back Cache) *TieredCache {
	return &TieredCache{
		front: NewMemoCache(0),
		back:  back,
	}
}

func (cache *TieredCache) Load(key []byte) (poly.Poly, bool) {
	if P, ok := cache.front.Load(key); ok {
		return P, true
	}
	P, ok := cache.back.Load(key)
	if ok {
		cache.front.Store(key, P)
	}
	return P, ok
}

func (cache *TieredCache) Store(key []byte, P poly.Poly) {
	cache.front.Store(key, P)
	cache.back.Store(key, P)
}
