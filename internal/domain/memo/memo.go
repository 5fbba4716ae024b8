// Package memo memoizes pure derivations keyed by their inputs.
//
// Keys must capture every input of the computation (including the dataset
// version), so entries never need explicit invalidation: a new dataset simply
// produces new keys and old ones age out of the LRU.
package memo

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/stationlens/pkg/metrics"
)

const defaultMaxSize = 1024

// Cache returns memoized results, computing them on a miss.
type Cache[K comparable, V any] interface {
	// Get returns the cached value for key or stores and returns compute().
	// compute must be a pure function of key.
	Get(key K, compute func() V) V

	// Len returns the number of cached entries.
	Len() int

	// Purge drops every entry.
	Purge()
}

// lruCache implements Cache on a thread-safe bounded LRU. Two goroutines
// missing the same key may both compute; the results are identical.
type lruCache[K comparable, V any] struct {
	name  string
	store *lru.Cache[K, V]
}

// New creates a memo cache. With a non-positive max size it returns a cache
// that always computes.
func New[K comparable, V any](opts ...Option) Cache[K, V] {
	s := settings{name: "default", maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&s)
	}
	if s.maxSize <= 0 {
		return passthrough[K, V]{name: s.name}
	}
	store, err := lru.New[K, V](s.maxSize)
	if err != nil {
		// lru.New only fails for non-positive sizes, handled above.
		return passthrough[K, V]{name: s.name}
	}
	return &lruCache[K, V]{name: s.name, store: store}
}

func (c *lruCache[K, V]) Get(key K, compute func() V) V {
	if v, ok := c.store.Get(key); ok {
		metrics.RecordMemoLookup(c.name, true)
		return v
	}
	metrics.RecordMemoLookup(c.name, false)
	v := compute()
	c.store.Add(key, v)
	metrics.UpdateMemoEntries(c.name, c.store.Len())
	return v
}

func (c *lruCache[K, V]) Len() int {
	return c.store.Len()
}

func (c *lruCache[K, V]) Purge() {
	c.store.Purge()
	metrics.UpdateMemoEntries(c.name, 0)
}

type passthrough[K comparable, V any] struct {
	name string
}

func (p passthrough[K, V]) Get(_ K, compute func() V) V {
	metrics.RecordMemoLookup(p.name, false)
	return compute()
}

func (passthrough[K, V]) Len() int { return 0 }

func (passthrough[K, V]) Purge() {}
