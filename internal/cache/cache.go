// Package cache provides an in-process cache-aside layer with per-entry TTLs.
//
// The cache is deliberately modeled as an explicit, injectable component so the
// repository layer can be exercised in tests with the no-op implementation and
// precise call-count assertions.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// Cache is a string-keyed cache with per-entry TTLs.
//
// Set is allowed to drop entries (a cache is best-effort storage); Delete must
// take effect before it returns so mutating operations can invalidate
// synchronously. Wait blocks until buffered writes are applied and exists for
// tests and read-your-write situations.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Clear()
	Wait()
}

// ristrettoCache implements Cache backed by ristretto.
type ristrettoCache[V any] struct {
	cache *ristretto.Cache[string, V]
}

// New creates a ristretto-backed cache sized for maxItems entries.
func New[V any](maxItems int64) (Cache[V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to initialize cache")
	}
	return &ristrettoCache[V]{cache: c}, nil
}

func (r *ristrettoCache[V]) Get(key string) (V, bool) {
	return r.cache.Get(key)
}

func (r *ristrettoCache[V]) Set(key string, value V, ttl time.Duration) {
	r.cache.SetWithTTL(key, value, 1, ttl)
}

func (r *ristrettoCache[V]) Delete(key string) {
	r.cache.Del(key)
}

func (r *ristrettoCache[V]) Clear() {
	r.cache.Clear()
}

func (r *ristrettoCache[V]) Wait() {
	r.cache.Wait()
}

// noOpCache implements Cache without storing anything. Every Get is a miss.
type noOpCache[V any] struct{}

// NewNoOp creates a cache that never stores entries. Used when caching is
// disabled and in tests that assert repository call counts.
func NewNoOp[V any]() Cache[V] {
	return noOpCache[V]{}
}

func (noOpCache[V]) Get(key string) (V, bool) {
	var zero V
	return zero, false
}

func (noOpCache[V]) Set(key string, value V, ttl time.Duration) {}

func (noOpCache[V]) Delete(key string) {}

func (noOpCache[V]) Clear() {}

func (noOpCache[V]) Wait() {}
