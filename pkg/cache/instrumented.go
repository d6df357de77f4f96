package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// global observability.CacheHooks. The key type passed to the hooks is the
// segment in front of the key's hash ("output", "artifact").
type Instrumented struct {
	Cache
}

// Instrument wraps c with cache hooks.
func Instrument(c Cache) Cache {
	if _, ok := c.(*Instrumented); ok {
		return c
	}
	return &Instrumented{Cache: c}
}

// Get retrieves a value and reports a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

// Set stores a value and reports its size.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Clear clears the wrapped cache.
func (c *Instrumented) Clear(ctx context.Context) error {
	return Clear(ctx, c.Cache)
}

// keyType returns the segment before the last colon, ignoring any scope
// prefix such as "ns:team:".
func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "unknown"
	}
	head := key[:i]
	if j := strings.LastIndexByte(head, ':'); j >= 0 {
		return head[j+1:]
	}
	return head
}
