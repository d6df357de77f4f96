package nodegraph

import (
	"iter"

	"github.com/matzehuels/nodegraph/pkg/arena"
)

// OutputCache maps output ports to the value last computed for them. A
// walker owns one at a time; hand it to another walker with
// [Walker.ReleaseCache] and [WalkerFromPath].
//
// Values implementing Clone() V are cloned on every read.
type OutputCache[V any] struct {
	m arena.SecondaryMap[V]
}

// NewOutputCache creates an empty cache.
func NewOutputCache[V any]() *OutputCache[V] {
	return &OutputCache[V]{}
}

// Get returns the value cached for id.
func (c *OutputCache[V]) Get(id OutputPortID) (V, bool) {
	v, ok := c.m.Get(id.key)
	if !ok {
		return v, false
	}
	return cloneValue(v), true
}

// Set stores v for id and reports whether a value was already cached.
func (c *OutputCache[V]) Set(id OutputPortID, v V) (replaced bool) {
	_, replaced = c.m.Insert(id.key, v)
	return replaced
}

// Has reports whether a value is cached for id.
func (c *OutputCache[V]) Has(id OutputPortID) bool { return c.m.Contains(id.key) }

// Delete drops the value cached for id.
func (c *OutputCache[V]) Delete(id OutputPortID) { c.m.Remove(id.key) }

// Len returns the number of cached values.
func (c *OutputCache[V]) Len() int { return c.m.Len() }

// Clear drops every cached value.
func (c *OutputCache[V]) Clear() { c.m.Clear() }

// Clone returns an independent copy of the cache. Values are copied shallowly.
func (c *OutputCache[V]) Clone() *OutputCache[V] {
	return &OutputCache[V]{m: *c.m.Clone()}
}

// All iterates over cached values in port slot order.
func (c *OutputCache[V]) All() iter.Seq2[OutputPortID, V] {
	return func(yield func(OutputPortID, V) bool) {
		for k, v := range c.m.All() {
			if !yield(OutputPortID{k}, cloneValue(v)) {
				return
			}
		}
	}
}
