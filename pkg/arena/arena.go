// Package arena provides generational slot storage for graph entities.
//
// # Overview
//
// An [Arena] stores values in a dense slice of slots and hands out [Key]
// handles instead of pointers. Each key carries the slot index and the slot's
// generation at insertion time. Removing a value bumps the slot generation
// and pushes the slot onto a free list, so a later insertion may reuse the
// slot but old keys no longer match it: a stale key resolves to "not found",
// never to unrelated data.
//
// A [SecondaryMap] associates extra data with keys issued by some arena
// without owning the keys itself. It is used for per-entity side tables such
// as node state cells and the walker's output cache.
//
// # Basic Usage
//
//	var a arena.Arena[string]
//	k := a.Insert("hello")
//	v, ok := a.Get(k)      // "hello", true
//	a.Remove(k)
//	_, ok = a.Get(k)       // "", false
//
// # Concurrency
//
// Arena and SecondaryMap are not safe for concurrent use. Callers must
// synchronize access if multiple goroutines read or modify the same value.
package arena

import (
	"fmt"
	"iter"
)

// Key is a generation-tagged handle into an [Arena].
//
// The zero Key is the null key: it is never returned by Insert and never
// resolves. Keys are comparable and may be used as map keys.
type Key struct {
	index uint32
	gen   uint32
}

// IsNull reports whether k is the zero key.
func (k Key) IsNull() bool { return k.gen == 0 }

// Index returns the slot index of k.
func (k Key) Index() uint32 { return k.index }

// Generation returns the slot generation recorded in k.
func (k Key) Generation() uint32 { return k.gen }

// String formats the key as "index.vgeneration", or "null".
func (k Key) String() string {
	if k.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%dv%d", k.index, k.gen)
}

// slot generations are odd while occupied and even while vacant, so a key
// (which always records an odd generation) can never match a vacant slot.
type slot[V any] struct {
	value V
	gen   uint32
}

func (s *slot[V]) occupied() bool { return s.gen%2 == 1 }

// Arena is a generational slot arena. The zero value is an empty arena ready
// to use.
type Arena[V any] struct {
	slots []slot[V]
	free  []uint32
	count int
}

// New creates an empty arena with room for capacity values.
func New[V any](capacity int) *Arena[V] {
	return &Arena[V]{slots: make([]slot[V], 0, capacity)}
}

// Insert stores v and returns its key.
func (a *Arena[V]) Insert(v V) Key {
	return a.InsertWithKey(func(Key) V { return v })
}

// InsertWithKey reserves a slot, calls fn with the key the value will have,
// and stores the value fn returns. It lets a value embed its own key.
func (a *Arena[V]) InsertWithKey(fn func(Key) V) Key {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[V]{})
	}

	s := &a.slots[idx]
	s.gen++
	key := Key{index: idx, gen: s.gen}
	s.value = fn(key)
	a.count++
	return key
}

// Get returns the value stored under k.
func (a *Arena[V]) Get(k Key) (V, bool) {
	if s := a.lookup(k); s != nil {
		return s.value, true
	}
	var zero V
	return zero, false
}

// Ptr returns a pointer to the value stored under k, or nil if k does not
// resolve. The pointer is invalidated by the next Insert.
func (a *Arena[V]) Ptr(k Key) *V {
	if s := a.lookup(k); s != nil {
		return &s.value
	}
	return nil
}

// Contains reports whether k resolves to a live value.
func (a *Arena[V]) Contains(k Key) bool { return a.lookup(k) != nil }

// Remove deletes the value stored under k and returns it.
func (a *Arena[V]) Remove(k Key) (V, bool) {
	s := a.lookup(k)
	if s == nil {
		var zero V
		return zero, false
	}
	v := s.value
	var zero V
	s.value = zero
	s.gen++
	a.free = append(a.free, k.index)
	a.count--
	return v, true
}

// Len returns the number of live values.
func (a *Arena[V]) Len() int { return a.count }

// All iterates over live values in slot order.
func (a *Arena[V]) All() iter.Seq2[Key, V] {
	return func(yield func(Key, V) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.occupied() {
				continue
			}
			if !yield(Key{index: uint32(i), gen: s.gen}, s.value) {
				return
			}
		}
	}
}

// Keys returns the keys of all live values in slot order.
func (a *Arena[V]) Keys() []Key {
	keys := make([]Key, 0, a.count)
	for k := range a.All() {
		keys = append(keys, k)
	}
	return keys
}

func (a *Arena[V]) lookup(k Key) *slot[V] {
	if k.IsNull() || int(k.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[k.index]
	if s.gen != k.gen {
		return nil
	}
	return s
}
