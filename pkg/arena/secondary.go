package arena

import "iter"

type entry[V any] struct {
	value V
	gen   uint32 // generation of the key the value belongs to; 0 when empty
}

// SecondaryMap associates values with keys issued by an [Arena] it does not
// own. Inserting under a key whose slot was reused replaces the stale entry;
// looking up a stale key misses.
//
// The zero value is an empty map ready to use.
type SecondaryMap[V any] struct {
	entries []entry[V]
	count   int
}

// NewSecondaryMap creates an empty map with room for capacity keys.
func NewSecondaryMap[V any](capacity int) *SecondaryMap[V] {
	return &SecondaryMap[V]{entries: make([]entry[V], 0, capacity)}
}

// Insert stores v under k and returns the previous value for the same key,
// if any. Inserting under the null key is a no-op.
func (m *SecondaryMap[V]) Insert(k Key, v V) (V, bool) {
	var zero V
	if k.IsNull() {
		return zero, false
	}
	if int(k.index) >= len(m.entries) {
		m.entries = append(m.entries, make([]entry[V], int(k.index)+1-len(m.entries))...)
	}

	e := &m.entries[k.index]
	prev, had := e.value, e.gen == k.gen
	switch {
	case e.gen == 0:
		m.count++
	case !had:
		prev = zero
	}
	e.value = v
	e.gen = k.gen
	return prev, had
}

// Get returns the value stored under k.
func (m *SecondaryMap[V]) Get(k Key) (V, bool) {
	if e := m.lookup(k); e != nil {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Ptr returns a pointer to the value stored under k, or nil.
func (m *SecondaryMap[V]) Ptr(k Key) *V {
	if e := m.lookup(k); e != nil {
		return &e.value
	}
	return nil
}

// Contains reports whether a value is stored under k.
func (m *SecondaryMap[V]) Contains(k Key) bool { return m.lookup(k) != nil }

// Remove deletes the value stored under k and returns it.
func (m *SecondaryMap[V]) Remove(k Key) (V, bool) {
	var zero V
	e := m.lookup(k)
	if e == nil {
		return zero, false
	}
	v := e.value
	e.value = zero
	e.gen = 0
	m.count--
	return v, true
}

// Len returns the number of stored values.
func (m *SecondaryMap[V]) Len() int { return m.count }

// Clear removes every value, keeping the allocated capacity.
func (m *SecondaryMap[V]) Clear() {
	clear(m.entries)
	m.count = 0
}

// Clone returns a shallow copy of m.
func (m *SecondaryMap[V]) Clone() *SecondaryMap[V] {
	c := &SecondaryMap[V]{entries: make([]entry[V], len(m.entries)), count: m.count}
	copy(c.entries, m.entries)
	return c
}

// All iterates over stored values in key index order.
func (m *SecondaryMap[V]) All() iter.Seq2[Key, V] {
	return func(yield func(Key, V) bool) {
		for i := range m.entries {
			e := &m.entries[i]
			if e.gen == 0 {
				continue
			}
			if !yield(Key{index: uint32(i), gen: e.gen}, e.value) {
				return
			}
		}
	}
}

func (m *SecondaryMap[V]) lookup(k Key) *entry[V] {
	if k.IsNull() || int(k.index) >= len(m.entries) {
		return nil
	}
	e := &m.entries[k.index]
	if e.gen == 0 || e.gen != k.gen {
		return nil
	}
	return e
}
