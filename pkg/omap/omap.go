// Package omap implements an insertion-ordered map.
//
// The importer needs ordered mappings for globals, typedefs, and tagged
// types: iteration order must match C declaration order so that emitted
// declarations and symbol table indices are deterministic across runs.
package omap

// Map is a map that remembers the order keys were first inserted in.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// Set inserts or updates the value for k. Re-setting an existing key keeps
// its original position in iteration order.
func (m *Map[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// Delete removes k, if present.
func (m *Map[K, V]) Delete(k K) {
	if _, ok := m.values[k]; !ok {
		return
	}
	delete(m.values, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key-insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Filter returns a new ordered map containing only the entries for which
// keep returns true, preserving relative order.
func (m *Map[K, V]) Filter(keep func(K, V) bool) *Map[K, V] {
	out := New[K, V]()
	for _, k := range m.keys {
		v := m.values[k]
		if keep(k, v) {
			out.Set(k, v)
		}
	}
	return out
}

// Merge copies every entry of other into m, in other's order. Existing keys
// in m are overwritten but keep their original position.
func (m *Map[K, V]) Merge(other *Map[K, V]) {
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}
