package xsync

import (
	"fmt"
	"maps"
)

// Map is a typed map safe for concurrent use. The zero value is empty and
// ready to use.
type Map[K comparable, V any] struct {
	mu Mutex
	m  map[K]V
}

func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	m.mu.WithLock(func() {
		value, ok = m.m[key]
	})

	return value, ok
}

// Must panics when key is absent.
func (m *Map[K, V]) Must(key K) V {
	value, ok := m.Get(key)
	if !ok {
		panic(fmt.Sprintf("unexpected key = %v", key))
	}

	return value
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)

	return ok
}

func (m *Map[K, V]) Set(key K, value V) {
	m.mu.WithLock(func() {
		if m.m == nil {
			m.m = make(map[K]V)
		}
		m.m[key] = value
	})
}

// Extract removes key and returns its value.
func (m *Map[K, V]) Extract(key K) (value V, ok bool) {
	m.mu.WithLock(func() {
		value, ok = m.m[key]
		delete(m.m, key)
	})

	return value, ok
}

func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.Extract(key)

	return ok
}

func (m *Map[K, V]) Len() int {
	return WithLock(&m.mu, func() int {
		return len(m.m)
	})
}

// Range calls f over a snapshot of the map, so f may modify the map.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	snapshot := WithLock(&m.mu, func() map[K]V {
		return maps.Clone(m.m)
	})
	for k, v := range snapshot {
		if !f(k, v) {
			return
		}
	}
}

func (m *Map[K, V]) Clear() {
	m.mu.WithLock(func() {
		clear(m.m)
	})
}
