// Package xsync holds the small synchronization helpers of the connection
// core.
package xsync

import (
	"sync"
)

// Mutex is a sync.Mutex with a scoped helper. The zero value is unlocked.
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Lock() {
	m.mu.Lock()
}

func (m *Mutex) Unlock() {
	m.mu.Unlock()
}

func (m *Mutex) TryLock() bool {
	return m.mu.TryLock()
}

// WithLock runs f while holding m.
func (m *Mutex) WithLock(f func()) {
	WithLock(m, func() struct{} {
		f()

		return struct{}{}
	})
}

// WithLock runs f while holding l and returns its result. l is released
// also when f panics.
func WithLock[T any](l sync.Locker, f func() T) T {
	l.Lock()
	defer l.Unlock()

	return f()
}
