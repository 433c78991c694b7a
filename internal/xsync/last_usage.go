package xsync

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// LastUsage tracks when a resource was last busy. While at least one usage
// is started the resource counts as used right now.
type LastUsage interface {
	Get() time.Time
	Start() (stop func())
}

type lastUsage struct {
	active atomic.Int64
	last   atomic.Int64
	clock  clockwork.Clock
}

type lastUsageOption func(u *lastUsage)

func WithClock(clock clockwork.Clock) lastUsageOption {
	return func(u *lastUsage) {
		if clock != nil {
			u.clock = clock
		}
	}
}

func NewLastUsage(opts ...lastUsageOption) *lastUsage {
	u := &lastUsage{
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	u.last.Store(u.clock.Now().UnixNano())

	return u
}

func (u *lastUsage) Get() time.Time {
	if u.active.Load() > 0 {
		return u.clock.Now()
	}

	return time.Unix(0, u.last.Load())
}

// Start marks the beginning of a usage. The returned stop may be called more
// than once; only the first call counts.
func (u *lastUsage) Start() (stop func()) {
	u.active.Add(1)

	return sync.OnceFunc(func() {
		if u.active.Add(-1) == 0 {
			u.last.Store(u.clock.Now().UnixNano())
		}
	})
}
