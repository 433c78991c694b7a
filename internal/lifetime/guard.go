// Package lifetime implements the free-exactly-once discipline shared by every
// disposable object of the core: statements, cursors, LOB and XML handles,
// arrays and structs.
package lifetime

import (
	"sync/atomic"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqlerr"
)

type State uint32

const (
	Live = State(iota)
	// Freed is entered by an explicit Free of the resource itself.
	Freed
	// Closed is entered when an owner of the resource was freed or closed.
	Closed
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Freed:
		return "freed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Guard tracks the state of one disposable resource and of the resources it
// owns. Freeing or closing a guard closes all of its live children.
//
// The zero value is a live guard without a name.
type Guard struct {
	name  string
	state atomic.Uint32

	mu        xsync.Mutex
	children  map[*Guard]struct{}
	parent    *Guard
	onRelease []func()
}

func New(name string) *Guard {
	return &Guard{name: name}
}

// Attach creates a live child guard. When g is no longer live the child is
// born closed.
func (g *Guard) Attach(name string) *Guard {
	child := New(name)
	child.parent = g
	g.mu.WithLock(func() {
		if g.State() != Live {
			child.state.Store(uint32(Closed))

			return
		}
		if g.children == nil {
			g.children = make(map[*Guard]struct{})
		}
		g.children[child] = struct{}{}
	})

	return child
}

// OnRelease registers f to run once when the guard leaves the Live state.
func (g *Guard) OnRelease(f func()) {
	g.mu.WithLock(func() {
		g.onRelease = append(g.onRelease, f)
	})
}

func (g *Guard) State() State {
	return State(g.state.Load())
}

// Free transitions Live to Freed. It reports whether this call performed the
// transition; repeated calls are no-ops and never fail.
func (g *Guard) Free() bool {
	return g.release(Freed)
}

// Close transitions Live to Closed, as done by an owner.
func (g *Guard) Close() bool {
	return g.release(Closed)
}

func (g *Guard) release(to State) bool {
	if !g.state.CompareAndSwap(uint32(Live), uint32(to)) {
		return false
	}

	var (
		children  []*Guard
		onRelease []func()
	)
	g.mu.WithLock(func() {
		for child := range g.children {
			children = append(children, child)
		}
		g.children = nil
		onRelease, g.onRelease = g.onRelease, nil
	})
	for _, child := range children {
		child.release(Closed)
	}
	if g.parent != nil {
		g.parent.detach(g)
	}
	for _, f := range onRelease {
		f()
	}

	return true
}

func (g *Guard) detach(child *Guard) {
	g.mu.WithLock(func() {
		delete(g.children, child)
	})
}

// Err returns nil for a live guard, ResourceFreed after Free and
// ResourceClosed after the guard was closed by its owner.
func (g *Guard) Err() error {
	switch g.State() {
	case Live:
		return nil
	case Freed:
		return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindResourceFreed, "%s was freed", g.describe()),
			xerrors.WithSkipDepth(1),
		)
	default:
		return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindResourceClosed, "%s was closed", g.describe()),
			xerrors.WithSkipDepth(1),
		)
	}
}

func (g *Guard) describe() string {
	if g.name == "" {
		return "resource"
	}

	return g.name
}

// Children returns the number of live children.
func (g *Guard) Children() int {
	return xsync.WithLock(&g.mu, func() int {
		return len(g.children)
	})
}
