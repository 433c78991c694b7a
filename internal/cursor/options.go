package cursor

import (
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/trace"
)

// WrapFunc replaces a decoded value of the given code, typically turning
// locators and composite values into handles.
type WrapFunc func(code sqltypes.Code, v any) any

type Option func(c *Cursor)

// WithScrollable enables absolute positioning with Seek.
func WithScrollable(scrollable bool) Option {
	return func(c *Cursor) {
		c.scrollable = scrollable
	}
}

// WithFetchSize sets the number of rows requested per round trip.
func WithFetchSize(n int) Option {
	return func(c *Cursor) {
		if n > 0 {
			c.fetchSize = n
		}
	}
}

// WithMaxFieldSize limits the length of variable-length column values.
// Longer values are truncated and a read truncation warning is recorded.
// Zero means unlimited.
func WithMaxFieldSize(n int) Option {
	return func(c *Cursor) {
		if n >= 0 {
			c.maxFieldSize = n
		}
	}
}

func WithWrap(wrap WrapFunc) Option {
	return func(c *Cursor) {
		if wrap != nil {
			c.wrap = wrap
		}
	}
}

func WithTrace(t *trace.SQL) Option {
	return func(c *Cursor) {
		if t != nil {
			c.trace = t
		}
	}
}
