package config

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/log"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/trace"
)

type Option func(c *Config)

func WithBusyMode(mode BusyMode) Option {
	return func(c *Config) {
		c.busyMode = mode
	}
}

// WithFetchSize defines the rows requested per fetch round trip.
// If n is less than or equal to zero then DefaultFetchSize is used.
func WithFetchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.fetchSize = n
		} else {
			c.fetchSize = DefaultFetchSize
		}
	}
}

// WithMaxFieldSize defines the read truncation threshold of variable-length
// column values. Zero or less means unlimited.
func WithMaxFieldSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxFieldSize = n
		} else {
			c.maxFieldSize = 0
		}
	}
}

func WithMaxRows(n int64) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxRows = n
		} else {
			c.maxRows = 0
		}
	}
}

func WithScrollable(scrollable bool) Option {
	return func(c *Config) {
		c.scrollable = scrollable
	}
}

func WithAutoCommit(autoCommit bool) Option {
	return func(c *Config) {
		c.autoCommit = autoCommit
	}
}

// WithIsolation sets the isolation level applied to transactions of a new
// connection. Invalid levels are rejected by Open.
func WithIsolation(level tx.Isolation) Option {
	return func(c *Config) {
		c.isolation = level
	}
}

func WithTypeMap(m sqltypes.TypeMap) Option {
	return func(c *Config) {
		c.typeMap = m
	}
}

// WithTrace appends trace to early defined traces
func WithTrace(t *trace.SQL, opts ...trace.SQLComposeOption) Option {
	return func(c *Config) {
		c.trace = c.trace.Compose(t, opts...)
	}
}

// WithLogger appends logging of events selected by details to early defined
// traces
func WithLogger(l log.Logger, details trace.Detailer, opts ...log.Option) Option {
	return func(c *Config) {
		t := log.SQL(l, details, opts...)
		c.trace = c.trace.Compose(&t)
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIdleThreshold makes the database/sql adapter close connections unused
// for longer than d.
func WithIdleThreshold(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.idleThreshold = d
		}
	}
}
