package config

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/trace"
)

const DefaultFetchSize = 100

// BusyMode selects what an operation does when the connection already has an
// exchange in flight.
type BusyMode uint8

const (
	// Block waits until the in-flight exchange completes or the context is
	// done.
	Block = BusyMode(iota)
	// Strict fails immediately with ConnectionBusy.
	Strict
)

func (m BusyMode) String() string {
	switch m {
	case Block:
		return "block"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Config holds the settings of a connection and of the statements and
// cursors it creates. It is immutable after New.
type Config struct {
	busyMode     BusyMode
	fetchSize    int
	maxFieldSize int
	maxRows      int64
	scrollable   bool
	autoCommit   bool
	isolation    tx.Isolation
	typeMap      sqltypes.TypeMap

	idleThreshold time.Duration

	trace *trace.SQL
	clock clockwork.Clock
}

func New(opts ...Option) *Config {
	c := defaults()
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func defaults() *Config {
	return &Config{
		busyMode:   Block,
		fetchSize:  DefaultFetchSize,
		autoCommit: true,
		isolation:  tx.ReadCommitted,
		trace:      &trace.SQL{},
		clock:      clockwork.NewRealClock(),
	}
}

func (c *Config) BusyMode() BusyMode {
	return c.busyMode
}

// FetchSize is the number of rows requested per fetch round trip.
func (c *Config) FetchSize() int {
	return c.fetchSize
}

// MaxFieldSize limits variable-length column values read through cursors.
// Zero means unlimited.
func (c *Config) MaxFieldSize() int {
	return c.maxFieldSize
}

// MaxRows limits the rows of a result. Zero means unlimited.
func (c *Config) MaxRows() int64 {
	return c.maxRows
}

// Scrollable reports whether cursors are opened scrollable by default.
func (c *Config) Scrollable() bool {
	return c.scrollable
}

func (c *Config) AutoCommit() bool {
	return c.autoCommit
}

func (c *Config) Isolation() tx.Isolation {
	return c.isolation
}

// TypeMap is the default custom type map of the database/sql adapter.
func (c *Config) TypeMap() sqltypes.TypeMap {
	return c.typeMap
}

func (c *Config) Trace() *trace.SQL {
	return c.trace
}

// IdleThreshold is the idle time after which the database/sql adapter closes
// a pooled connection. Zero keeps idle connections open.
func (c *Config) IdleThreshold() time.Duration {
	return c.idleThreshold
}

func (c *Config) Clock() clockwork.Clock {
	return c.clock
}
