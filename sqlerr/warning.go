package sqlerr

import (
	"fmt"

	"github.com/sqlkit/sqlcore/internal/xsync"
)

// Truncation describes a single truncation occurrence. It is a value: once
// attached to a warning or error it never changes.
type Truncation struct {
	// Index is the 1-based column or parameter index.
	Index int
	// Parameter reports whether Index refers to a parameter rather than a column.
	Parameter bool
	// Read is true on read paths and false on write paths.
	Read bool
	// DataSize is the original length of the value.
	DataSize int
	// TransferSize is the length actually transferred.
	TransferSize int
}

func (t Truncation) SQLState() string {
	if t.Read {
		return StateReadTruncation
	}

	return StateWriteTruncation
}

func (t Truncation) target() string {
	if t.Parameter {
		return "parameter"
	}

	return "column"
}

func (t Truncation) String() string {
	dir := "write"
	if t.Read {
		dir = "read"
	}

	return fmt.Sprintf("%s truncation of %s %d: %d -> %d", dir, t.target(), t.Index, t.DataSize, t.TransferSize)
}

// Warning is a non-fatal condition reported alongside a successful operation.
type Warning struct {
	Reason     string
	SQLState   string
	VendorCode int32
	Truncation *Truncation
}

func ReadTruncation(t Truncation) Warning {
	t.Read = true

	return Warning{
		Reason:     t.String(),
		SQLState:   StateReadTruncation,
		Truncation: &t,
	}
}

func (w Warning) String() string {
	if w.VendorCode != 0 {
		return fmt.Sprintf("%s (SQLSTATE %s, code %d)", w.Reason, w.SQLState, w.VendorCode)
	}

	return fmt.Sprintf("%s (SQLSTATE %s)", w.Reason, w.SQLState)
}

// Chain accumulates warnings in order of occurrence until the caller drains
// them. The zero value is ready to use and safe for concurrent use.
type Chain struct {
	mu       xsync.Mutex
	warnings []Warning
}

func (c *Chain) Add(ws ...Warning) {
	if len(ws) == 0 {
		return
	}
	c.mu.WithLock(func() {
		c.warnings = append(c.warnings, ws...)
	})
}

func (c *Chain) Len() int {
	return xsync.WithLock(&c.mu, func() int {
		return len(c.warnings)
	})
}

// Drain returns the collected warnings and empties the chain.
func (c *Chain) Drain() []Warning {
	return xsync.WithLock(&c.mu, func() []Warning {
		ws := c.warnings
		c.warnings = nil

		return ws
	})
}

// Clear drops collected warnings.
func (c *Chain) Clear() {
	_ = c.Drain()
}
