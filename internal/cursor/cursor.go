// Package cursor implements result cursors: ordered rows fetched from the
// server in batches and read one row at a time.
package cursor

import (
	"context"

	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/stack"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/trace"
)

// Fetcher moves rows of a server cursor. Positions are 1-based. done reports
// that no rows exist after the last returned one.
type Fetcher interface {
	Fetch(ctx context.Context, cursor uint64, from int64, count int) (rows [][]sqltypes.Raw, done bool, err error)
	CloseCursor(ctx context.Context, cursor uint64) error
}

const defaultFetchSize = 100

// unknownTotal marks that the last row position is not known yet.
const unknownTotal = -1

// Cursor is a forward-only or scrollable view over a result.
//
// A forward-only cursor keeps one batch and fails with CursorExhausted once
// Next has reported the end. A scrollable cursor refetches by absolute
// position, so Seek may move it anywhere.
type Cursor struct {
	guard   *lifetime.Guard
	fetcher Fetcher
	id      uint64
	columns []Column

	scrollable   bool
	fetchSize    int
	maxFieldSize int
	wrap         WrapFunc
	trace        *trace.SQL

	warnings sqlerr.Chain

	mu        xsync.Mutex
	batch     [][]sqltypes.Raw
	batchFrom int64
	total     int64
	pos       int64
	row       []sqltypes.Raw
	exhausted bool
}

// New wraps the server cursor id. first holds the rows returned with the
// execution, starting at position 1.
func New(
	owner *lifetime.Guard, f Fetcher, id uint64, columns []Column,
	first [][]sqltypes.Raw, done bool, opts ...Option,
) *Cursor {
	c := &Cursor{
		guard:     owner.Attach("cursor"),
		fetcher:   f,
		id:        id,
		columns:   columns,
		fetchSize: defaultFetchSize,
		wrap:      func(_ sqltypes.Code, v any) any { return v },
		trace:     &trace.SQL{},
		batch:     first,
		batchFrom: 1,
		total:     unknownTotal,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if done || f == nil {
		c.total = int64(len(first))
	}

	return c
}

// Materialized returns a cursor over rows that are already in memory.
func Materialized(owner *lifetime.Guard, columns []Column, rows [][]sqltypes.Raw, opts ...Option) *Cursor {
	return New(owner, nil, 0, columns, rows, true, opts...)
}

func (c *Cursor) Columns() []Column {
	return append([]Column(nil), c.columns...)
}

func (c *Cursor) Scrollable() bool {
	return c.scrollable
}

// Position returns the 1-based current row, zero before the first row.
func (c *Cursor) Position() int64 {
	return xsync.WithLock(&c.mu, func() int64 {
		if c.row == nil {
			return 0
		}

		return c.pos
	})
}

// Warnings drains the warnings recorded while reading columns.
func (c *Cursor) Warnings() []sqlerr.Warning {
	return c.warnings.Drain()
}

func (c *Cursor) State() lifetime.State {
	return c.guard.State()
}

// Next advances to the next row and reports whether it exists.
func (c *Cursor) Next(ctx context.Context) (bool, error) {
	if err := c.guard.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exhausted {
		if !c.scrollable {
			return false, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindCursorExhausted,
				"cursor has no more rows",
			))
		}

		return false, nil
	}
	next := c.pos + 1
	row, ok, err := c.rowAt(ctx, next)
	if err != nil {
		return false, xerrors.WithStackTrace(err)
	}
	if ok && len(row) != len(c.columns) {
		return false, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindServer,
			"malformed row %d: %d values for %d columns", next, len(row), len(c.columns),
		))
	}
	c.pos = next
	if !ok {
		c.row = nil
		c.exhausted = true

		return false, nil
	}
	c.row = row

	return true, nil
}

func (c *Cursor) rowAt(ctx context.Context, pos int64) ([]sqltypes.Raw, bool, error) {
	if c.total != unknownTotal && pos > c.total {
		return nil, false, nil
	}
	if pos >= c.batchFrom && pos < c.batchFrom+int64(len(c.batch)) {
		return c.batch[pos-c.batchFrom], true, nil
	}
	if c.fetcher == nil {
		return nil, false, nil
	}
	if err := c.fetch(ctx, pos); err != nil {
		return nil, false, err
	}
	if len(c.batch) == 0 {
		return nil, false, nil
	}

	return c.batch[0], true, nil
}

func (c *Cursor) fetch(ctx context.Context, from int64) (finalErr error) {
	onDone := trace.SQLOnCursorFetch(c.trace, &ctx, stack.FunctionID(""), from, c.fetchSize)
	var (
		rows [][]sqltypes.Raw
		done bool
	)
	defer func() {
		onDone(len(rows), done, finalErr)
	}()

	rows, done, err := c.fetcher.Fetch(ctx, c.id, from, c.fetchSize)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.batch, c.batchFrom = rows, from
	switch {
	case done:
		c.total = from + int64(len(rows)) - 1
	case len(rows) == 0:
		c.total = from - 1
	}

	return nil
}

// Seek positions the cursor before row pos, so the next call of Next moves
// to it.
func (c *Cursor) Seek(pos int64) error {
	if err := c.guard.Err(); err != nil {
		return err
	}
	if !c.scrollable {
		return xerrors.WithStackTrace(sqlerr.New(sqlerr.KindUnsupported,
			"seek on a forward-only cursor",
		))
	}
	if pos < 1 {
		return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidArgument,
			"seek to row %d", pos,
		))
	}
	c.mu.WithLock(func() {
		c.pos = pos - 1
		c.row = nil
		c.exhausted = false
	})

	return nil
}

// Column decodes the 1-based column i of the current row.
func (c *Cursor) Column(i int) (any, error) {
	return c.ColumnMapped(i, nil)
}

// ColumnMapped decodes column i, consulting m by the column type name.
func (c *Cursor) ColumnMapped(i int, m sqltypes.TypeMap) (any, error) {
	if err := c.guard.Err(); err != nil {
		return nil, err
	}
	if i < 1 || i > len(c.columns) {
		return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindColumnIndexOutOfRange,
			"column index %d out of range [1,%d]", i, len(c.columns),
		))
	}
	row := xsync.WithLock(&c.mu, func() []sqltypes.Raw {
		return c.row
	})
	if row == nil {
		return nil, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindNoCurrentRow,
			"cursor is not positioned on a row",
		))
	}
	if i > len(row) {
		return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindServer,
			"malformed row: %d values for %d columns", len(row), len(c.columns),
		))
	}
	raw, col := row[i-1], c.columns[i-1]
	if raw.Null {
		code := col.Code
		if code == sqltypes.TypeNull {
			code = raw.Code
		}

		return sqltypes.Null{Code: code}, nil
	}
	if _, custom := m[col.TypeName]; custom && col.TypeName != "" {
		return sqltypes.DecodeRaw(raw, col.TypeName, m)
	}
	d, err := sqltypes.Resolve(raw.Code)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	v, err := d.Decode(raw.Data)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	if n := d.Len(v); c.maxFieldSize > 0 && n > c.maxFieldSize {
		v = d.Truncate(v, c.maxFieldSize)
		c.warnings.Add(sqlerr.ReadTruncation(sqlerr.Truncation{
			Index:        i,
			DataSize:     n,
			TransferSize: c.maxFieldSize,
		}))
	}

	return c.wrap(raw.Code, v), nil
}

// Close frees the cursor and its server-side state. Repeated calls are
// no-ops.
func (c *Cursor) Close() (finalErr error) {
	if !c.guard.Free() {
		return nil
	}
	onDone := trace.SQLOnCursorClose(c.trace, stack.FunctionID(""))
	defer func() {
		onDone(finalErr)
	}()
	c.mu.WithLock(func() {
		c.batch, c.row = nil, nil
	})
	if c.fetcher == nil || c.id == 0 {
		return nil
	}
	if err := c.fetcher.CloseCursor(context.Background(), c.id); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}
