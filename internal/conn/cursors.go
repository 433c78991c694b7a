package conn

import (
	"context"

	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/handle"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// fetcher moves server cursors and reads locators over the connection.
type fetcher struct {
	c    *Conn
	stmt *Stmt
	// width is the column count rows must have.
	width int
}

var (
	_ cursor.Fetcher = fetcher{}
	_ handle.Reader  = fetcher{}
)

func (f fetcher) Fetch(ctx context.Context, id uint64, from int64, count int) ([][]sqltypes.Raw, bool, error) {
	resp, err := f.c.roundTrip(ctx, &wire.Request{
		Op:     wire.OpFetch,
		Cursor: id,
		From:   from,
		Count:  int32(count),
	}, f.stmt)
	if err != nil {
		return nil, false, xerrors.WithStackTrace(err)
	}
	if err := f.c.checkRows(wire.OpFetch, f.width, resp.Rows); err != nil {
		return nil, false, err
	}

	return resp.Rows, resp.Done, nil
}

// CloseCursor releases the server cursor. A closed connection released it
// already.
func (f fetcher) CloseCursor(ctx context.Context, id uint64) error {
	if f.c.closed.Load() {
		return nil
	}
	if _, err := f.c.roundTrip(ctx, &wire.Request{Op: wire.OpCloseCursor, Cursor: id}, f.stmt); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}

func (f fetcher) ReadLob(ctx context.Context, id uint64, offset int64, length int) ([]byte, error) {
	resp, err := f.c.roundTrip(ctx, &wire.Request{
		Op:     wire.OpReadLob,
		Lob:    id,
		Offset: offset,
		Length: int32(length),
	}, nil)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	if resp.Data == nil {
		return []byte{}, nil
	}

	return resp.Data, nil
}

// openCursor wraps the result of an execution. Handles decoded from its rows
// belong to the connection and outlive the cursor.
func (c *Conn) openCursor(owner *lifetime.Guard, s *Stmt, l limits, resp *wire.Response, columns []cursor.Column,
) (*cursor.Cursor, error) {
	if len(resp.Columns) > 0 {
		columns = cursor.ColumnsFromWire(resp.Columns)
	}
	f := fetcher{c: c, stmt: s, width: len(columns)}
	if err := c.checkRows(wire.OpExecute, f.width, resp.Rows); err != nil {
		return nil, err
	}

	done := resp.Done || resp.Cursor == 0

	return cursor.New(owner, f, resp.Cursor, columns, resp.Rows, done,
		cursor.WithScrollable(l.scrollable),
		cursor.WithFetchSize(l.fetchSize),
		cursor.WithMaxFieldSize(l.maxFieldSize),
		cursor.WithWrap(handle.Wrapper(c.guard, f)),
		cursor.WithTrace(c.config.Trace()),
	), nil
}

// checkRows loses the connection when a row does not match the column count:
// the response cannot be trusted.
func (c *Conn) checkRows(op wire.Op, width int, rows [][]sqltypes.Raw) error {
	for i, row := range rows {
		if len(row) != width {
			err := sqlerr.Newf(sqlerr.KindConnectionLost,
				"%s: malformed response: row %d has %d values for %d columns", op, i+1, len(row), width,
			)
			c.lose(err)

			return xerrors.WithStackTrace(err)
		}
	}

	return nil
}
