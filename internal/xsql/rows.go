package xsql

import (
	"context"
	"database/sql/driver"
	"io"

	core "github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsql/badconn"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

var (
	_ driver.Rows                           = &rows{}
	_ driver.RowsColumnTypeDatabaseTypeName = &rows{}
	_ driver.RowsColumnTypeNullable         = &rows{}
	_ driver.RowsColumnTypePrecisionScale   = &rows{}
)

type rows struct {
	conn    *Conn
	cursor  *cursor.Cursor
	columns []cursor.Column
	// stmt is closed together with the rows when they own it.
	stmt *core.Stmt
}

func newRows(c *Conn, cur *cursor.Cursor, s *core.Stmt) *rows {
	return &rows{
		conn:    c,
		cursor:  cur,
		columns: cur.Columns(),
		stmt:    s,
	}
}

func (r *rows) Columns() []string {
	names := make([]string, len(r.columns))
	for i := range r.columns {
		names[i] = r.columns[i].Name
	}

	return names
}

func (r *rows) ColumnTypeDatabaseTypeName(index int) string {
	if name := r.columns[index].TypeName; name != "" {
		return name
	}

	return r.columns[index].Code.String()
}

func (r *rows) ColumnTypeNullable(index int) (nullable, ok bool) {
	return r.columns[index].Nullable, true
}

func (r *rows) ColumnTypePrecisionScale(index int) (precision, scale int64, ok bool) {
	switch col := r.columns[index]; col.Code {
	case sqltypes.TypeNumeric, sqltypes.TypeDecimal:
		return int64(col.Precision), int64(col.Scale), true
	default:
		return 0, 0, false
	}
}

func (r *rows) Next(dst []driver.Value) error {
	ctx := context.Background()

	ok, err := r.cursor.Next(ctx)
	if err != nil {
		if sqlerr.Is(err, sqlerr.KindCursorExhausted) {
			return io.EOF
		}

		return badconn.Map(xerrors.WithStackTrace(err))
	}
	if !ok {
		return io.EOF
	}
	for i := range dst {
		v, err := r.cursor.ColumnMapped(i+1, r.conn.connector.typeMap)
		if err != nil {
			return xerrors.WithStackTrace(err)
		}
		if dst[i], err = driverValue(ctx, v, r.conn.connector.typeMap); err != nil {
			return badconn.Map(xerrors.WithStackTrace(err))
		}
	}

	return nil
}

func (r *rows) Close() error {
	err := r.cursor.Close()
	if r.stmt != nil {
		err = xerrors.Join(err, r.stmt.Close())
	}
	if err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}
