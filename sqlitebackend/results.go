package sqlitebackend

import (
	"context"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/sqlkit/sqlcore/internal/params"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// resultSet is a cursor materialized at execution.
type resultSet struct {
	columns []wire.ColumnMeta
	rows    [][]sqltypes.Raw
}

// page returns up to count rows starting at the 1-based position from.
func (rs *resultSet) page(from int64, count int) *wire.Response {
	if from < 1 {
		from = 1
	}
	start := from - 1
	if start > int64(len(rs.rows)) {
		start = int64(len(rs.rows))
	}
	end := start + int64(count)
	if count <= 0 || end > int64(len(rs.rows)) {
		end = int64(len(rs.rows))
	}

	return &wire.Response{
		From: from,
		Rows: rs.rows[start:end],
		Done: end == int64(len(rs.rows)),
	}
}

// lob is large object content held for ReadLob. Character content is
// addressed in characters, binary content in bytes.
type lob struct {
	data      []byte
	character bool
}

func (l *lob) length() int64 {
	if l.character {
		return int64(utf8.RuneCount(l.data))
	}

	return int64(len(l.data))
}

func (l *lob) read(offset int64, n int) []byte {
	data := l.data
	if l.character {
		for i := int64(0); i < offset && len(data) > 0; i++ {
			_, size := utf8.DecodeRune(data)
			data = data[size:]
		}
		end := 0
		for i := 0; i < n && end < len(data); i++ {
			_, size := utf8.DecodeRune(data[end:])
			end += size
		}

		return append([]byte{}, data[:end]...)
	}
	if offset >= int64(len(data)) {
		return []byte{}
	}
	end := offset + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}

	return append([]byte{}, data[offset:end]...)
}

func (b *Backend) prepare(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	stmt, err := b.conn.PreparexContext(ctx, req.SQL)
	if err != nil {
		return nil, err
	}
	id := b.nextID()
	s := &statement{
		query:  req.SQL,
		stmt:   stmt,
		params: countParameters(req.SQL),
	}
	b.stmts[id] = s

	resp := &wire.Response{Stmt: id, Params: make([]wire.ParamMeta, s.params)}
	for i := range resp.Params {
		resp.Params[i] = wire.ParamMeta{
			Code:     sqltypes.TypeNull,
			Nullable: int32(params.NullableUnknown),
			Mode:     int32(params.ModeIn),
		}
	}

	return resp, nil
}

func (b *Backend) execute(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	query := req.SQL
	var s *statement
	if req.Stmt != 0 {
		var ok bool
		if s, ok = b.stmts[req.Stmt]; !ok {
			return nil, errUnknownStatement(req.Stmt)
		}
		query = s.query
	}
	args := make([]any, len(req.Params))
	for i, p := range req.Params {
		arg, err := b.argOf(p)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	if !producesRows(query) {
		var (
			res interface{ RowsAffected() (int64, error) }
			err error
		)
		if s != nil {
			res, err = s.stmt.ExecContext(ctx, args...)
		} else {
			res, err = b.conn.ExecContext(ctx, query, args...)
		}
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}

		return &wire.Response{UpdateCount: n}, nil
	}

	var (
		rows *sqlx.Rows
		err  error
	)
	if s != nil {
		rows, err = s.stmt.QueryxContext(ctx, args...)
	} else {
		rows, err = b.conn.QueryxContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}
	rs, err := b.materialize(rows, req.MaxRows)
	if err != nil {
		return nil, err
	}
	if len(rs.columns) == 0 {
		return &wire.Response{}, nil
	}
	id := b.nextID()
	b.cursors[id] = rs

	resp := rs.page(1, int(req.Count))
	resp.UpdateCount = -1
	resp.Cursor = id
	resp.Columns = rs.columns
	if resp.Done && !req.Scrollable {
		delete(b.cursors, id)
	}

	return resp, nil
}

func (b *Backend) materialize(rows *sqlx.Rows, maxRows int64) (_ *resultSet, finalErr error) {
	defer func() {
		if err := rows.Close(); err != nil && finalErr == nil {
			finalErr = err
		}
	}()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	columns := make([]column, len(types))
	for i, ct := range types {
		columns[i] = columnOf(ct)
	}
	var values [][]any
	for rows.Next() {
		if maxRows > 0 && int64(len(values)) >= maxRows {
			break
		}
		row, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rs := &resultSet{
		columns: make([]wire.ColumnMeta, len(columns)),
		rows:    make([][]sqltypes.Raw, len(values)),
	}
	for i, c := range columns {
		if !c.declared {
			c.meta.Code = sqltypes.TypeVarChar
			for _, row := range values {
				if row[i] != nil {
					c.meta.Code = codeOfValue(row[i])

					break
				}
			}
			c.meta.TypeName = c.meta.Code.String()
		}
		rs.columns[i] = c.meta
	}
	for r, row := range values {
		rs.rows[r] = make([]sqltypes.Raw, len(row))
		for i, v := range row {
			raw, err := b.encode(rs.columns[i], v)
			if err != nil {
				return nil, err
			}
			rs.rows[r][i] = raw
		}
	}

	return rs, nil
}

// encode turns a stored value into a wire value of the column type. Large
// objects above the inline limit are kept for ReadLob and sent as locators.
func (b *Backend) encode(c wire.ColumnMeta, v any) (sqltypes.Raw, error) {
	if v == nil {
		return sqltypes.Raw{Code: c.Code, Null: true}, nil
	}
	if data, ok := v.([]byte); ok && isCharacter(c.Code) {
		v = string(data)
	}
	if isLob(c.Code) {
		var data []byte
		switch vv := v.(type) {
		case string:
			data = []byte(vv)
		case []byte:
			data = vv
		default:
			return sqltypes.Raw{}, errorf("22018", "column %s: %T is not large object content", c.Name, v)
		}
		if len(data) > b.inlineLimit {
			l := &lob{data: data, character: isCharacterLob(c.Code)}
			id := b.nextID()
			b.lobs[id] = l
			v = sqltypes.Locator{ID: id, Length: l.length()}
		}
	}
	raw, err := sqltypes.EncodeRaw(c.Code, v)
	if err != nil {
		return sqltypes.Raw{}, errorf("22018", "column %s: %v", c.Name, err)
	}

	return raw, nil
}
