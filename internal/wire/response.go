package wire

import (
	"github.com/sqlkit/sqlcore/sqltypes"
)

// ServerError is an error or warning reported by the server.
type ServerError struct {
	State   string
	Code    int32
	Message string
}

type ParamMeta struct {
	Code      sqltypes.Code
	TypeName  string
	Nullable  int32
	Mode      int32
	Precision int32
	Scale     int32
	Signed    bool
}

type ColumnMeta struct {
	Name      string
	Code      sqltypes.Code
	TypeName  string
	Nullable  int32
	Precision int32
	Scale     int32
}

// Response answers one Request. Error is set when the server rejected the
// request; the remaining fields are then meaningless.
type Response struct {
	Error    *ServerError
	Warnings []ServerError

	Session string
	Stmt    uint64
	Params  []ParamMeta
	Columns []ColumnMeta

	// UpdateCount is -1 when the execution produced a cursor.
	UpdateCount int64
	Cursor      uint64
	// From is the 1-based position of the first row in Rows.
	From int64
	Rows [][]sqltypes.Raw
	// Done reports that no rows follow the last one in Rows.
	Done bool

	Data []byte
}

func appendServerError(e *encoder, se ServerError) {
	e.string(1, se.State)
	e.int(2, int64(se.Code))
	e.string(3, se.Message)
}

func decodeServerError(b []byte) (se ServerError, err error) {
	err = decode(b, func(f field) error {
		switch f.num {
		case 1:
			se.State = string(f.bytes)
		case 2:
			se.Code = int32(f.int())
		case 3:
			se.Message = string(f.bytes)
		}

		return nil
	})

	return se, err
}

func MarshalResponse(r *Response) []byte {
	var e encoder
	if r.Error != nil {
		e.message(1, func(e *encoder) {
			appendServerError(e, *r.Error)
		})
	}
	for _, w := range r.Warnings {
		e.message(2, func(e *encoder) {
			appendServerError(e, w)
		})
	}
	e.string(3, r.Session)
	e.varint(4, r.Stmt)
	for _, p := range r.Params {
		e.message(5, func(e *encoder) {
			e.int(1, int64(p.Code))
			e.string(2, p.TypeName)
			e.int(3, int64(p.Nullable))
			e.int(4, int64(p.Mode))
			e.int(5, int64(p.Precision))
			e.int(6, int64(p.Scale))
			e.bool(7, p.Signed)
		})
	}
	for _, c := range r.Columns {
		e.message(6, func(e *encoder) {
			e.string(1, c.Name)
			e.int(2, int64(c.Code))
			e.string(3, c.TypeName)
			e.int(4, int64(c.Nullable))
			e.int(5, int64(c.Precision))
			e.int(6, int64(c.Scale))
		})
	}
	e.int(7, r.UpdateCount)
	e.varint(8, r.Cursor)
	e.int(9, r.From)
	for _, row := range r.Rows {
		e.message(10, func(e *encoder) {
			appendValues(e, 1, row)
		})
	}
	e.bool(11, r.Done)
	e.bytes(12, r.Data)

	return e.b
}

func UnmarshalResponse(b []byte) (*Response, error) {
	r := &Response{}
	err := decode(b, func(f field) error {
		switch f.num {
		case 1:
			se, err := decodeServerError(f.bytes)
			if err != nil {
				return err
			}
			r.Error = &se
		case 2:
			se, err := decodeServerError(f.bytes)
			if err != nil {
				return err
			}
			r.Warnings = append(r.Warnings, se)
		case 3:
			r.Session = string(f.bytes)
		case 4:
			r.Stmt = f.value
		case 5:
			var p ParamMeta
			if err := decode(f.bytes, func(f field) error {
				switch f.num {
				case 1:
					p.Code = sqltypes.Code(f.int())
				case 2:
					p.TypeName = string(f.bytes)
				case 3:
					p.Nullable = int32(f.int())
				case 4:
					p.Mode = int32(f.int())
				case 5:
					p.Precision = int32(f.int())
				case 6:
					p.Scale = int32(f.int())
				case 7:
					p.Signed = f.bool()
				}

				return nil
			}); err != nil {
				return err
			}
			r.Params = append(r.Params, p)
		case 6:
			var c ColumnMeta
			if err := decode(f.bytes, func(f field) error {
				switch f.num {
				case 1:
					c.Name = string(f.bytes)
				case 2:
					c.Code = sqltypes.Code(f.int())
				case 3:
					c.TypeName = string(f.bytes)
				case 4:
					c.Nullable = int32(f.int())
				case 5:
					c.Precision = int32(f.int())
				case 6:
					c.Scale = int32(f.int())
				}

				return nil
			}); err != nil {
				return err
			}
			r.Columns = append(r.Columns, c)
		case 7:
			r.UpdateCount = f.int()
		case 8:
			r.Cursor = f.value
		case 9:
			r.From = f.int()
		case 10:
			row := []sqltypes.Raw{}
			if err := decode(f.bytes, func(f field) error {
				if f.num != 1 {
					return nil
				}
				v, err := decodeValue(f.bytes)
				if err != nil {
					return err
				}
				row = append(row, v)

				return nil
			}); err != nil {
				return err
			}
			r.Rows = append(r.Rows, row)
		case 11:
			r.Done = f.bool()
		case 12:
			r.Data = append([]byte{}, f.bytes...)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}
