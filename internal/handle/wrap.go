package handle

import (
	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Wrapper returns the cursor.WrapFunc that turns decoded locators, arrays and
// structs into handles owned by owner.
func Wrapper(owner *lifetime.Guard, r Reader) cursor.WrapFunc {
	var wrap cursor.WrapFunc
	wrap = func(code sqltypes.Code, v any) any {
		switch vv := v.(type) {
		case sqltypes.Locator:
			switch code {
			case sqltypes.TypeBlob:
				return NewBlob(owner, r, vv)
			case sqltypes.TypeClob, sqltypes.TypeNClob:
				return NewClob(owner, r, code, vv)
			case sqltypes.TypeSQLXML:
				return NewSQLXML(owner, r, vv)
			}
		case sqltypes.ArrayData:
			return NewArray(owner, vv, wrap)
		case sqltypes.StructData:
			return NewStruct(owner, vv)
		}

		return v
	}

	return wrap
}
