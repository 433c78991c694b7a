package cursor

import (
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Column describes one result column.
type Column struct {
	Name     string
	Code     sqltypes.Code
	TypeName string
	Nullable bool
	// Precision is the declared length of variable-length columns.
	Precision int
	Scale     int
}

// columnNoNulls is the JDBC columnNoNulls constant.
const columnNoNulls = 0

func ColumnsFromWire(cs []wire.ColumnMeta) []Column {
	columns := make([]Column, len(cs))
	for i, c := range cs {
		columns[i] = Column{
			Name:      c.Name,
			Code:      c.Code,
			TypeName:  c.TypeName,
			Nullable:  c.Nullable != columnNoNulls,
			Precision: int(c.Precision),
			Scale:     int(c.Scale),
		}
	}

	return columns
}
