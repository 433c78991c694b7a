package sqlitebackend

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"github.com/sqlkit/sqlcore/internal/params"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqltypes"
)

var declaredTypes = map[string]sqltypes.Code{
	"INTEGER":   sqltypes.TypeBigInt,
	"INT":       sqltypes.TypeBigInt,
	"BIGINT":    sqltypes.TypeBigInt,
	"SMALLINT":  sqltypes.TypeSmallInt,
	"TINYINT":   sqltypes.TypeTinyInt,
	"REAL":      sqltypes.TypeDouble,
	"DOUBLE":    sqltypes.TypeDouble,
	"FLOAT":     sqltypes.TypeDouble,
	"NUMERIC":   sqltypes.TypeNumeric,
	"DECIMAL":   sqltypes.TypeDecimal,
	"BOOLEAN":   sqltypes.TypeBoolean,
	"BOOL":      sqltypes.TypeBoolean,
	"TEXT":      sqltypes.TypeVarChar,
	"VARCHAR":   sqltypes.TypeVarChar,
	"CHAR":      sqltypes.TypeChar,
	"NCHAR":     sqltypes.TypeNChar,
	"NVARCHAR":  sqltypes.TypeNVarChar,
	"CLOB":      sqltypes.TypeClob,
	"NCLOB":     sqltypes.TypeNClob,
	"XML":       sqltypes.TypeSQLXML,
	"BLOB":      sqltypes.TypeBlob,
	"BINARY":    sqltypes.TypeBinary,
	"VARBINARY": sqltypes.TypeVarBinary,
	"DATE":      sqltypes.TypeDate,
	"TIME":      sqltypes.TypeTime,
	"DATETIME":  sqltypes.TypeTimestamp,
	"TIMESTAMP": sqltypes.TypeTimestamp,
}

// column is a result column as declared by the schema.
type column struct {
	meta     wire.ColumnMeta
	declared bool
}

// columnOf maps a declared column type such as "DECIMAL(10,2)" to a catalog
// code with its precision and scale.
func columnOf(ct *sql.ColumnType) column {
	c := column{
		meta: wire.ColumnMeta{
			Name:     ct.Name(),
			Nullable: int32(params.NullableUnknown),
		},
	}
	decl := strings.ToUpper(strings.TrimSpace(ct.DatabaseTypeName()))
	name, args, _ := strings.Cut(decl, "(")
	name = strings.TrimSpace(name)
	code, ok := declaredTypes[name]
	if !ok {
		return c
	}
	c.declared = true
	c.meta.Code = code
	c.meta.TypeName = name
	args = strings.TrimSuffix(strings.TrimSpace(args), ")")
	if args == "" {
		return c
	}
	precision, scale, _ := strings.Cut(args, ",")
	if p, err := strconv.Atoi(strings.TrimSpace(precision)); err == nil {
		c.meta.Precision = int32(p)
	}
	if s, err := strconv.Atoi(strings.TrimSpace(scale)); err == nil {
		c.meta.Scale = int32(s)
	}

	return c
}

// codeOfValue infers a code for an expression column from a stored value.
func codeOfValue(v any) sqltypes.Code {
	switch v.(type) {
	case int64:
		return sqltypes.TypeBigInt
	case float64:
		return sqltypes.TypeDouble
	case bool:
		return sqltypes.TypeBoolean
	case []byte:
		return sqltypes.TypeVarBinary
	case time.Time:
		return sqltypes.TypeTimestamp
	default:
		return sqltypes.TypeVarChar
	}
}

func isLob(code sqltypes.Code) bool {
	switch code {
	case sqltypes.TypeBlob, sqltypes.TypeClob, sqltypes.TypeNClob, sqltypes.TypeSQLXML:
		return true
	default:
		return false
	}
}

func isCharacterLob(code sqltypes.Code) bool {
	return isLob(code) && code != sqltypes.TypeBlob
}

func isCharacter(code sqltypes.Code) bool {
	d, err := sqltypes.Resolve(code)

	return err == nil && d.Category == sqltypes.CategoryCharacter
}

// argOf turns a decoded parameter into a value the sqlite3 driver accepts.
func (b *Backend) argOf(r sqltypes.Raw) (any, error) {
	v, err := sqltypes.DecodeRaw(r, "", nil)
	if err != nil {
		return nil, errorf("22018", "parameter: %v", err)
	}
	switch vv := v.(type) {
	case sqltypes.Null:
		return nil, nil
	case decimal.Decimal:
		return vv.String(), nil
	case civil.Date:
		return vv.String(), nil
	case civil.Time:
		return vv.String(), nil
	case civil.DateTime:
		return vv.String(), nil
	case sqltypes.RowID:
		return []byte(vv), nil
	case sqltypes.Opaque:
		return []byte(vv), nil
	case sqltypes.Locator:
		data := vv.Data
		if !vv.Inline {
			l, ok := b.lobs[vv.ID]
			if !ok {
				return nil, errUnknownLob(vv.ID)
			}
			data = l.data
		}
		if isCharacterLob(r.Code) {
			return string(data), nil
		}

		return data, nil
	case sqltypes.ArrayData, sqltypes.StructData:
		return nil, errorf("0A000", "%s parameters are not supported", r.Code)
	default:
		return v, nil
	}
}
