package sqltypes

import (
	"math"
	"reflect"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

// Decoder turns catalog-encoded bytes into a caller-defined host value.
type Decoder func(code Code, data []byte) (any, error)

// TypeMap maps SQL type names (as reported in column or attribute metadata)
// to custom decoders. It is passed explicitly to the operations that decode
// values; there is no connection-wide default.
type TypeMap map[string]Decoder

// Decode decodes data of the given code, consulting m by typeName first.
// Custom decoders are never called for NULL values.
func Decode(code Code, typeName string, null bool, data []byte, m TypeMap) (any, error) {
	if null {
		return Null{Code: code}, nil
	}
	if dec, ok := m[typeName]; ok && typeName != "" {
		v, err := dec(code, data)
		if err != nil {
			return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindTypeMismatch,
				"custom decoder for %q failed", typeName,
			).WithCause(err))
		}

		return v, nil
	}
	d, err := Resolve(code)
	if err != nil {
		return nil, err
	}

	return d.Decode(data)
}

// DecodeRaw decodes r with its own code, consulting m by typeName.
func DecodeRaw(r Raw, typeName string, m TypeMap) (any, error) {
	return Decode(r.Code, typeName, r.Null, r.Data, m)
}

// CodeOf infers the SQL type code of a host value.
func CodeOf(v any) (Code, error) {
	switch vv := v.(type) {
	case nil:
		return TypeNull, nil
	case Null:
		return vv.Code, nil
	case interface{ Code() Code }:
		return vv.Code(), nil
	case bool:
		return TypeBoolean, nil
	case int8:
		return TypeTinyInt, nil
	case int16, uint8:
		return TypeSmallInt, nil
	case int32, uint16:
		return TypeInteger, nil
	case int, int64, uint32:
		return TypeBigInt, nil
	case uint, uint64:
		if reflect.ValueOf(vv).Uint() <= math.MaxInt64 {
			return TypeBigInt, nil
		}

		return TypeNumeric, nil
	case float32:
		return TypeReal, nil
	case float64:
		return TypeDouble, nil
	case decimal.Decimal:
		return TypeDecimal, nil
	case string:
		return TypeVarChar, nil
	case []byte:
		return TypeVarBinary, nil
	case RowID:
		return TypeRowID, nil
	case Opaque:
		return TypeOther, nil
	case civil.Date:
		return TypeDate, nil
	case civil.Time:
		return TypeTime, nil
	case civil.DateTime:
		return TypeTimestamp, nil
	case time.Time:
		return TypeTimestamp, nil
	case Locator:
		return TypeBlob, nil
	case ArrayData:
		return TypeArray, nil
	case StructData:
		return TypeStruct, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return TypeArray, nil
	}

	return TypeNull, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindTypeMismatch,
		"no SQL type for %T", v,
	))
}
