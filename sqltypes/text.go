package sqltypes

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

var errNullEncoding = errors.New("NULL type has no value encoding")

type stringCodec struct{}

var _ sized = stringCodec{}

func (stringCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case []byte:
		if !utf8.Valid(vv) {
			return nil, false
		}

		return string(vv), true
	case bool:
		return strconv.FormatBool(vv), true
	case float32:
		return strconv.FormatFloat(float64(vv), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64), true
	case decimal.Decimal:
		return vv.String(), true
	case civil.Date:
		return vv.String(), true
	case civil.Time:
		return vv.String(), true
	case time.Time:
		return vv.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return vv.String(), true
	}
	if i, ok := toInt64(v); ok {
		return strconv.FormatInt(i, 10), true
	}

	return nil, false
}

func (stringCodec) encode(v any) ([]byte, error) {
	return []byte(v.(string)), nil
}

func (stringCodec) decode(b []byte) (any, error) {
	return string(b), nil
}

func (stringCodec) length(v any) int {
	return utf8.RuneCountInString(v.(string))
}

func (stringCodec) truncate(v any, n int) any {
	s := v.(string)
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}

type bytesCodec struct{}

var _ sized = bytesCodec{}

func (bytesCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case []byte:
		return vv, true
	case string:
		return []byte(vv), true
	case RowID:
		return []byte(vv), true
	case Opaque:
		return []byte(vv), true
	default:
		return nil, false
	}
}

func (bytesCodec) encode(v any) ([]byte, error) {
	return v.([]byte), nil
}

func (bytesCodec) decode(b []byte) (any, error) {
	return append([]byte{}, b...), nil
}

func (bytesCodec) length(v any) int {
	return len(v.([]byte))
}

func (bytesCodec) truncate(v any, n int) any {
	return v.([]byte)[:n]
}

type rowIDCodec struct{}

func (rowIDCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case RowID:
		return vv, true
	case []byte:
		return RowID(vv), true
	default:
		return nil, false
	}
}

func (rowIDCodec) encode(v any) ([]byte, error) {
	return v.(RowID), nil
}

func (rowIDCodec) decode(b []byte) (any, error) {
	return RowID(append([]byte{}, b...)), nil
}

type opaqueCodec struct{}

func (opaqueCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case Opaque:
		return vv, true
	case []byte:
		return Opaque(vv), true
	case string:
		return Opaque(vv), true
	default:
		return nil, false
	}
}

func (opaqueCodec) encode(v any) ([]byte, error) {
	return v.(Opaque), nil
}

func (opaqueCodec) decode(b []byte) (any, error) {
	return Opaque(append([]byte{}, b...)), nil
}

type nullCodec struct{}

func (nullCodec) convert(any) (any, bool) {
	return nil, false
}

func (nullCodec) encode(any) ([]byte, error) {
	return nil, errNullEncoding
}

func (nullCodec) decode([]byte) (any, error) {
	return Null{Code: TypeNull}, nil
}
