package sqltypes

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protowire"
)

var errTrailingBytes = errors.New("trailing bytes")

func consumeVarint(b []byte) (uint64, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if n != len(b) {
		return 0, errTrailingBytes
	}

	return v, nil
}

type boolCodec struct{}

func (boolCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case bool:
		return vv, true
	case string:
		switch strings.ToLower(strings.TrimSpace(vv)) {
		case "true", "t", "1", "yes", "y":
			return true, true
		case "false", "f", "0", "no", "n":
			return false, true
		}

		return nil, false
	}
	if i, ok := toInt64(v); ok && (i == 0 || i == 1) {
		return i == 1, true
	}

	return nil, false
}

func (boolCodec) encode(v any) ([]byte, error) {
	if v.(bool) {
		return []byte{1}, nil
	}

	return []byte{0}, nil
}

func (boolCodec) decode(b []byte) (any, error) {
	if len(b) != 1 || b[0] > 1 {
		return nil, fmt.Errorf("bad boolean encoding %x", b)
	}

	return b[0] == 1, nil
}

type intCodec struct {
	bits int
}

func (c intCodec) fits(i int64) bool {
	switch c.bits {
	case 8:
		return i >= math.MinInt8 && i <= math.MaxInt8
	case 16:
		return i >= math.MinInt16 && i <= math.MaxInt16
	case 32:
		return i >= math.MinInt32 && i <= math.MaxInt32
	default:
		return true
	}
}

func (c intCodec) host(i int64) any {
	switch c.bits {
	case 8:
		return int8(i)
	case 16:
		return int16(i)
	case 32:
		return int32(i)
	default:
		return i
	}
}

func (c intCodec) convert(v any) (any, bool) {
	i, ok := toInt64(v)
	if !ok || !c.fits(i) {
		return nil, false
	}

	return c.host(i), true
}

func (c intCodec) encode(v any) ([]byte, error) {
	i, _ := toInt64(v)

	return protowire.AppendVarint(nil, protowire.EncodeZigZag(i)), nil
}

func (c intCodec) decode(b []byte) (any, error) {
	u, err := consumeVarint(b)
	if err != nil {
		return nil, err
	}
	i := protowire.DecodeZigZag(u)
	if !c.fits(i) {
		return nil, fmt.Errorf("%d overflows %d bits", i, c.bits)
	}

	return c.host(i), nil
}

func toInt64(v any) (int64, bool) {
	switch vv := v.(type) {
	case int:
		return int64(vv), true
	case int8:
		return int64(vv), true
	case int16:
		return int64(vv), true
	case int32:
		return int64(vv), true
	case int64:
		return vv, true
	case uint:
		return int64(vv), uint64(vv) <= math.MaxInt64
	case uint8:
		return int64(vv), true
	case uint16:
		return int64(vv), true
	case uint32:
		return int64(vv), true
	case uint64:
		return int64(vv), vv <= math.MaxInt64
	case float32:
		return floatToInt64(float64(vv))
	case float64:
		return floatToInt64(vv)
	case bool:
		if vv {
			return 1, true
		}

		return 0, true
	case decimal.Decimal:
		if !vv.Equal(vv.Truncate(0)) {
			return 0, false
		}
		bi := vv.BigInt()
		if !bi.IsInt64() {
			return 0, false
		}

		return bi.Int64(), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(vv), 10, 64)

		return i, err == nil
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

type floatCodec struct {
	bits int
}

func (c floatCodec) convert(v any) (any, bool) {
	var f float64
	switch vv := v.(type) {
	case float32:
		f = float64(vv)
	case float64:
		f = vv
	case decimal.Decimal:
		f, _ = vv.Float64()
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(vv), 64); err != nil {
			return nil, false
		}
	case bool:
		return nil, false
	default:
		i, ok := toInt64(v)
		if !ok {
			return nil, false
		}
		f = float64(i)
	}
	if c.bits == 32 {
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, false
		}

		return float32(f), true
	}

	return f, true
}

func (c floatCodec) encode(v any) ([]byte, error) {
	if c.bits == 32 {
		return protowire.AppendFixed32(nil, math.Float32bits(v.(float32))), nil
	}

	return protowire.AppendFixed64(nil, math.Float64bits(v.(float64))), nil
}

func (c floatCodec) decode(b []byte) (any, error) {
	if c.bits == 32 {
		u, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		if n != len(b) {
			return nil, errTrailingBytes
		}

		return math.Float32frombits(u), nil
	}
	u, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	if n != len(b) {
		return nil, errTrailingBytes
	}

	return math.Float64frombits(u), nil
}

type decimalCodec struct{}

func (decimalCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case decimal.Decimal:
		return vv, true
	case *decimal.Decimal:
		if vv == nil {
			return nil, false
		}

		return *vv, true
	case float32:
		if math.IsNaN(float64(vv)) || math.IsInf(float64(vv), 0) {
			return nil, false
		}

		return decimal.NewFromFloat32(vv), true
	case float64:
		if math.IsNaN(vv) || math.IsInf(vv, 0) {
			return nil, false
		}

		return decimal.NewFromFloat(vv), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(vv))
		if err != nil {
			return nil, false
		}

		return d, true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(vv), 0), true
	case bool:
		return nil, false
	}
	if i, ok := toInt64(v); ok {
		return decimal.NewFromInt(i), true
	}

	return nil, false
}

func (decimalCodec) encode(v any) ([]byte, error) {
	return []byte(v.(decimal.Decimal).String()), nil
}

func (decimalCodec) decode(b []byte) (any, error) {
	return decimal.NewFromString(string(b))
}
