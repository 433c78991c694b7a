package sqltypes

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sqlkit/sqlcore/sqlerr"
)

func TestCodeValues(t *testing.T) {
	for code, want := range map[Code]int32{
		TypeArray:     2003,
		TypeBigInt:    -5,
		TypeBinary:    -2,
		TypeBit:       -7,
		TypeBlob:      2004,
		TypeBoolean:   16,
		TypeChar:      1,
		TypeClob:      2005,
		TypeDate:      91,
		TypeDecimal:   3,
		TypeDouble:    8,
		TypeFloat:     6,
		TypeInteger:   4,
		TypeNumeric:   2,
		TypeReal:      7,
		TypeSmallInt:  5,
		TypeTime:      92,
		TypeTimestamp: 93,
		TypeTinyInt:   -6,
		TypeVarChar:   12,
		TypeRowID:     -8,
		TypeNChar:     -15,
		TypeNVarChar:  -9,
		TypeNClob:     2011,
		TypeSQLXML:    2009,
	} {
		require.Equal(t, want, int32(code), code.String())
	}
}

func TestResolve(t *testing.T) {
	t.Run("StableAndIdempotent", func(t *testing.T) {
		for _, code := range Codes() {
			d1, err := Resolve(code)
			require.NoError(t, err)
			d2, err := Resolve(code)
			require.NoError(t, err)
			require.Same(t, d1, d2)
			require.Equal(t, code, d1.Code)
			require.NotEmpty(t, d1.Name)
		}
	})
	t.Run("Concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, code := range Codes() {
					_, err := Resolve(code)
					require.NoError(t, err)
				}
			}()
		}
		wg.Wait()
	})
	t.Run("UnknownTypeCode", func(t *testing.T) {
		_, err := Resolve(Code(4242))
		require.ErrorIs(t, err, sqlerr.ErrUnknownTypeCode)
		require.Equal(t, "HY004", sqlerr.StateOf(err))
	})
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2024, time.February, 29, 13, 14, 15, 123456789, time.UTC)
	for _, tt := range []struct {
		code Code
		in   any
		out  any
	}{
		{code: TypeBoolean, in: true, out: true},
		{code: TypeBit, in: 0, out: false},
		{code: TypeTinyInt, in: -128, out: int8(-128)},
		{code: TypeSmallInt, in: "1234", out: int16(1234)},
		{code: TypeInteger, in: int64(math.MaxInt32), out: int32(math.MaxInt32)},
		{code: TypeBigInt, in: int64(math.MinInt64), out: int64(math.MinInt64)},
		{code: TypeReal, in: 1.5, out: float32(1.5)},
		{code: TypeDouble, in: 42, out: float64(42)},
		{code: TypeDecimal, in: "12345678901234567890.0123", out: decimal.RequireFromString("12345678901234567890.0123")},
		{code: TypeNumeric, in: uint64(math.MaxUint64), out: decimal.RequireFromString("18446744073709551615")},
		{code: TypeVarChar, in: "héllo", out: "héllo"},
		{code: TypeVarBinary, in: []byte{0, 1, 2}, out: []byte{0, 1, 2}},
		{code: TypeRowID, in: []byte{9}, out: RowID{9}},
		{code: TypeDate, in: "1969-07-20", out: civil.Date{Year: 1969, Month: time.July, Day: 20}},
		{code: TypeTime, in: civil.Time{Hour: 23, Minute: 59, Second: 58, Nanosecond: 7}, out: civil.Time{Hour: 23, Minute: 59, Second: 58, Nanosecond: 7}}, //nolint:lll
		{code: TypeTimestamp, in: ts, out: ts},
		{code: TypeOther, in: "raw", out: Opaque("raw")},
	} {
		t.Run(tt.code.String(), func(t *testing.T) {
			d := MustResolve(tt.code)
			b, err := d.Encode(tt.in)
			require.NoError(t, err)
			v, err := d.Decode(b)
			require.NoError(t, err)
			if dec, ok := tt.out.(decimal.Decimal); ok {
				require.True(t, dec.Equal(v.(decimal.Decimal)), v)

				return
			}
			require.Equal(t, tt.out, v)
		})
	}
}

func TestTimestampWithTimezone(t *testing.T) {
	d := MustResolve(TypeTimestampWithTimezone)
	in := time.Date(2020, time.May, 1, 10, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	b, err := d.Encode(in)
	require.NoError(t, err)
	v, err := d.Decode(b)
	require.NoError(t, err)
	out := v.(time.Time)
	require.True(t, in.Equal(out))
	_, offset := out.Zone()
	require.Equal(t, 3*3600, offset)
}

func TestConvertMismatch(t *testing.T) {
	for _, tt := range []struct {
		code Code
		in   any
	}{
		{code: TypeTinyInt, in: 128},
		{code: TypeInteger, in: 1.5},
		{code: TypeInteger, in: "abc"},
		{code: TypeBoolean, in: 2},
		{code: TypeDate, in: 12},
		{code: TypeVarChar, in: []byte{0xff, 0xfe}},
		{code: TypeDouble, in: true},
		{code: TypeNull, in: 1},
		{code: TypeStruct, in: "x"},
	} {
		t.Run(tt.code.String(), func(t *testing.T) {
			_, err := MustResolve(tt.code).Convert(tt.in)
			require.ErrorIs(t, err, sqlerr.ErrTypeMismatch)
		})
	}
}

func TestNullMarker(t *testing.T) {
	d := MustResolve(TypeInteger)
	v, err := d.Convert(nil)
	require.NoError(t, err)
	require.Equal(t, Null{Code: TypeInteger}, v)
	require.NotEqual(t, int32(0), v)
	b, err := d.Encode(nil)
	require.NoError(t, err)
	require.Nil(t, b)
	require.True(t, IsNull(Null{}))
	require.False(t, IsNull(0))
}

func TestLenAndTruncate(t *testing.T) {
	vc := MustResolve(TypeVarChar)
	require.True(t, vc.Variable())
	require.Equal(t, 5, vc.Len("héllo"))
	require.Equal(t, "hé", vc.Truncate("héllo", 2))
	require.Equal(t, "hé", vc.Truncate("hé", 5))

	vb := MustResolve(TypeVarBinary)
	require.Equal(t, []byte{1, 2}, vb.Truncate([]byte{1, 2, 3}, 2))

	i := MustResolve(TypeInteger)
	require.False(t, i.Variable())
	require.Equal(t, -1, i.Len(int32(10)))
}

func TestLocator(t *testing.T) {
	d := MustResolve(TypeBlob)
	for _, l := range []Locator{
		{Inline: true, Length: 3, Data: []byte("abc")},
		{ID: 77, Length: 1 << 20},
	} {
		b, err := d.Encode(l)
		require.NoError(t, err)
		v, err := d.Decode(b)
		require.NoError(t, err)
		require.Equal(t, l, v)
	}
}

func TestArray(t *testing.T) {
	d := MustResolve(TypeArray)
	b, err := d.Encode([]any{int32(1), nil, int32(3)})
	require.NoError(t, err)
	v, err := d.Decode(b)
	require.NoError(t, err)
	a := v.(ArrayData)
	require.Equal(t, TypeInteger, a.Elem)
	require.Len(t, a.Elements, 3)
	require.True(t, a.Elements[1].Null)
	third, err := DecodeRaw(a.Elements[2], "", nil)
	require.NoError(t, err)
	require.Equal(t, int32(3), third)

	_, err = d.Convert([]any{int32(1), "x"})
	require.ErrorIs(t, err, sqlerr.ErrTypeMismatch)
}

func TestStruct(t *testing.T) {
	street, err := EncodeRaw(TypeVarChar, "Main st.")
	require.NoError(t, err)
	house, err := EncodeRaw(TypeInteger, 12)
	require.NoError(t, err)
	in := StructData{TypeName: "ADDRESS", Attributes: []Raw{street, house, {Code: TypeDate, Null: true}}}

	d := MustResolve(TypeStruct)
	b, err := d.Encode(in)
	require.NoError(t, err)
	v, err := d.Decode(b)
	require.NoError(t, err)
	require.Equal(t, in, v)
}

func TestTypeMap(t *testing.T) {
	data, err := MustResolve(TypeVarChar).Encode("42")
	require.NoError(t, err)
	m := TypeMap{
		"ANSWER": func(code Code, data []byte) (any, error) {
			return "answer=" + string(data), nil
		},
		"BROKEN": func(Code, []byte) (any, error) {
			return nil, errors.New("boom")
		},
	}

	v, err := Decode(TypeVarChar, "ANSWER", false, data, m)
	require.NoError(t, err)
	require.Equal(t, "answer=42", v)

	v, err = Decode(TypeVarChar, "OTHER_NAME", false, data, m)
	require.NoError(t, err)
	require.Equal(t, "42", v)

	v, err = Decode(TypeVarChar, "ANSWER", true, nil, m)
	require.NoError(t, err)
	require.Equal(t, Null{Code: TypeVarChar}, v)

	_, err = Decode(TypeVarChar, "BROKEN", false, data, m)
	require.ErrorIs(t, err, sqlerr.ErrTypeMismatch)
}

func TestCodeOf(t *testing.T) {
	for _, tt := range []struct {
		v    any
		code Code
	}{
		{v: nil, code: TypeNull},
		{v: true, code: TypeBoolean},
		{v: 1, code: TypeBigInt},
		{v: int32(1), code: TypeInteger},
		{v: float32(1), code: TypeReal},
		{v: "s", code: TypeVarChar},
		{v: []byte("b"), code: TypeVarBinary},
		{v: decimal.NewFromInt(1), code: TypeDecimal},
		{v: civil.Date{}, code: TypeDate},
		{v: time.Time{}, code: TypeTimestamp},
		{v: []string{"a"}, code: TypeArray},
		{v: Null{Code: TypeClob}, code: TypeClob},
		{v: uint64(math.MaxUint64), code: TypeNumeric},
	} {
		code, err := CodeOf(tt.v)
		require.NoError(t, err)
		require.Equal(t, tt.code, code, "%T", tt.v)
	}

	_, err := CodeOf(struct{}{})
	require.ErrorIs(t, err, sqlerr.ErrTypeMismatch)
}
