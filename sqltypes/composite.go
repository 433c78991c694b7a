package sqltypes

import (
	"errors"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	lobInline  = 0
	lobLocator = 1
)

type lobCodec struct {
	character bool
}

func (c lobCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case Locator:
		return vv, true
	case []byte:
		return Locator{Inline: true, Length: int64(len(vv)), Data: vv}, true
	case string:
		return Locator{Inline: true, Length: int64(len(vv)), Data: []byte(vv)}, true
	default:
		return nil, false
	}
}

func (c lobCodec) encode(v any) ([]byte, error) {
	l := v.(Locator)
	if l.Inline {
		b := protowire.AppendVarint(nil, lobInline)

		return protowire.AppendBytes(b, l.Data), nil
	}
	b := protowire.AppendVarint(nil, lobLocator)
	b = protowire.AppendVarint(b, l.ID)

	return protowire.AppendVarint(b, uint64(l.Length)), nil
}

func (c lobCodec) decode(b []byte) (any, error) {
	kind, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	switch kind {
	case lobInline:
		data, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		if n != len(b) {
			return nil, errTrailingBytes
		}
		data = append([]byte{}, data...)

		return Locator{Inline: true, Length: int64(len(data)), Data: data}, nil
	case lobLocator:
		id, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		length, err := consumeVarint(b[n:])
		if err != nil {
			return nil, err
		}

		return Locator{ID: id, Length: int64(length)}, nil
	default:
		return nil, fmt.Errorf("unknown lob encoding %d", kind)
	}
}

func appendRaw(b []byte, r Raw) []byte {
	if r.Null {
		return protowire.AppendVarint(b, 0)
	}
	b = protowire.AppendVarint(b, 1)

	return protowire.AppendBytes(b, r.Data)
}

func consumeRaw(b []byte, code Code) (Raw, int, error) {
	flag, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return Raw{}, 0, protowire.ParseError(n)
	}
	if flag == 0 {
		return Raw{Code: code, Null: true}, n, nil
	}
	data, m := protowire.ConsumeBytes(b[n:])
	if m < 0 {
		return Raw{}, 0, protowire.ParseError(m)
	}

	return Raw{Code: code, Data: append([]byte{}, data...)}, n + m, nil
}

// EncodeRaw converts and encodes v as a Raw value of the given code.
func EncodeRaw(code Code, v any) (Raw, error) {
	d, err := Resolve(code)
	if err != nil {
		return Raw{}, err
	}
	data, err := d.Encode(v)
	if err != nil {
		return Raw{}, err
	}

	return Raw{Code: code, Null: IsNull(v), Data: data}, nil
}

type arrayCodec struct{}

func (arrayCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case ArrayData:
		return vv, true
	case interface{ ArrayData() (ArrayData, error) }:
		a, err := vv.ArrayData()

		return a, err == nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	a := ArrayData{Elem: TypeNull, Elements: make([]Raw, rv.Len())}
	for i := 0; i < rv.Len(); i++ {
		if e := rv.Index(i).Interface(); !IsNull(e) {
			code, err := CodeOf(e)
			if err != nil {
				return nil, false
			}
			a.Elem = code

			break
		}
	}
	for i := 0; i < rv.Len(); i++ {
		r, err := EncodeRaw(a.Elem, rv.Index(i).Interface())
		if err != nil {
			return nil, false
		}
		a.Elements[i] = r
	}

	return a, true
}

func (arrayCodec) encode(v any) ([]byte, error) {
	a := v.(ArrayData)
	b := protowire.AppendVarint(nil, protowire.EncodeZigZag(int64(a.Elem)))
	b = protowire.AppendVarint(b, uint64(len(a.Elements)))
	for _, e := range a.Elements {
		b = appendRaw(b, e)
	}

	return b, nil
}

func (arrayCodec) decode(b []byte) (any, error) {
	elem, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	count, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	if count > uint64(len(b)) {
		return nil, fmt.Errorf("array of %d elements in %d bytes", count, len(b))
	}
	a := ArrayData{Elem: Code(protowire.DecodeZigZag(elem)), Elements: make([]Raw, count)}
	for i := range a.Elements {
		r, n, err := consumeRaw(b, a.Elem)
		if err != nil {
			return nil, err
		}
		a.Elements[i] = r
		b = b[n:]
	}
	if len(b) != 0 {
		return nil, errTrailingBytes
	}

	return a, nil
}

var errStructAttribute = errors.New("malformed struct attribute")

type structCodec struct{}

func (structCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case StructData:
		return vv, true
	case interface{ StructData() (StructData, error) }:
		s, err := vv.StructData()

		return s, err == nil
	default:
		return nil, false
	}
}

func (structCodec) encode(v any) ([]byte, error) {
	s := v.(StructData)
	b := protowire.AppendString(nil, s.TypeName)
	b = protowire.AppendVarint(b, uint64(len(s.Attributes)))
	for _, attr := range s.Attributes {
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(attr.Code)))
		b = appendRaw(b, attr)
	}

	return b, nil
}

func (structCodec) decode(b []byte) (any, error) {
	name, n := protowire.ConsumeString(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	count, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	if count > uint64(len(b)) {
		return nil, errStructAttribute
	}
	s := StructData{TypeName: name, Attributes: make([]Raw, count)}
	for i := range s.Attributes {
		code, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, errStructAttribute
		}
		r, m, err := consumeRaw(b[n:], Code(protowire.DecodeZigZag(code)))
		if err != nil {
			return nil, err
		}
		s.Attributes[i] = r
		b = b[n+m:]
	}
	if len(b) != 0 {
		return nil, errTrailingBytes
	}

	return s, nil
}
