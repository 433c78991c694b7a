// Package wire defines the request and response frames exchanged with the
// server through a transport and their protowire encoding.
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/sqlkit/sqlcore/sqltypes"
)

var errMalformed = errors.New("malformed frame")

type encoder struct {
	b []byte
}

func (e *encoder) varint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) int(num protowire.Number, v int64) {
	e.varint(num, protowire.EncodeZigZag(v))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if v {
		e.varint(num, 1)
	}
}

func (e *encoder) string(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	if v == nil {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

// message appends a nested message even when it is empty: its presence is
// meaningful for repeated fields.
func (e *encoder) message(num protowire.Number, f func(e *encoder)) {
	var nested encoder
	f(&nested)
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, nested.b)
}

type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64
	bytes []byte
}

func (f field) int() int64 {
	return protowire.DecodeZigZag(f.value)
}

func (f field) bool() bool {
	return f.value != 0
}

// decode walks the fields of one message.
func decode(b []byte, f func(fld field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		fld := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			fld.value, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			fld.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", errMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := f(fld); err != nil {
			return err
		}
	}

	return nil
}

func appendValue(e *encoder, v sqltypes.Raw) {
	e.int(1, int64(v.Code))
	e.bool(2, v.Null)
	e.bytes(3, v.Data)
}

func decodeValue(b []byte) (v sqltypes.Raw, err error) {
	err = decode(b, func(f field) error {
		switch f.num {
		case 1:
			v.Code = sqltypes.Code(f.int())
		case 2:
			v.Null = f.bool()
		case 3:
			v.Data = append([]byte{}, f.bytes...)
		}

		return nil
	})
	if err == nil && !v.Null && v.Data == nil {
		v.Data = []byte{}
	}

	return v, err
}

func appendValues(e *encoder, num protowire.Number, values []sqltypes.Raw) {
	for _, v := range values {
		e.message(num, func(e *encoder) {
			appendValue(e, v)
		})
	}
}
