package handle

import (
	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Array is an ARRAY value. Its elements are materialized with the row.
type Array struct {
	guard *lifetime.Guard
	data  sqltypes.ArrayData
	wrap  cursor.WrapFunc
}

func NewArray(owner *lifetime.Guard, data sqltypes.ArrayData, wrap cursor.WrapFunc) *Array {
	return &Array{
		guard: owner.Attach("ARRAY"),
		data:  data,
		wrap:  wrap,
	}
}

func (a *Array) Code() sqltypes.Code {
	return sqltypes.TypeArray
}

// ArrayData allows the handle to be bound back as a parameter value.
func (a *Array) ArrayData() (sqltypes.ArrayData, error) {
	if err := a.guard.Err(); err != nil {
		return sqltypes.ArrayData{}, err
	}

	return a.data, nil
}

func (a *Array) BaseType() (sqltypes.Code, error) {
	if err := a.guard.Err(); err != nil {
		return sqltypes.TypeNull, err
	}

	return a.data.Elem, nil
}

func (a *Array) BaseTypeName() (string, error) {
	if err := a.guard.Err(); err != nil {
		return "", err
	}

	return elementTypeName(a.data.Elem), nil
}

func elementTypeName(code sqltypes.Code) string {
	d, err := sqltypes.Resolve(code)
	if err != nil {
		return ""
	}

	return d.Name
}

// Elements decodes every element. m is consulted by the element type name.
func (a *Array) Elements(m sqltypes.TypeMap) ([]any, error) {
	if err := a.guard.Err(); err != nil {
		return nil, err
	}
	name := elementTypeName(a.data.Elem)
	out := make([]any, len(a.data.Elements))
	for i, e := range a.data.Elements {
		v, err := sqltypes.DecodeRaw(e, name, m)
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		out[i] = v
	}

	return out, nil
}

// Cursor returns a scrollable cursor over the elements with two columns:
// the 1-based INDEX and the element VALUE.
func (a *Array) Cursor() (*cursor.Cursor, error) {
	if err := a.guard.Err(); err != nil {
		return nil, err
	}
	rows := make([][]sqltypes.Raw, len(a.data.Elements))
	for i, e := range a.data.Elements {
		index, err := sqltypes.EncodeRaw(sqltypes.TypeBigInt, int64(i+1))
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		rows[i] = []sqltypes.Raw{index, e}
	}
	columns := []cursor.Column{
		{Name: "INDEX", Code: sqltypes.TypeBigInt, TypeName: "BIGINT"},
		{Name: "VALUE", Code: a.data.Elem, TypeName: elementTypeName(a.data.Elem), Nullable: true},
	}

	return cursor.Materialized(a.guard, columns, rows, cursor.WithScrollable(true), cursor.WithWrap(a.wrap)), nil
}

// Free releases the handle and any cursor opened over it.
func (a *Array) Free() {
	a.guard.Free()
}

func (a *Array) State() lifetime.State {
	return a.guard.State()
}

// Struct is a STRUCT value of a user-defined type.
type Struct struct {
	guard *lifetime.Guard
	data  sqltypes.StructData
}

func NewStruct(owner *lifetime.Guard, data sqltypes.StructData) *Struct {
	return &Struct{
		guard: owner.Attach("STRUCT"),
		data:  data,
	}
}

func (s *Struct) Code() sqltypes.Code {
	return sqltypes.TypeStruct
}

// StructData allows the handle to be bound back as a parameter value.
func (s *Struct) StructData() (sqltypes.StructData, error) {
	if err := s.guard.Err(); err != nil {
		return sqltypes.StructData{}, err
	}

	return s.data, nil
}

func (s *Struct) TypeName() (string, error) {
	if err := s.guard.Err(); err != nil {
		return "", err
	}

	return s.data.TypeName, nil
}

// Attributes decodes every attribute. m is consulted by the attribute type
// name.
func (s *Struct) Attributes(m sqltypes.TypeMap) ([]any, error) {
	if err := s.guard.Err(); err != nil {
		return nil, err
	}
	out := make([]any, len(s.data.Attributes))
	for i, attr := range s.data.Attributes {
		v, err := sqltypes.DecodeRaw(attr, elementTypeName(attr.Code), m)
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		out[i] = v
	}

	return out, nil
}

func (s *Struct) Free() {
	s.guard.Free()
}

func (s *Struct) State() lifetime.State {
	return s.guard.State()
}
