package sqltypes

import "fmt"

// Null is the typed null marker returned for SQL NULL values. It is distinct
// from the zero value of any host type.
type Null struct {
	Code Code
}

func (n Null) String() string {
	return "NULL(" + n.Code.String() + ")"
}

// IsNull reports whether v stands for SQL NULL.
func IsNull(v any) bool {
	switch v.(type) {
	case nil, Null, *Null:
		return true
	default:
		return false
	}
}

// RowID is an opaque row address.
type RowID []byte

// Opaque carries the raw bytes of types the catalog has no host mapping for.
type Opaque []byte

// Locator references large object data (BLOB, CLOB, NCLOB, SQLXML). Data is
// either carried inline or held by the server and fetched on demand.
type Locator struct {
	ID     uint64
	Length int64
	Inline bool
	Data   []byte
}

func (l Locator) String() string {
	if l.Inline {
		return fmt.Sprintf("inline(%d)", len(l.Data))
	}

	return fmt.Sprintf("locator(%d,%d)", l.ID, l.Length)
}

// Locatable is implemented by handles that can be bound back as parameters.
type Locatable interface {
	Locator() Locator
}

// Raw is an undecoded value: a type code plus catalog-encoded bytes.
type Raw struct {
	Code Code
	Null bool
	Data []byte
}

// ArrayData is the materialized content of an ARRAY value.
type ArrayData struct {
	Elem     Code
	Elements []Raw
}

// StructData is the materialized content of a STRUCT value.
type StructData struct {
	TypeName   string
	Attributes []Raw
}
