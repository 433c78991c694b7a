// Package sqltypes is the type catalog of the driver core: it maps every SQL
// type code to the rules used to convert host values, encode them for the
// wire and decode them back.
package sqltypes

import (
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

type Category uint8

const (
	CategoryOther = Category(iota)
	CategoryNumeric
	CategoryCharacter
	CategoryBinary
	CategoryTemporal
	CategoryBoolean
	CategoryLOB
	CategoryStructured
)

func (c Category) String() string {
	switch c {
	case CategoryNumeric:
		return "numeric"
	case CategoryCharacter:
		return "character"
	case CategoryBinary:
		return "binary"
	case CategoryTemporal:
		return "temporal"
	case CategoryBoolean:
		return "boolean"
	case CategoryLOB:
		return "lob"
	case CategoryStructured:
		return "structured"
	default:
		return "other"
	}
}

type codec interface {
	convert(v any) (any, bool)
	encode(v any) ([]byte, error)
	decode(b []byte) (any, error)
}

// sized is implemented by codecs of variable-length types.
type sized interface {
	length(v any) int
	truncate(v any, n int) any
}

// Descriptor holds the marshalling rules of one SQL type. Descriptors are
// immutable and shared.
type Descriptor struct {
	Code     Code
	Name     string
	Category Category
	// Nullable is the nullability assumed when metadata does not say otherwise.
	Nullable bool

	codec codec
}

// Variable reports whether values of the type have a variable length subject
// to truncation.
func (d *Descriptor) Variable() bool {
	_, ok := d.codec.(sized)

	return ok
}

// Convert converts a host value into the canonical host type of d. nil and
// Null convert into Null{Code: d.Code}.
func (d *Descriptor) Convert(v any) (any, error) {
	if IsNull(v) {
		return Null{Code: d.Code}, nil
	}
	if h, ok := v.(Locatable); ok && d.Category == CategoryLOB {
		return h.Locator(), nil
	}
	if out, ok := d.codec.convert(v); ok {
		return out, nil
	}

	return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindTypeMismatch,
		"cannot convert %T to %s", v, d.Name,
	))
}

// Encode converts v and encodes it. Null values encode to nil.
func (d *Descriptor) Encode(v any) ([]byte, error) {
	cv, err := d.Convert(v)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	if _, isNull := cv.(Null); isNull {
		return nil, nil
	}

	return d.codec.encode(cv)
}

// Decode decodes bytes produced by Encode into the canonical host type.
func (d *Descriptor) Decode(b []byte) (any, error) {
	v, err := d.codec.decode(b)
	if err != nil {
		return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindTypeMismatch,
			"malformed %s value: %v", d.Name, err,
		))
	}

	return v, nil
}

// Len returns the length of a converted value: characters for character
// types, bytes for binary ones and -1 for fixed-length types.
func (d *Descriptor) Len(v any) int {
	s, ok := d.codec.(sized)
	if !ok || IsNull(v) {
		return -1
	}

	return s.length(v)
}

// Truncate cuts a converted value down to n characters or bytes.
func (d *Descriptor) Truncate(v any, n int) any {
	s, ok := d.codec.(sized)
	if !ok || IsNull(v) || s.length(v) <= n {
		return v
	}

	return s.truncate(v, n)
}

var catalog = [...]Descriptor{
	{Code: TypeBit, Name: "BIT", Category: CategoryBoolean, codec: boolCodec{}},
	{Code: TypeBoolean, Name: "BOOLEAN", Category: CategoryBoolean, codec: boolCodec{}},
	{Code: TypeTinyInt, Name: "TINYINT", Category: CategoryNumeric, codec: intCodec{bits: 8}},
	{Code: TypeSmallInt, Name: "SMALLINT", Category: CategoryNumeric, codec: intCodec{bits: 16}},
	{Code: TypeInteger, Name: "INTEGER", Category: CategoryNumeric, codec: intCodec{bits: 32}},
	{Code: TypeBigInt, Name: "BIGINT", Category: CategoryNumeric, codec: intCodec{bits: 64}},
	{Code: TypeReal, Name: "REAL", Category: CategoryNumeric, codec: floatCodec{bits: 32}},
	{Code: TypeFloat, Name: "FLOAT", Category: CategoryNumeric, codec: floatCodec{bits: 64}},
	{Code: TypeDouble, Name: "DOUBLE", Category: CategoryNumeric, codec: floatCodec{bits: 64}},
	{Code: TypeNumeric, Name: "NUMERIC", Category: CategoryNumeric, codec: decimalCodec{}},
	{Code: TypeDecimal, Name: "DECIMAL", Category: CategoryNumeric, codec: decimalCodec{}},
	{Code: TypeChar, Name: "CHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeVarChar, Name: "VARCHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeLongVarChar, Name: "LONGVARCHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeNChar, Name: "NCHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeNVarChar, Name: "NVARCHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeLongNVarChar, Name: "LONGNVARCHAR", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeDataLink, Name: "DATALINK", Category: CategoryCharacter, codec: stringCodec{}},
	{Code: TypeBinary, Name: "BINARY", Category: CategoryBinary, codec: bytesCodec{}},
	{Code: TypeVarBinary, Name: "VARBINARY", Category: CategoryBinary, codec: bytesCodec{}},
	{Code: TypeLongVarBinary, Name: "LONGVARBINARY", Category: CategoryBinary, codec: bytesCodec{}},
	{Code: TypeRowID, Name: "ROWID", Category: CategoryBinary, codec: rowIDCodec{}},
	{Code: TypeDate, Name: "DATE", Category: CategoryTemporal, codec: dateCodec{}},
	{Code: TypeTime, Name: "TIME", Category: CategoryTemporal, codec: timeCodec{}},
	{Code: TypeTimestamp, Name: "TIMESTAMP", Category: CategoryTemporal, codec: timestampCodec{}},
	{
		Code: TypeTimeWithTimezone, Name: "TIME_WITH_TIMEZONE", Category: CategoryTemporal,
		codec: timestampCodec{zoned: true},
	},
	{
		Code: TypeTimestampWithTimezone, Name: "TIMESTAMP_WITH_TIMEZONE", Category: CategoryTemporal,
		codec: timestampCodec{zoned: true},
	},
	{Code: TypeBlob, Name: "BLOB", Category: CategoryLOB, codec: lobCodec{}},
	{Code: TypeClob, Name: "CLOB", Category: CategoryLOB, codec: lobCodec{character: true}},
	{Code: TypeNClob, Name: "NCLOB", Category: CategoryLOB, codec: lobCodec{character: true}},
	{Code: TypeSQLXML, Name: "SQLXML", Category: CategoryLOB, codec: lobCodec{character: true}},
	{Code: TypeArray, Name: "ARRAY", Category: CategoryStructured, codec: arrayCodec{}},
	{Code: TypeStruct, Name: "STRUCT", Category: CategoryStructured, codec: structCodec{}},
	{Code: TypeNull, Name: "NULL", codec: nullCodec{}},
	{Code: TypeOther, Name: "OTHER", codec: opaqueCodec{}},
	{Code: TypeJavaObject, Name: "JAVA_OBJECT", codec: opaqueCodec{}},
	{Code: TypeDistinct, Name: "DISTINCT", codec: opaqueCodec{}},
	{Code: TypeRef, Name: "REF", codec: opaqueCodec{}},
	{Code: TypeRefCursor, Name: "REF_CURSOR", codec: opaqueCodec{}},
}

var byCode = func() map[Code]*Descriptor {
	m := make(map[Code]*Descriptor, len(catalog))
	for i := range catalog {
		catalog[i].Nullable = true
		m[catalog[i].Code] = &catalog[i]
	}

	return m
}()

// Resolve returns the descriptor of code. Repeated calls return the same
// descriptor; an unknown code fails with KindUnknownTypeCode.
func Resolve(code Code) (*Descriptor, error) {
	if d, ok := byCode[code]; ok {
		return d, nil
	}

	return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindUnknownTypeCode,
		"type code %d is not in the catalog", int32(code),
	))
}

// MustResolve is Resolve for codes known at compile time.
func MustResolve(code Code) *Descriptor {
	d, err := Resolve(code)
	if err != nil {
		panic(err)
	}

	return d
}
