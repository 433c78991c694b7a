package sqltypes

import "strconv"

// Code is a SQL type code. The values are the published JDBC type codes and
// are part of the wire format: they must never be renumbered.
type Code int32

const (
	TypeBit                   Code = -7
	TypeTinyInt               Code = -6
	TypeSmallInt              Code = 5
	TypeInteger               Code = 4
	TypeBigInt                Code = -5
	TypeFloat                 Code = 6
	TypeReal                  Code = 7
	TypeDouble                Code = 8
	TypeNumeric               Code = 2
	TypeDecimal               Code = 3
	TypeChar                  Code = 1
	TypeVarChar               Code = 12
	TypeLongVarChar           Code = -1
	TypeDate                  Code = 91
	TypeTime                  Code = 92
	TypeTimestamp             Code = 93
	TypeBinary                Code = -2
	TypeVarBinary             Code = -3
	TypeLongVarBinary         Code = -4
	TypeNull                  Code = 0
	TypeOther                 Code = 1111
	TypeJavaObject            Code = 2000
	TypeDistinct              Code = 2001
	TypeStruct                Code = 2002
	TypeArray                 Code = 2003
	TypeBlob                  Code = 2004
	TypeClob                  Code = 2005
	TypeRef                   Code = 2006
	TypeDataLink              Code = 70
	TypeBoolean               Code = 16
	TypeRowID                 Code = -8
	TypeNChar                 Code = -15
	TypeNVarChar              Code = -9
	TypeLongNVarChar          Code = -16
	TypeNClob                 Code = 2011
	TypeSQLXML                Code = 2009
	TypeRefCursor             Code = 2012
	TypeTimeWithTimezone      Code = 2013
	TypeTimestampWithTimezone Code = 2014
)

// Codes lists every code known to the catalog.
func Codes() []Code {
	codes := make([]Code, 0, len(catalog))
	for i := range catalog {
		codes = append(codes, catalog[i].Code)
	}

	return codes
}

func (c Code) String() string {
	if d, ok := byCode[c]; ok {
		return d.Name
	}

	return "UNKNOWN(" + strconv.Itoa(int(c)) + ")"
}
