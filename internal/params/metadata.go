// Package params stages parameter values of a prepared statement: it checks
// them against the parameter metadata obtained at preparation and encodes
// them for execution.
package params

import (
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Nullability values match the JDBC ParameterMetaData constants.
type Nullability int32

const (
	NoNulls         = Nullability(0)
	Nullable        = Nullability(1)
	NullableUnknown = Nullability(2)
)

// Mode values match the JDBC ParameterMetaData constants.
type Mode int32

const (
	ModeUnknown = Mode(0)
	ModeIn      = Mode(1)
	ModeInOut   = Mode(2)
	ModeOut     = Mode(4)
)

func (m Mode) String() string {
	switch m {
	case ModeIn:
		return "in"
	case ModeInOut:
		return "inout"
	case ModeOut:
		return "out"
	default:
		return "unknown"
	}
}

// Slot describes one parameter placeholder. Code is TypeNull when the server
// did not report a type.
type Slot struct {
	Code     sqltypes.Code
	TypeName string
	Nullable Nullability
	Mode     Mode
	// Precision is the negotiated transfer size for variable-length types,
	// zero when unlimited.
	Precision int
	Scale     int
	Signed    bool
}

// Metadata is immutable once built.
type Metadata struct {
	slots []Slot
}

func NewMetadata(slots ...Slot) *Metadata {
	return &Metadata{slots: append([]Slot(nil), slots...)}
}

func FromWire(ps []wire.ParamMeta) *Metadata {
	slots := make([]Slot, len(ps))
	for i, p := range ps {
		slots[i] = Slot{
			Code:      p.Code,
			TypeName:  p.TypeName,
			Nullable:  Nullability(p.Nullable),
			Mode:      Mode(p.Mode),
			Precision: int(p.Precision),
			Scale:     int(p.Scale),
			Signed:    p.Signed,
		}
	}

	return &Metadata{slots: slots}
}

func (m *Metadata) Count() int {
	return len(m.slots)
}

// Slot returns the description of the 1-based parameter i.
func (m *Metadata) Slot(i int) (Slot, error) {
	if i < 1 || i > len(m.slots) {
		return Slot{}, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidParameterIndex,
			"parameter index %d out of range [1,%d]", i, len(m.slots),
		), xerrors.WithSkipDepth(1))
	}

	return m.slots[i-1], nil
}

func (m *Metadata) Type(i int) (sqltypes.Code, error) {
	s, err := m.Slot(i)

	return s.Code, err
}

func (m *Metadata) TypeName(i int) (string, error) {
	s, err := m.Slot(i)

	return s.TypeName, err
}

func (m *Metadata) IsNullable(i int) (Nullability, error) {
	s, err := m.Slot(i)

	return s.Nullable, err
}

func (m *Metadata) Mode(i int) (Mode, error) {
	s, err := m.Slot(i)

	return s.Mode, err
}

func (m *Metadata) Precision(i int) (int, error) {
	s, err := m.Slot(i)

	return s.Precision, err
}

func (m *Metadata) Scale(i int) (int, error) {
	s, err := m.Slot(i)

	return s.Scale, err
}

func (m *Metadata) IsSigned(i int) (bool, error) {
	s, err := m.Slot(i)

	return s.Signed, err
}
