package params

import (
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Binder stages parameter values. It is not safe for concurrent use; the
// owning statement serializes access.
type Binder struct {
	meta   *Metadata
	values []binding
}

type binding struct {
	set bool
	raw sqltypes.Raw
}

func NewBinder(meta *Metadata) *Binder {
	return &Binder{
		meta:   meta,
		values: make([]binding, meta.Count()),
	}
}

func (b *Binder) Metadata() *Metadata {
	return b.meta
}

// Bind converts v into declared and stages it at the 1-based index i. A
// later Bind of the same index replaces the value.
func (b *Binder) Bind(i int, v any, declared sqltypes.Code) error {
	slot, err := b.writable(i)
	if err != nil {
		return err
	}
	if sqltypes.IsNull(v) {
		return b.bindNull(i, slot, declared)
	}

	d, err := sqltypes.Resolve(declared)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}
	hv, err := d.Convert(v)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}
	if slot.Code != sqltypes.TypeNull && slot.Code != declared {
		target, err := sqltypes.Resolve(slot.Code)
		if err != nil {
			return xerrors.WithStackTrace(err)
		}
		if hv, err = target.Convert(hv); err != nil {
			return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindTypeMismatch,
				"parameter %d: %s value does not fit %s slot", i, d.Name, target.Name,
			).WithCause(err))
		}
		d = target
	}
	if n := d.Len(hv); slot.Precision > 0 && n > slot.Precision {
		return xerrors.WithStackTrace(sqlerr.WriteTruncation(sqlerr.Truncation{
			Index:        i,
			Parameter:    true,
			DataSize:     n,
			TransferSize: slot.Precision,
		}))
	}
	data, err := d.Encode(hv)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}
	b.values[i-1] = binding{
		set: true,
		raw: sqltypes.Raw{Code: d.Code, Data: data},
	}

	return nil
}

// BindNull stages SQL NULL of the given code at index i.
func (b *Binder) BindNull(i int, code sqltypes.Code) error {
	slot, err := b.writable(i)
	if err != nil {
		return err
	}

	return b.bindNull(i, slot, code)
}

func (b *Binder) bindNull(i int, slot Slot, code sqltypes.Code) error {
	if slot.Nullable == NoNulls {
		err := sqlerr.Newf(sqlerr.KindTypeMismatch, "parameter %d does not accept NULL", i)
		err.SQLState = sqlerr.StateNullNotAllowed

		return xerrors.WithStackTrace(err, xerrors.WithSkipDepth(1))
	}
	if _, err := sqltypes.Resolve(code); err != nil {
		return xerrors.WithStackTrace(err, xerrors.WithSkipDepth(1))
	}
	if slot.Code != sqltypes.TypeNull {
		code = slot.Code
	}
	b.values[i-1] = binding{
		set: true,
		raw: sqltypes.Raw{Code: code, Null: true},
	}

	return nil
}

func (b *Binder) writable(i int) (Slot, error) {
	slot, err := b.meta.Slot(i)
	if err != nil {
		return slot, xerrors.WithStackTrace(err, xerrors.WithSkipDepth(1))
	}
	if slot.Mode == ModeOut {
		return slot, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidParameterIndex,
			"parameter %d is an OUT parameter", i,
		), xerrors.WithSkipDepth(1))
	}

	return slot, nil
}

// Clear drops every staged value.
func (b *Binder) Clear() {
	for i := range b.values {
		b.values[i] = binding{}
	}
}

// Encode returns the staged values in index order. OUT parameters are sent
// as typed nulls.
func (b *Binder) Encode() ([]sqltypes.Raw, error) {
	raws := make([]sqltypes.Raw, len(b.values))
	for i, v := range b.values {
		slot := b.meta.slots[i]
		switch {
		case v.set:
			raws[i] = v.raw
		case slot.Mode == ModeOut:
			raws[i] = sqltypes.Raw{Code: slot.Code, Null: true}
		default:
			return nil, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindParameterNotSet,
				"parameter %d is not set", i+1,
			))
		}
	}

	return raws, nil
}
