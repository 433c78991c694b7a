package xsql

import (
	"context"
	"database/sql/driver"
	"io"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"github.com/sqlkit/sqlcore/internal/handle"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqltypes"
)

func checkNamedValue(v *driver.NamedValue) error {
	switch v.Value.(type) {
	case nil:
		return nil
	case driver.Valuer:
		return driver.ErrSkip
	}
	if _, err := sqltypes.CodeOf(v.Value); err != nil {
		return driver.ErrSkip
	}

	return nil
}

// driverValue turns a decoded column value into a database/sql value.
// Handles are read to the end and freed.
//
//nolint:gocyclo
func driverValue(ctx context.Context, v any, m sqltypes.TypeMap) (driver.Value, error) {
	switch vv := v.(type) {
	case sqltypes.Null:
		return nil, nil
	case int8:
		return int64(vv), nil
	case int16:
		return int64(vv), nil
	case int32:
		return int64(vv), nil
	case float32:
		return float64(vv), nil
	case decimal.Decimal:
		return vv.String(), nil
	case civil.Date:
		return vv.In(time.UTC), nil
	case civil.Time:
		return vv.String(), nil
	case civil.DateTime:
		return vv.In(time.UTC), nil
	case sqltypes.RowID:
		return []byte(vv), nil
	case sqltypes.Opaque:
		return []byte(vv), nil
	case *handle.Blob:
		defer vv.Free()
		r, err := vv.Reader(ctx)
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}

		return b, nil
	case *handle.Clob:
		defer vv.Free()

		return vv.String(ctx)
	case *handle.SQLXML:
		defer vv.Free()

		return vv.String(ctx)
	case *handle.Array:
		defer vv.Free()

		return vv.Elements(m)
	case *handle.Struct:
		defer vv.Free()

		return vv.Attributes(m)
	default:
		return v, nil
	}
}
