package conn

import (
	"context"
	"errors"

	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

// errCancelled is the cancellation cause set by Conn.Cancel.
var errCancelled = errors.New("execution cancelled")

func serverError(se *wire.ServerError) error {
	return sqlerr.Server(se.State, se.Code, se.Message)
}

func serverWarning(se wire.ServerError) sqlerr.Warning {
	return sqlerr.Warning{
		Reason:     se.Message,
		SQLState:   se.State,
		VendorCode: se.Code,
	}
}

// exchangeError classifies a failed round trip. It reports whether the
// failure means the connection is lost.
func exchangeError(ctx context.Context, op wire.Op, err error) (_ error, lost bool) {
	if errors.Is(context.Cause(ctx), errCancelled) {
		return sqlerr.Newf(sqlerr.KindCancelled, "%s cancelled", op).WithCause(err), false
	}
	if ctx.Err() != nil || xerrors.IsContextError(err) {
		return sqlerr.Newf(sqlerr.KindCancelled, "%s interrupted", op).WithCause(err), false
	}

	return sqlerr.Newf(sqlerr.KindConnectionLost, "%s failed", op).WithCause(err), true
}
