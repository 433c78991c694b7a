package badconn

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

func TestMap(t *testing.T) {
	for _, tt := range []struct {
		err     error
		badConn bool
	}{
		{err: fmt.Errorf("unknown error")},
		{err: context.Canceled},
		{err: sqlerr.New(sqlerr.KindCancelled, "interrupted")},
		{err: sqlerr.New(sqlerr.KindConnectionBusy, "busy")},
		{err: sqlerr.Server("42000", 1, "syntax error")},
		{err: sqlerr.New(sqlerr.KindConnectionLost, "reset by peer"), badConn: true},
		{err: xerrors.WithStackTrace(sqlerr.New(sqlerr.KindConnectionLost, "eof")), badConn: true},
		{err: sqlerr.New(sqlerr.KindConnectionAlreadyClosed, "closed"), badConn: true},
	} {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := Map(tt.err)
			require.Equal(t, tt.badConn, errors.Is(err, driver.ErrBadConn))
			require.ErrorIs(t, err, tt.err)

			var sqlErr *sqlerr.Error
			require.Equal(t, errors.As(tt.err, &sqlErr), errors.As(err, &sqlErr))
		})
	}
}
