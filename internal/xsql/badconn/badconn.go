// Package badconn marks errors after which database/sql must discard the
// connection.
package badconn

import (
	"database/sql/driver"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

type badConnError struct {
	err error
}

func (e badConnError) Error() string {
	return e.err.Error()
}

func (e badConnError) Unwrap() error {
	return e.err
}

func (e badConnError) Is(err error) bool {
	//nolint:errorlint
	if err == driver.ErrBadConn {
		return true
	}

	return xerrors.Is(e.err, err)
}

func (e badConnError) As(target interface{}) bool {
	return xerrors.As(e.err, target)
}

// Map reports lost and closed connections as driver.ErrBadConn while keeping
// the original error inspectable.
func Map(err error) error {
	switch sqlerr.KindOf(err) {
	case sqlerr.KindConnectionLost, sqlerr.KindConnectionAlreadyClosed:
		return badConnError{err: err}
	default:
		return err
	}
}
