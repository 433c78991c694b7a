package sqlitebackend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/sqlkit/sqlcore/internal/wire"
)

// serverError is a request failure detected by the backend itself.
type serverError struct {
	state   string
	message string
}

func (e *serverError) Error() string {
	return e.message + " (" + e.state + ")"
}

func errorf(state, format string, args ...any) error {
	return &serverError{state: state, message: fmt.Sprintf(format, args...)}
}

func errUnknownStatement(id uint64) error {
	return errorf("HY010", "unknown statement %d", id)
}

func errUnknownCursor(id uint64) error {
	return errorf("24000", "unknown cursor %d", id)
}

func errUnknownLob(id uint64) error {
	return errorf("0F001", "unknown locator %d", id)
}

func toServerError(err error) *wire.ServerError {
	var se *serverError
	if errors.As(err, &se) {
		return &wire.ServerError{State: se.state, Message: se.message}
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return &wire.ServerError{
			State:   sqlState(sqliteErr),
			Code:    int32(sqliteErr.ExtendedCode),
			Message: sqliteErr.Error(),
		}
	}

	return &wire.ServerError{State: "HY000", Message: err.Error()}
}

func sqlState(err sqlite3.Error) string {
	switch err.Code {
	case sqlite3.ErrConstraint:
		return "23000"
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return "40001"
	case sqlite3.ErrReadonly:
		return "25006"
	case sqlite3.ErrTooBig:
		return "22001"
	case sqlite3.ErrMismatch:
		return "22018"
	case sqlite3.ErrRange:
		return "07009"
	case sqlite3.ErrPerm, sqlite3.ErrAuth:
		return "28000"
	case sqlite3.ErrInterrupt:
		return "HY008"
	case sqlite3.ErrError:
		msg := err.Error()
		switch {
		case strings.Contains(msg, "syntax error"):
			return "42000"
		case strings.Contains(msg, "no such table"):
			return "42S02"
		case strings.Contains(msg, "no such column"):
			return "42S22"
		}
	}

	return "HY000"
}
