package xsql

import (
	"database/sql/driver"
	"errors"
)

var (
	errDeprecated    = driver.ErrSkip
	errAlreadyClosed = errors.New("connector already closed")
	errNamedArgs     = errors.New("named arguments are not supported")
)
