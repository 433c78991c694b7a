package xsql

import (
	"context"
	"database/sql/driver"

	core "github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsql/badconn"
)

type stmt struct {
	conn *Conn
	s    *core.Stmt
}

var (
	_ driver.Stmt             = &stmt{}
	_ driver.StmtQueryContext = &stmt{}
	_ driver.StmtExecContext  = &stmt{}

	_ driver.NamedValueChecker = &stmt{}
)

func (s *stmt) CheckNamedValue(v *driver.NamedValue) error {
	return checkNamedValue(v)
}

// QueryContext runs the statement. A previous result of the same statement
// is closed first.
func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := bindArgs(s.s, args); err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	cur, err := s.s.Query(ctx)
	if err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}

	return newRows(s.conn, cur, nil), nil
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if err := bindArgs(s.s, args); err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	n, err := s.s.Exec(ctx)
	if err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}

	return result(n), nil
}

func (s *stmt) NumInput() int {
	return s.s.ParameterMetadata().Count()
}

func (s *stmt) Close() error {
	return s.s.Close()
}

func (s *stmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errDeprecated
}

func (s *stmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errDeprecated
}
