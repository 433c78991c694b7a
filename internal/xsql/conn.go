package xsql

import (
	"context"
	"database/sql/driver"
	"time"

	core "github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsql/badconn"
	"github.com/sqlkit/sqlcore/internal/xsql/isolation"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

var (
	_ driver.Conn               = &Conn{}
	_ driver.ConnPrepareContext = &Conn{}
	_ driver.ConnBeginTx        = &Conn{}
	_ driver.ExecerContext      = &Conn{}
	_ driver.QueryerContext     = &Conn{}
	_ driver.Pinger             = &Conn{}
	_ driver.NamedValueChecker  = &Conn{}
	_ driver.Validator          = &Conn{}
	_ driver.SessionResetter    = &Conn{}
)

// Conn is a database/sql connection over one core connection.
type Conn struct {
	connector *Connector
	cc        *core.Conn
	currentTx *Tx

	// pendingIsolation is the level to put back once no transaction is
	// active.
	pendingIsolation *tx.Isolation
}

// Core returns the underlying connection, for use through sql.Conn.Raw.
func (c *Conn) Core() *core.Conn {
	return c.cc
}

func (c *Conn) LastUsage() time.Time {
	return c.cc.LastUsage()
}

func (c *Conn) IsValid() bool {
	return c.cc.State().IsOpen()
}

func (c *Conn) ResetSession(ctx context.Context) error {
	if !c.IsValid() {
		return driver.ErrBadConn
	}
	c.cc.Warnings()
	if c.cc.TxState() == tx.Active {
		if err := c.cc.Rollback(ctx); err != nil {
			return badconn.Map(xerrors.WithStackTrace(err))
		}
	}
	if err := c.restoreIsolation(ctx); err != nil {
		// the session keeps a level its next user did not ask for
		return driver.ErrBadConn
	}

	return nil
}

func (c *Conn) restoreIsolation(ctx context.Context) error {
	if c.pendingIsolation == nil || !c.IsValid() {
		return nil
	}
	if err := c.cc.SetIsolation(ctx, *c.pendingIsolation); err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.pendingIsolation = nil

	return nil
}

func (c *Conn) CheckNamedValue(v *driver.NamedValue) error {
	return checkNamedValue(v)
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.cc.Ping(ctx); err != nil {
		return badconn.Map(xerrors.WithStackTrace(err))
	}

	return nil
}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	s, err := c.cc.Prepare(ctx, query)
	if err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}

	return &stmt{conn: c, s: s}, nil
}

func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) == 0 {
		n, err := c.cc.Exec(ctx, query)
		if err != nil {
			return nil, badconn.Map(xerrors.WithStackTrace(err))
		}

		return result(n), nil
	}
	s, err := c.cc.Prepare(ctx, query)
	if err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}
	defer func() {
		_ = s.Close()
	}()

	return (&stmt{conn: c, s: s}).ExecContext(ctx, args)
}

func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) == 0 {
		cur, err := c.cc.Query(ctx, query)
		if err != nil {
			return nil, badconn.Map(xerrors.WithStackTrace(err))
		}

		return newRows(c, cur, nil), nil
	}
	s, err := c.cc.Prepare(ctx, query)
	if err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}
	if err := bindArgs(s, args); err != nil {
		_ = s.Close()

		return nil, xerrors.WithStackTrace(err)
	}
	cur, err := s.Query(ctx)
	if err != nil {
		_ = s.Close()

		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}

	return newRows(c, cur, s), nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts an explicit transaction. A requested isolation level lasts
// for the transaction only.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.currentTx != nil {
		return nil, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindTransactionAlreadyActive,
			"database/sql transaction is active",
		))
	}
	if err := c.restoreIsolation(ctx); err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(err))
	}
	level, ok, err := isolation.ToCore(opts)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	t := &Tx{
		conn:     c,
		ctx:      ctx,
		previous: c.cc.Isolation(),
	}
	if ok && level != t.previous {
		if err := c.cc.SetIsolation(ctx, level); err != nil {
			return nil, badconn.Map(xerrors.WithStackTrace(err))
		}
		t.restore = true
	}
	if err := c.cc.Begin(ctx); err != nil {
		return nil, badconn.Map(xerrors.WithStackTrace(xerrors.Join(err, t.end())))
	}
	c.currentTx = t

	return t, nil
}

func (c *Conn) Close() error {
	c.connector.conns.Delete(c.cc.ID())
	if err := c.cc.Close(); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}

func bindArgs(s *core.Stmt, args []driver.NamedValue) error {
	if err := s.ClearParameters(); err != nil {
		return xerrors.WithStackTrace(err)
	}
	for _, arg := range args {
		if arg.Name != "" {
			return xerrors.WithStackTrace(errNamedArgs)
		}
		if arg.Value == nil {
			code, err := s.ParameterMetadata().Type(arg.Ordinal)
			if err != nil {
				return xerrors.WithStackTrace(err)
			}
			if code == sqltypes.TypeNull {
				code = sqltypes.TypeVarChar
			}
			if err := s.BindNull(arg.Ordinal, code); err != nil {
				return xerrors.WithStackTrace(err)
			}

			continue
		}
		code, err := sqltypes.CodeOf(arg.Value)
		if err != nil {
			return xerrors.WithStackTrace(err)
		}
		if err := s.Bind(arg.Ordinal, arg.Value, code); err != nil {
			return xerrors.WithStackTrace(err)
		}
	}

	return nil
}

type result int64

// LastInsertId is not reported by the protocol.
func (r result) LastInsertId() (int64, error) {
	return 0, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindUnsupported, "last insert id"))
}

// RowsAffected is -1 when the statement produced rows.
func (r result) RowsAffected() (int64, error) {
	return int64(r), nil
}
