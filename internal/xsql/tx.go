package xsql

import (
	"context"
	"database/sql/driver"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsql/badconn"
)

var _ driver.Tx = &Tx{}

type Tx struct {
	conn     *Conn
	ctx      context.Context //nolint:containedctx
	previous tx.Isolation
	restore  bool
}

func (t *Tx) ID() string {
	if id := t.conn.cc.TxID(); id != nil {
		return id.ID()
	}

	return ""
}

// Commit finishes the transaction whatever the outcome: database/sql never
// reuses a Tx after Commit, so a failed commit is rolled back here.
func (t *Tx) Commit() error {
	err := t.conn.cc.Commit(t.ctx)
	if err != nil && t.conn.cc.TxState() == tx.Active {
		err = xerrors.Join(err, t.conn.cc.Rollback(t.ctx))
	}
	endErr := t.end()
	if err != nil {
		return badconn.Map(xerrors.WithStackTrace(xerrors.Join(err, endErr)))
	}
	// endErr leaves the level pending for ResetSession: the data is committed

	return nil
}

func (t *Tx) Rollback() error {
	err := xerrors.Join(t.conn.cc.Rollback(t.ctx), t.end())
	if err != nil {
		return badconn.Map(xerrors.WithStackTrace(err))
	}

	return nil
}

// end detaches the transaction and puts back the isolation level the
// connection had before it. A level that could not be restored stays
// pending on the connection.
func (t *Tx) end() error {
	t.conn.currentTx = nil
	if !t.restore {
		return nil
	}
	previous := t.previous
	t.conn.pendingIsolation = &previous

	return t.conn.restoreIsolation(context.Background())
}
