package sqlcore

import (
	"context"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/handle"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/params"
	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/transport"
)

type (
	Conn      = conn.Conn
	ConnState = conn.State
	Stmt      = conn.Stmt
	StmtState = conn.StmtState

	Cursor = cursor.Cursor
	Column = cursor.Column

	ParameterMetadata = params.Metadata
	Nullability       = params.Nullability
	ParameterMode     = params.Mode

	Isolation = tx.Isolation
	TxState   = tx.State
	Savepoint = tx.Savepoint

	Blob   = handle.Blob
	Clob   = handle.Clob
	SQLXML = handle.SQLXML
	Array  = handle.Array
	Struct = handle.Struct

	ResourceState = lifetime.State
)

const (
	IsolationNone            = tx.None
	IsolationReadUncommitted = tx.ReadUncommitted
	IsolationReadCommitted   = tx.ReadCommitted
	IsolationRepeatableRead  = tx.RepeatableRead
	IsolationSerializable    = tx.Serializable
)

// Open starts a session over t. The connection owns t from now on.
func Open(ctx context.Context, t transport.Transport, props map[string]string, opts ...config.Option) (*Conn, error) {
	c, err := conn.Open(ctx, t, props, opts...)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	return c, nil
}
