package sqlcore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlkit/sqlcore"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/transport"
)

// echoServer accepts every request and reports lost connections once down.
func echoServer(down *bool) transport.Func {
	return func(_ context.Context, b []byte) ([]byte, error) {
		req, err := wire.UnmarshalRequest(b)
		if err != nil {
			return nil, err
		}
		if *down {
			return nil, errors.New("connection refused")
		}
		resp := &wire.Response{}
		if req.Op == wire.OpOpen {
			resp.Session = req.Properties["user"]
		}

		return wire.MarshalResponse(resp), nil
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	var down bool
	c, err := sqlcore.Open(ctx, echoServer(&down), map[string]string{"user": "test"})
	require.NoError(t, err)
	require.NoError(t, c.Ping(ctx))
	require.Equal(t, sqlcore.IsolationReadCommitted, c.Isolation())

	down = true
	err = c.Ping(ctx)
	require.True(t, sqlcore.IsKind(err, sqlerr.KindConnectionLost), err)
	require.False(t, sqlcore.IsTransient(err))
	require.NoError(t, c.Close())
}

func TestRaw(t *testing.T) {
	ctx := context.Background()
	var down bool
	connector, err := sqlcore.Connector(func(context.Context) (transport.Transport, error) {
		return echoServer(&down), nil
	}, map[string]string{"user": "test"})
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	var id string
	require.NoError(t, sqlcore.Raw(ctx, db, func(c *sqlcore.Conn) error {
		id = c.ID()

		return c.Ping(ctx)
	}))
	require.NotEmpty(t, id)
	require.Equal(t, 1, connector.Conns())
}
