package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rekby/fixenv"
	"github.com/rekby/fixenv/sf"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/handle"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpenClose(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := ConnOverMock(e)

	require.Equal(t, "session-1", c.session)
	require.Equal(t, Idle, c.State())
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.Equal(t, Closed, c.State())

	err := c.Ping(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindConnectionAlreadyClosed), err)
	_, err = c.Prepare(ctx, "SELECT 1")
	require.True(t, sqlerr.Is(err, sqlerr.KindConnectionAlreadyClosed), err)

	ops := FakeServer(e).Ops()
	require.Equal(t, wire.OpOpen, ops[0])
	require.Equal(t, wire.OpClose, ops[len(ops)-1])
}

func TestOpenRejectsIsolation(t *testing.T) {
	e := fixenv.New(t)
	_, err := Open(sf.Context(e), TransportMock(e), nil, config.WithIsolation(tx.Isolation(3)))
	require.Error(t, err)
	require.Empty(t, FakeServer(e).Ops())
}

func TestPrepareBindExec(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.params = []wire.ParamMeta{
		{Code: sqltypes.TypeVarChar, TypeName: "VARCHAR", Nullable: 1, Mode: 1},
		{Code: sqltypes.TypeInteger, TypeName: "INTEGER", Nullable: 0, Mode: 1},
	}
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "UPDATE t SET name = ? WHERE id = ?")
	require.NoError(t, err)
	require.Equal(t, 2, s.ParameterMetadata().Count())
	require.Equal(t, Ready, s.State())

	require.NoError(t, s.Bind(1, "alice", sqltypes.TypeVarChar))
	_, err = s.Exec(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindParameterNotSet), err)

	err = s.BindNull(2, sqltypes.TypeInteger)
	require.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch), err)
	require.Equal(t, sqlerr.StateNullNotAllowed, sqlerr.StateOf(err))

	require.NoError(t, s.Bind(2, int64(7), sqltypes.TypeBigInt))
	n, err := s.Exec(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Len(t, server.values, 2)
	require.Equal(t, sqltypes.TypeInteger, server.values[1].Code)
	require.Equal(t, []bool{true}, server.autoCommit)

	require.NoError(t, s.ClearParameters())
	_, err = s.Exec(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindParameterNotSet), err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	err = s.Bind(1, "bob", sqltypes.TypeVarChar)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceFreed), err)
	require.Contains(t, server.Ops(), wire.OpCloseStmt)
}

func TestQueryFetchesBatches(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.rows = intRows(t, 5)
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	s.SetFetchSize(2)

	cur, err := s.Query(ctx)
	require.NoError(t, err)
	require.Len(t, cur.Columns(), 1)

	var got []any
	for {
		ok, err := cur.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		v, err := cur.Column(1)
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Equal(t, []any{int32(1), int32(2), int32(3), int32(4), int32(5)}, got)

	fetches := 0
	for _, op := range server.Ops() {
		if op == wire.OpFetch {
			fetches++
		}
	}
	require.Equal(t, 2, fetches)

	// executing again closes the previous cursor
	next, err := s.Query(ctx)
	require.NoError(t, err)
	require.Equal(t, lifetime.Freed, cur.State())
	_, err = cur.Next(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceFreed), err)
	require.Contains(t, server.Ops(), wire.OpCloseCursor)
	require.NoError(t, next.Close())

	n, err := s.Exec(ctx)
	require.NoError(t, err)
	require.EqualValues(t, -1, n)
}

func TestDirectExecution(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.rows = intRows(t, 1)
	c := ConnOverMock(e)

	n, err := c.Exec(ctx, "DELETE FROM t")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	cur, err := c.Query(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	cur, err = c.Query(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	ok, err = cur.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCloseInvalidatesChildren(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.rows = intRows(t, 3)
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	cur, err := s.Query(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.Equal(t, lifetime.Closed, cur.State())

	_, err = cur.Next(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceClosed), err)
	_, err = s.Exec(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceClosed), err)
	require.NoError(t, s.Close())
	require.NoError(t, cur.Close())
}

func TestStmtCloseReleasesServerCursor(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.rows = intRows(t, 500)
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	cur, err := s.Query(ctx)
	require.NoError(t, err)
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Close())
	require.Equal(t, lifetime.Freed, cur.State())
	require.NoError(t, cur.Close())

	ops := server.Ops()
	require.Equal(t, []wire.Op{wire.OpCloseCursor, wire.OpCloseStmt}, ops[len(ops)-2:])
}

func TestTransportFailureLosesConnection(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "DELETE FROM t")
	require.NoError(t, err)

	server.intercept[wire.OpPing] = func(context.Context) (*wire.Response, error) {
		return nil, errors.New("broken pipe")
	}
	err = c.Ping(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindConnectionLost), err)
	require.Equal(t, Closed, c.State())

	_, err = s.Exec(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceClosed), err)
	require.NoError(t, c.Close())
}

func TestTransportFailureDuringCommit(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := openOverMock(e, config.WithAutoCommit(false))

	_, err := c.Exec(ctx, "DELETE FROM t")
	require.NoError(t, err)
	require.Equal(t, tx.Active, c.TxState())

	server.intercept[wire.OpCommit] = func(context.Context) (*wire.Response, error) {
		return nil, errors.New("broken pipe")
	}
	done := make(chan error, 1)
	go func() {
		done <- c.Commit(ctx)
	}()
	select {
	case err := <-done:
		require.True(t, sqlerr.Is(err, sqlerr.KindConnectionLost), err)
	case <-time.After(time.Second):
		t.Fatal("commit blocked after transport failure")
	}
	require.Equal(t, Closed, c.State())
	require.Equal(t, tx.RolledBack, c.TxState())
	require.NoError(t, c.Close())
}

func TestMalformedRowsLoseConnection(t *testing.T) {
	for _, tt := range []struct {
		name  string
		setup func(s *fakeServer)
	}{
		{
			name: "execute",
			setup: func(s *fakeServer) {
				s.columns = []wire.ColumnMeta{
					intColumns[0],
					{Name: "name", Code: sqltypes.TypeVarChar, TypeName: "VARCHAR"},
				}
			},
		},
		{
			name: "fetch",
			setup: func(s *fakeServer) {
				s.intercept[wire.OpFetch] = func(context.Context) (*wire.Response, error) {
					return &wire.Response{Rows: [][]sqltypes.Raw{{}}}, nil
				}
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := fixenv.New(t)
			ctx := sf.Context(e)
			server := FakeServer(e)
			server.rows = intRows(t, 3)
			tt.setup(server)
			c := ConnOverMock(e)

			s, err := c.Prepare(ctx, "SELECT id FROM t")
			require.NoError(t, err)
			s.SetFetchSize(1)

			cur, err := s.Query(ctx)
			for err == nil {
				var ok bool
				ok, err = cur.Next(ctx)
				require.True(t, ok || err != nil, "all rows read without an error")
			}
			require.True(t, sqlerr.Is(err, sqlerr.KindConnectionLost), err)
			require.Equal(t, Closed, c.State())
		})
	}
}

func TestServerErrorAndWarnings(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := ConnOverMock(e)

	server.fail[wire.OpPrepare] = &wire.ServerError{State: "42000", Code: 102, Message: "syntax error"}
	_, err := c.Prepare(ctx, "SELEC 1")
	require.True(t, sqlerr.Is(err, sqlerr.KindServer), err)
	require.Equal(t, "42000", sqlerr.StateOf(err))
	require.Equal(t, Idle, c.State())
	delete(server.fail, wire.OpPrepare)

	server.warnings = []wire.ServerError{{State: "01000", Message: "rows skipped"}}
	s, err := c.Prepare(ctx, "DELETE FROM t")
	require.NoError(t, err)
	_, err = s.Exec(ctx)
	require.NoError(t, err)

	ws := s.Warnings()
	require.Len(t, ws, 1)
	require.Equal(t, "01000", ws[0].SQLState)
	require.Empty(t, s.Warnings())
	require.Empty(t, c.Warnings())
}

func TestManualCommit(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := openOverMock(e, config.WithAutoCommit(false))

	require.False(t, c.AutoCommit())
	_, err := c.Exec(ctx, "DELETE FROM t")
	require.NoError(t, err)
	require.Equal(t, tx.Active, c.TxState())
	require.NotNil(t, c.TxID())
	require.Equal(t, []bool{false}, server.autoCommit)

	sp, err := c.Savepoint(ctx, "before_insert")
	require.NoError(t, err)
	require.NoError(t, c.RollbackTo(ctx, sp))

	require.NoError(t, c.SetAutoCommit(ctx, true))
	require.Equal(t, tx.Committed, c.TxState())
	require.Nil(t, c.TxID())

	ops := server.Ops()
	require.Contains(t, ops, wire.OpBegin)
	require.Contains(t, ops, wire.OpSavepoint)
	require.Contains(t, ops, wire.OpRollbackTo)
	require.Equal(t, wire.OpCommit, ops[len(ops)-1])
}

// blockExecute makes executions wait until release is closed. started
// receives one value per blocked execution.
func blockExecute(server *fakeServer) (started chan struct{}, release chan struct{}) {
	started = make(chan struct{}, 1)
	release = make(chan struct{})
	server.intercept[wire.OpExecute] = func(ctx context.Context) (*wire.Response, error) {
		started <- struct{}{}
		select {
		case <-release:
			return &wire.Response{UpdateCount: 1}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return started, release
}

func TestStrictBusyMode(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := openOverMock(e, config.WithBusyMode(config.Strict))
	started, release := blockExecute(server)

	done := make(chan error, 1)
	go func() {
		_, err := c.Exec(ctx, "UPDATE t SET x = 1")
		done <- err
	}()
	<-started
	require.Equal(t, Busy, c.State())

	err := c.Ping(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindConnectionBusy), err)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, Idle, c.State())
}

func TestBlockingBusyModeHonorsDeadline(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := ConnOverMock(e)
	started, release := blockExecute(server)

	done := make(chan error, 1)
	go func() {
		_, err := c.Exec(ctx, "UPDATE t SET x = 1")
		done <- err
	}()
	<-started

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := c.Ping(waitCtx)
	require.True(t, sqlerr.Is(err, sqlerr.KindCancelled), err)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, c.Ping(ctx))
}

func TestCloseWhileTransactionWaits(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := ConnOverMock(e)
	started, _ := blockExecute(server)

	execDone := make(chan error, 1)
	go func() {
		_, err := c.Exec(ctx, "UPDATE t SET x = 1")
		execDone <- err
	}()
	<-started

	beginDone := make(chan error, 1)
	go func() {
		beginDone <- c.Begin(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	closed := make(chan error, 1)
	go func() {
		closed <- c.Close()
	}()
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("close blocked")
	}
	require.Error(t, <-execDone)
	require.Error(t, <-beginDone)
	require.Equal(t, tx.NoTransaction, c.TxState())
}

func TestCancel(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	c := ConnOverMock(e)

	s, err := c.Prepare(ctx, "UPDATE t SET x = 1")
	require.NoError(t, err)
	started, _ := blockExecute(server)

	done := make(chan error, 1)
	go func() {
		_, err := s.Exec(ctx)
		done <- err
	}()
	<-started
	require.Equal(t, Executing, s.State())

	c.Cancel()
	err = <-done
	require.True(t, sqlerr.Is(err, sqlerr.KindCancelled), err)
	require.Equal(t, Aborted, s.State())

	delete(server.intercept, wire.OpExecute)
	require.NoError(t, c.Ping(ctx))
	require.Equal(t, Idle, c.State())

	// nothing in flight
	c.Cancel()
}

func TestLobHandle(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	server := FakeServer(e)
	server.lobs[42] = []byte("0123456789")
	raw, err := sqltypes.EncodeRaw(sqltypes.TypeBlob, sqltypes.Locator{ID: 42, Length: 10})
	require.NoError(t, err)
	server.columns = []wire.ColumnMeta{{Name: "payload", Code: sqltypes.TypeBlob, TypeName: "BLOB"}}
	server.rows = [][]sqltypes.Raw{{raw}}
	c := ConnOverMock(e)

	cur, err := c.Query(ctx, "SELECT payload FROM t")
	require.NoError(t, err)
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := cur.Column(1)
	require.NoError(t, err)
	blob, ok := v.(*handle.Blob)
	require.True(t, ok, "%T", v)
	length, err := blob.Length()
	require.NoError(t, err)
	require.EqualValues(t, 10, length)

	require.NoError(t, cur.Close())
	b, err := blob.Bytes(ctx, 3, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("2345"), b)
	require.Contains(t, server.Ops(), wire.OpReadLob)

	require.NoError(t, c.Close())
	_, err = blob.Bytes(ctx, 1, 1)
	require.True(t, sqlerr.Is(err, sqlerr.KindResourceClosed), err)
}
