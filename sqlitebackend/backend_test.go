//go:build cgo

package sqlitebackend

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rekby/fixenv"
	"github.com/rekby/fixenv/sf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/sqlkit/sqlcore/config"
	core "github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/handle"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/transport/grpctransport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("database/sql.(*DB).connectionOpener"),
	)
}

const schema = `CREATE TABLE fruit (
	id    INTEGER PRIMARY KEY,
	name  VARCHAR(20) NOT NULL UNIQUE,
	price DECIMAL(10,2),
	notes CLOB,
	photo BLOB
)`

// DSN is a database file with the fruit table, shared by the connections of
// one test.
func DSN(e fixenv.Env) string {
	f := func() (*fixenv.GenericResult[string], error) {
		dsn := filepath.Join(e.T().(testing.TB).TempDir(), "fruit.db")
		b, err := New(sf.Context(e), dsn)
		if err != nil {
			return nil, err
		}
		defer b.Close()
		if _, err := b.DB().Exec(schema); err != nil {
			return nil, err
		}

		return fixenv.NewGenericResult(dsn), nil
	}

	return fixenv.CacheResult(e, f)
}

func openConn(e fixenv.Env, backendOpts []Option, opts ...config.Option) *core.Conn {
	ctx := sf.Context(e)
	b, err := New(ctx, DSN(e), backendOpts...)
	if err != nil {
		e.T().Fatalf("backend: %v", err)
	}
	c, err := core.Open(ctx, b, map[string]string{"user": "test"}, opts...)
	if err != nil {
		e.T().Fatalf("open: %v", err)
	}
	e.T().Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func insertFruit(t *testing.T, ctx context.Context, c *core.Conn, n int) {
	s, err := c.Prepare(ctx, "INSERT INTO fruit (id, name, price) VALUES (?, ?, ?)")
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, 3, s.ParameterMetadata().Count())

	for i := range n {
		require.NoError(t, s.Bind(1, i+1, sqltypes.TypeBigInt))
		require.NoError(t, s.Bind(2, "fruit-"+string(rune('a'+i)), sqltypes.TypeVarChar))
		require.NoError(t, s.Bind(3, decimal.New(int64(i*100+50), -2), sqltypes.TypeDecimal))
		updated, err := s.Exec(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, updated)
	}
}

func TestConcurrentRoundTrips(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	b, err := New(ctx, DSN(e))
	require.NoError(t, err)
	defer b.Close()

	roundTrip := func(ctx context.Context, req *wire.Request) (*wire.Response, error) {
		out, err := b.RoundTrip(ctx, wire.MarshalRequest(req))
		if err != nil {
			return nil, err
		}

		return wire.UnmarshalResponse(out)
	}
	_, err = roundTrip(ctx, &wire.Request{Op: wire.OpOpen})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		cursors = map[uint64]bool{}
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := roundTrip(ctx, &wire.Request{Op: wire.OpExecute, SQL: "SELECT 1 UNION ALL SELECT 2", Count: 1})
			if !assert.NoError(t, err) || !assert.Nil(t, resp.Error) {
				return
			}
			assert.Len(t, resp.Rows, 1)
			mu.Lock()
			cursors[resp.Cursor] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, cursors, 16)

	resp, err := roundTrip(ctx, &wire.Request{Op: wire.OpExecute, SQL: "SELEC 1"})
	require.NoError(t, err)
	require.Equal(t, "42000", resp.Error.State)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = roundTrip(cancelled, &wire.Request{Op: wire.OpPing})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreparedQueryInBatches(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := openConn(e, nil, config.WithFetchSize(2))
	insertFruit(t, ctx, c, 5)

	s, err := c.Prepare(ctx, "SELECT id, name, price FROM fruit WHERE id >= ? ORDER BY id")
	require.NoError(t, err)
	require.NoError(t, s.Bind(1, 2, sqltypes.TypeBigInt))
	cur, err := s.Query(ctx)
	require.NoError(t, err)

	columns := cur.Columns()
	require.Len(t, columns, 3)
	require.Equal(t, sqltypes.TypeDecimal, columns[2].Code)

	var ids []int64
	for {
		ok, err := cur.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := cur.Column(1)
		require.NoError(t, err)
		ids = append(ids, id.(int64))
	}
	require.Equal(t, []int64{2, 3, 4, 5}, ids)
	_, err = cur.Next(ctx)
	require.True(t, sqlerr.Is(err, sqlerr.KindCursorExhausted), err)

	price := func(id int) decimal.Decimal {
		cur, err := c.Query(ctx, "SELECT price FROM fruit WHERE id = "+string(rune('0'+id)))
		require.NoError(t, err)
		defer cur.Close()
		ok, err := cur.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		v, err := cur.Column(1)
		require.NoError(t, err)

		return v.(decimal.Decimal)
	}
	require.True(t, decimal.RequireFromString("2.5").Equal(price(3)))
}

func TestScrollableCursor(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := openConn(e, nil, config.WithFetchSize(2), config.WithScrollable(true))
	insertFruit(t, ctx, c, 4)

	cur, err := c.Query(ctx, "SELECT id FROM fruit ORDER BY id")
	require.NoError(t, err)
	defer cur.Close()

	require.NoError(t, cur.Seek(4))
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := cur.Column(1)
	require.NoError(t, err)
	require.EqualValues(t, 4, v)

	require.NoError(t, cur.Seek(1))
	ok, err = cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	v, err = cur.Column(1)
	require.NoError(t, err)
	require.EqualValues(t, 1, v)
}

func TestLargeObjects(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := openConn(e, []Option{WithInlineLimit(4)})

	s, err := c.Prepare(ctx, "INSERT INTO fruit (id, name, notes, photo) VALUES (1, 'apple', ?, ?)")
	require.NoError(t, err)
	require.NoError(t, s.Bind(1, "crisp and sweet", sqltypes.TypeClob))
	require.NoError(t, s.Bind(2, []byte{1, 2, 3, 4, 5, 6}, sqltypes.TypeBlob))
	_, err = s.Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cur, err := c.Query(ctx, "SELECT notes, photo FROM fruit")
	require.NoError(t, err)
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	v, err := cur.Column(1)
	require.NoError(t, err)
	notes, ok := v.(*handle.Clob)
	require.True(t, ok, "%T", v)
	length, err := notes.Length()
	require.NoError(t, err)
	require.EqualValues(t, 15, length)
	sub, err := notes.Substring(ctx, 7, 3)
	require.NoError(t, err)
	require.Equal(t, "and", sub)

	v, err = cur.Column(2)
	require.NoError(t, err)
	photo, ok := v.(*handle.Blob)
	require.True(t, ok, "%T", v)
	b, err := photo.Bytes(ctx, 5, 10)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6}, b)
	require.NoError(t, cur.Close())
}

func TestTransactionsAndSavepoints(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := openConn(e, nil, config.WithAutoCommit(false))

	_, err := c.Exec(ctx, "INSERT INTO fruit (id, name) VALUES (1, 'apple')")
	require.NoError(t, err)
	sp, err := c.Savepoint(ctx, "")
	require.NoError(t, err)
	_, err = c.Exec(ctx, "INSERT INTO fruit (id, name) VALUES (2, 'pear')")
	require.NoError(t, err)
	require.NoError(t, c.RollbackTo(ctx, sp))
	named, err := c.Savepoint(ctx, "after apple")
	require.NoError(t, err)
	require.NoError(t, c.Release(ctx, named))
	require.NoError(t, c.Commit(ctx))

	other := openConn(e, nil)
	cur, err := other.Query(ctx, "SELECT count(*) FROM fruit")
	require.NoError(t, err)
	defer cur.Close()
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	n, err := cur.Column(1)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = c.Exec(ctx, "DELETE FROM fruit")
	require.NoError(t, err)
	require.NoError(t, c.Rollback(ctx))
}

func TestServerErrors(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	c := openConn(e, nil)

	_, err := c.Exec(ctx, "SELEC 1")
	require.True(t, sqlerr.Is(err, sqlerr.KindServer), err)
	require.Equal(t, "42000", sqlerr.StateOf(err))

	_, err = c.Exec(ctx, "INSERT INTO fruit (id, name) VALUES (1, 'apple')")
	require.NoError(t, err)
	_, err = c.Exec(ctx, "INSERT INTO fruit (id, name) VALUES (2, 'apple')")
	require.Equal(t, "23000", sqlerr.StateOf(err))

	_, err = c.Query(ctx, "SELECT * FROM vegetables")
	require.Equal(t, "42S02", sqlerr.StateOf(err))

	require.NoError(t, c.Ping(ctx))
}

// GRPCTarget serves a backend on an in-memory gRPC listener and returns the
// dial options reaching it.
func GRPCTarget(e fixenv.Env) []grpc.DialOption {
	f := func() (*fixenv.GenericResult[[]grpc.DialOption], error) {
		b, err := New(sf.Context(e), DSN(e))
		if err != nil {
			return nil, err
		}
		lis := bufconn.Listen(1 << 20)
		s := grpc.NewServer()
		grpctransport.Serve(s, b)
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			_ = s.Serve(lis)
		}()
		clean := func() {
			s.Stop()
			<-stopped
			_ = b.Close()
		}

		return fixenv.NewGenericResultWithCleanup([]grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, clean), nil
	}

	return fixenv.CacheResult(e, f)
}

func TestOverGRPC(t *testing.T) {
	e := fixenv.New(t)
	ctx := sf.Context(e)
	newTransport := grpctransport.Factory("passthrough:///sqlite", GRPCTarget(e)...)

	tr, err := newTransport(ctx)
	require.NoError(t, err)
	c, err := core.Open(ctx, tr, nil)
	require.NoError(t, err)
	defer c.Close()

	insertFruit(t, ctx, c, 3)
	cur, err := c.Query(ctx, "SELECT name FROM fruit ORDER BY id DESC")
	require.NoError(t, err)
	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := cur.Column(1)
	require.NoError(t, err)
	require.Equal(t, "fruit-c", v)
	require.NoError(t, cur.Close())
}
