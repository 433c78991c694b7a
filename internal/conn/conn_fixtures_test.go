package conn

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rekby/fixenv"
	"github.com/rekby/fixenv/sf"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/mock"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// fakeServer answers requests from memory. Statements starting with SELECT
// produce a cursor over rows.
type fakeServer struct {
	mu         sync.Mutex
	ops        []wire.Op
	statements map[uint64]string
	columns    []wire.ColumnMeta
	params     []wire.ParamMeta
	rows       [][]sqltypes.Raw
	lobs       map[uint64][]byte
	autoCommit []bool
	values     []sqltypes.Raw
	warnings   []wire.ServerError
	fail       map[wire.Op]*wire.ServerError

	// intercept replaces the answer of the given operation.
	intercept map[wire.Op]func(ctx context.Context) (*wire.Response, error)
}

func (s *fakeServer) Ops() []wire.Op {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]wire.Op(nil), s.ops...)
}

func (s *fakeServer) handle(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	s.mu.Lock()
	s.ops = append(s.ops, req.Op)
	intercept := s.intercept[req.Op]
	s.mu.Unlock()
	if intercept != nil {
		return intercept(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if se := s.fail[req.Op]; se != nil {
		return &wire.Response{Error: se}, nil
	}
	switch req.Op {
	case wire.OpOpen:
		return &wire.Response{Session: "session-1"}, nil
	case wire.OpPrepare:
		id := uint64(len(s.statements) + 1)
		s.statements[id] = req.SQL

		return &wire.Response{Stmt: id, Params: s.params, Columns: s.columns}, nil
	case wire.OpExecute:
		s.autoCommit = append(s.autoCommit, req.AutoCommit)
		s.values = req.Params
		query := req.SQL
		if req.Stmt != 0 {
			query = s.statements[req.Stmt]
		}
		if !strings.HasPrefix(strings.ToUpper(query), "SELECT") {
			return &wire.Response{UpdateCount: 1, Warnings: s.warnings}, nil
		}
		rows, done := s.page(1, int(req.Count))

		return &wire.Response{
			Columns:     s.columns,
			UpdateCount: -1,
			Cursor:      9,
			Rows:        rows,
			Done:        done,
			Warnings:    s.warnings,
		}, nil
	case wire.OpFetch:
		rows, done := s.page(req.From, int(req.Count))

		return &wire.Response{Cursor: req.Cursor, From: req.From, Rows: rows, Done: done}, nil
	case wire.OpReadLob:
		b := s.lobs[req.Lob]
		end := req.Offset + int64(req.Length)
		if end > int64(len(b)) {
			end = int64(len(b))
		}

		return &wire.Response{Data: b[req.Offset:end]}, nil
	default:
		return &wire.Response{}, nil
	}
}

func (s *fakeServer) page(from int64, count int) ([][]sqltypes.Raw, bool) {
	start := int(from - 1)
	if start >= len(s.rows) {
		return nil, true
	}
	end := start + count
	if end >= len(s.rows) {
		return s.rows[start:], true
	}

	return s.rows[start:end], false
}

func intRows(t testing.TB, n int) [][]sqltypes.Raw {
	rows := make([][]sqltypes.Raw, n)
	for i := range rows {
		r, err := sqltypes.EncodeRaw(sqltypes.TypeInteger, int32(i+1))
		require.NoError(t, err)
		rows[i] = []sqltypes.Raw{r}
	}

	return rows
}

var intColumns = []wire.ColumnMeta{
	{Name: "id", Code: sqltypes.TypeInteger, TypeName: "INTEGER"},
}

func FakeServer(e fixenv.Env) *fakeServer {
	f := func() (*fixenv.GenericResult[*fakeServer], error) {
		return fixenv.NewGenericResult(&fakeServer{
			statements: map[uint64]string{},
			lobs:       map[uint64][]byte{},
			fail:       map[wire.Op]*wire.ServerError{},
			intercept:  map[wire.Op]func(ctx context.Context) (*wire.Response, error){},
			columns:    intColumns,
		}), nil
	}

	return fixenv.CacheResult(e, f)
}

func TransportMock(e fixenv.Env) *mock.MockTransport {
	f := func() (*fixenv.GenericResult[*mock.MockTransport], error) {
		ctrl := gomock.NewController(e.T().(testing.TB))
		t := mock.NewMockTransport(ctrl)
		server := FakeServer(e)
		t.EXPECT().RoundTrip(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, b []byte) ([]byte, error) {
				req, err := wire.UnmarshalRequest(b)
				if err != nil {
					return nil, err
				}
				resp, err := server.handle(ctx, req)
				if err != nil {
					return nil, err
				}

				return wire.MarshalResponse(resp), nil
			},
		).AnyTimes()
		t.EXPECT().Close().Return(nil).AnyTimes()

		return fixenv.NewGenericResult(t), nil
	}

	return fixenv.CacheResult(e, f)
}

// ConnOverMock opens a connection with the default configuration.
func ConnOverMock(e fixenv.Env) *Conn {
	return openOverMock(e)
}

func openOverMock(e fixenv.Env, opts ...config.Option) *Conn {
	c, err := Open(sf.Context(e), TransportMock(e), map[string]string{"user": "test"}, opts...)
	if err != nil {
		e.T().Fatalf("open: %v", err)
	}
	e.T().Cleanup(func() {
		_ = c.Close()
	})

	return c
}
