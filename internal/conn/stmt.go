package conn

import (
	"context"
	"sync/atomic"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/cursor"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/params"
	"github.com/sqlkit/sqlcore/internal/stack"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/trace"
)

// limits shape the results of one execution.
type limits struct {
	fetchSize    int
	maxFieldSize int
	maxRows      int64
	scrollable   bool
}

func limitsOf(cfg *config.Config) limits {
	return limits{
		fetchSize:    cfg.FetchSize(),
		maxFieldSize: cfg.MaxFieldSize(),
		maxRows:      cfg.MaxRows(),
		scrollable:   cfg.Scrollable(),
	}
}

// Stmt is a prepared statement. Binding and execution of one statement are
// serialized; different statements of a connection share its gate.
type Stmt struct {
	conn     *Conn
	guard    *lifetime.Guard
	query    string
	handle   uint64
	binder   *params.Binder
	columns  []cursor.Column
	warnings sqlerr.Chain
	state    atomic.Uint32

	mu     xsync.Mutex
	limits limits
	cursor *cursor.Cursor
}

func (c *Conn) Prepare(ctx context.Context, query string) (_ *Stmt, finalErr error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var s *Stmt
	onDone := trace.SQLOnStmtPrepare(c.config.Trace(), &ctx, stack.FunctionID(""), c.id, query)
	defer func() {
		if s != nil {
			onDone(s.binder.Metadata().Count(), len(s.columns), nil)
		} else {
			onDone(0, 0, finalErr)
		}
	}()

	resp, err := c.roundTrip(ctx, &wire.Request{Op: wire.OpPrepare, SQL: query}, nil)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	s = &Stmt{
		conn:    c,
		guard:   c.guard.Attach("statement"),
		query:   query,
		handle:  resp.Stmt,
		binder:  params.NewBinder(params.FromWire(resp.Params)),
		columns: cursor.ColumnsFromWire(resp.Columns),
		limits:  limitsOf(c.config),
	}

	return s, nil
}

// Exec executes query directly and returns its update count.
func (c *Conn) Exec(ctx context.Context, query string) (int64, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	resp, err := c.execute(ctx, nil, limitsOf(c.config), &wire.Request{SQL: query}, query, false)
	if err != nil {
		return 0, xerrors.WithStackTrace(err)
	}
	if resp.Cursor != 0 {
		if err := (fetcher{c: c}).CloseCursor(ctx, resp.Cursor); err != nil {
			return 0, xerrors.WithStackTrace(err)
		}
	}

	return resp.UpdateCount, nil
}

// Query executes query directly. The cursor belongs to the connection.
func (c *Conn) Query(ctx context.Context, query string) (*cursor.Cursor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	l := limitsOf(c.config)
	resp, err := c.execute(ctx, nil, l, &wire.Request{SQL: query}, query, true)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	cur, err := c.openCursor(c.guard, nil, l, resp, nil)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	return cur, nil
}

func (c *Conn) execute(ctx context.Context, s *Stmt, l limits, req *wire.Request, query string, wantCursor bool,
) (_ *wire.Response, finalErr error) {
	var updateCount int64
	onDone := trace.SQLOnStmtExecute(c.config.Trace(), &ctx, stack.FunctionID(""), c.id, query, wantCursor)
	defer func() {
		onDone(updateCount, finalErr)
	}()

	autoCommit, err := c.prepareExecution(ctx)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	req.Op = wire.OpExecute
	req.AutoCommit = autoCommit
	req.Scrollable = l.scrollable
	req.Count = int32(l.fetchSize)
	req.MaxRows = l.maxRows
	resp, err := c.roundTrip(ctx, req, s)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	updateCount = resp.UpdateCount

	return resp, nil
}

func (s *Stmt) SQL() string {
	return s.query
}

func (s *Stmt) State() StmtState {
	return StmtState(s.state.Load())
}

func (s *Stmt) ParameterMetadata() *params.Metadata {
	return s.binder.Metadata()
}

// Columns returns the result columns reported at preparation.
func (s *Stmt) Columns() []cursor.Column {
	return append([]cursor.Column(nil), s.columns...)
}

// Warnings drains the server warnings of the statement and its cursors.
func (s *Stmt) Warnings() []sqlerr.Warning {
	return s.warnings.Drain()
}

func (s *Stmt) Bind(i int, v any, declared sqltypes.Code) error {
	if err := s.guard.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.binder.Bind(i, v, declared)
}

func (s *Stmt) BindNull(i int, code sqltypes.Code) error {
	if err := s.guard.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.binder.BindNull(i, code)
}

func (s *Stmt) ClearParameters() error {
	if err := s.guard.Err(); err != nil {
		return err
	}
	s.mu.WithLock(func() {
		s.binder.Clear()
	})

	return nil
}

// SetFetchSize overrides the connection fetch size for later executions.
func (s *Stmt) SetFetchSize(n int) {
	s.mu.WithLock(func() {
		if n > 0 {
			s.limits.fetchSize = n
		}
	})
}

func (s *Stmt) SetMaxFieldSize(n int) {
	s.mu.WithLock(func() {
		if n >= 0 {
			s.limits.maxFieldSize = n
		}
	})
}

func (s *Stmt) SetMaxRows(n int64) {
	s.mu.WithLock(func() {
		if n >= 0 {
			s.limits.maxRows = n
		}
	})
}

func (s *Stmt) SetScrollable(scrollable bool) {
	s.mu.WithLock(func() {
		s.limits.scrollable = scrollable
	})
}

// run executes the statement with the staged parameters. The previous cursor
// of the statement is closed first.
func (s *Stmt) run(ctx context.Context, wantCursor bool) (*wire.Response, error) {
	if err := s.guard.Err(); err != nil {
		return nil, err
	}
	if s.cursor != nil {
		if err := s.cursor.Close(); err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		s.cursor = nil
	}
	values, err := s.binder.Encode()
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	s.state.Store(uint32(Executing))
	defer s.state.CompareAndSwap(uint32(Executing), uint32(Ready))

	return s.conn.execute(ctx, s, s.limits, &wire.Request{Stmt: s.handle, Params: values}, s.query, wantCursor)
}

// Exec executes the statement and returns its update count, -1 when the
// statement produced rows.
func (s *Stmt) Exec(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.run(ctx, false)
	if err != nil {
		return 0, xerrors.WithStackTrace(err)
	}
	if resp.Cursor != 0 {
		if err := (fetcher{c: s.conn, stmt: s}).CloseCursor(ctx, resp.Cursor); err != nil {
			return 0, xerrors.WithStackTrace(err)
		}
	}

	return resp.UpdateCount, nil
}

// Query executes the statement and opens a cursor over its rows. A statement
// without rows yields an empty cursor.
func (s *Stmt) Query(ctx context.Context) (*cursor.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.run(ctx, true)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	cur, err := s.conn.openCursor(s.guard, s, s.limits, resp, s.columns)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	s.cursor = cur

	return cur, nil
}

// Close frees the statement and its cursor. Repeated calls are no-ops.
func (s *Stmt) Close() (finalErr error) {
	// the server cursor is released while the statement guard still lets
	// the cursor reach the connection
	cursorErr := xsync.WithLock(&s.mu, func() error {
		if s.cursor == nil {
			return nil
		}
		err := s.cursor.Close()
		s.cursor = nil

		return err
	})
	if !s.guard.Free() {
		return nil
	}
	onDone := trace.SQLOnStmtClose(s.conn.config.Trace(), stack.FunctionID(""), s.conn.id, s.query)
	defer func() {
		onDone(finalErr)
	}()

	if s.handle == 0 || s.conn.closed.Load() {
		return xerrors.WithStackTrace(cursorErr)
	}
	_, err := s.conn.roundTrip(context.Background(), &wire.Request{Op: wire.OpCloseStmt, Stmt: s.handle}, nil)
	if err = xerrors.Join(cursorErr, err); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}
