// Package sqlitebackend serves the driver wire protocol from a SQLite
// database. A Backend holds one session on one database connection and
// implements transport.Transport, so a core connection can run on it
// in-process or behind grpctransport.Serve.
package sqlitebackend

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/log"
	"github.com/sqlkit/sqlcore/transport"
)

var _ transport.Transport = (*Backend)(nil)

type Backend struct {
	db   *sqlx.DB
	conn *sqlx.Conn

	inlineLimit int
	logger      log.Logger

	mu      xsync.Mutex
	session string
	lastID  uint64
	stmts   map[uint64]*statement
	cursors map[uint64]*resultSet
	lobs    map[uint64]*lob
	inTx    bool
}

type statement struct {
	query  string
	stmt   *sqlx.Stmt
	params int
}

// New opens dsn with the sqlite3 driver and pins one connection of it for
// the session.
func New(ctx context.Context, dsn string, opts ...Option) (*Backend, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	conn, err := db.Connx(ctx)
	if err != nil {
		_ = db.Close()

		return nil, xerrors.WithStackTrace(err)
	}
	b := &Backend{
		db:          db,
		conn:        conn,
		inlineLimit: defaultInlineLimit,
		stmts:       map[uint64]*statement{},
		cursors:     map[uint64]*resultSet{},
		lobs:        map[uint64]*lob{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b, nil
}

// Factory opens a fresh Backend on dsn for every connection.
func Factory(dsn string, opts ...Option) transport.Factory {
	return func(ctx context.Context) (transport.Transport, error) {
		return New(ctx, dsn, opts...)
	}
}

// DB returns the underlying database, e.g. for schema setup in tests.
func (b *Backend) DB() *sqlx.DB {
	return b.db
}

func (b *Backend) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	req, err := wire.UnmarshalRequest(request)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	var (
		resp     *wire.Response
		serveErr error
	)
	b.mu.WithLock(func() {
		resp, serveErr = b.serve(ctx, req)
		if serveErr == nil {
			b.log(ctx, log.DEBUG, "request served",
				log.Stringer("op", req.Op),
			)

			return
		}
		if xerrors.IsContextError(serveErr) {
			return
		}
		b.log(ctx, log.WARN, "request failed",
			log.Stringer("op", req.Op),
			log.Error(serveErr),
		)
		resp, serveErr = &wire.Response{Error: toServerError(serveErr)}, nil
	})
	if serveErr != nil {
		return nil, xerrors.WithStackTrace(serveErr)
	}

	return wire.MarshalResponse(resp), nil
}

func (b *Backend) log(ctx context.Context, lvl log.Level, msg string, fields ...log.Field) {
	if b.logger == nil {
		return
	}
	b.logger.Log(log.WithLevel(ctx, lvl), msg, append(fields, log.String("session", b.session))...)
}

func (b *Backend) nextID() uint64 {
	b.lastID++

	return b.lastID
}

func (b *Backend) serve(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	switch req.Op {
	case wire.OpOpen:
		b.session = uuid.NewString()

		return &wire.Response{Session: b.session}, nil
	case wire.OpClose:
		return &wire.Response{}, b.endSession(ctx)
	case wire.OpPing:
		return &wire.Response{}, b.conn.PingContext(ctx)
	case wire.OpPrepare:
		return b.prepare(ctx, req)
	case wire.OpExecute:
		return b.execute(ctx, req)
	case wire.OpFetch:
		rs, ok := b.cursors[req.Cursor]
		if !ok {
			return nil, errUnknownCursor(req.Cursor)
		}

		return rs.page(req.From, int(req.Count)), nil
	case wire.OpCloseCursor:
		delete(b.cursors, req.Cursor)

		return &wire.Response{}, nil
	case wire.OpCloseStmt:
		s, ok := b.stmts[req.Stmt]
		if !ok {
			return nil, errUnknownStatement(req.Stmt)
		}
		delete(b.stmts, req.Stmt)

		return &wire.Response{}, s.stmt.Close()
	case wire.OpBegin:
		if err := b.setIsolation(ctx, tx.Isolation(req.Isolation)); err != nil {
			return nil, err
		}
		if err := b.exec(ctx, "BEGIN"); err != nil {
			return nil, err
		}
		b.inTx = true

		return &wire.Response{}, nil
	case wire.OpCommit, wire.OpRollback:
		stmt := "COMMIT"
		if req.Op == wire.OpRollback {
			stmt = "ROLLBACK"
		}
		if err := b.exec(ctx, stmt); err != nil {
			return nil, err
		}
		b.inTx = false

		return &wire.Response{}, nil
	case wire.OpSavepoint:
		return &wire.Response{}, b.exec(ctx, "SAVEPOINT "+quoteIdent(req.Savepoint))
	case wire.OpRollbackTo:
		return &wire.Response{}, b.exec(ctx, "ROLLBACK TO SAVEPOINT "+quoteIdent(req.Savepoint))
	case wire.OpRelease:
		return &wire.Response{}, b.exec(ctx, "RELEASE SAVEPOINT "+quoteIdent(req.Savepoint))
	case wire.OpSetIsolation:
		return &wire.Response{}, b.setIsolation(ctx, tx.Isolation(req.Isolation))
	case wire.OpReadLob:
		l, ok := b.lobs[req.Lob]
		if !ok {
			return nil, errUnknownLob(req.Lob)
		}

		return &wire.Response{Data: l.read(req.Offset, int(req.Length))}, nil
	default:
		return nil, errorf("0A000", "unsupported operation %s", req.Op)
	}
}

func (b *Backend) exec(ctx context.Context, query string) error {
	_, err := b.conn.ExecContext(ctx, query)

	return err
}

// setIsolation maps the requested level onto SQLite, which only tells
// read-uncommitted from serializable. Any other level runs serializable.
func (b *Backend) setIsolation(ctx context.Context, level tx.Isolation) error {
	readUncommitted := 0
	if level == tx.ReadUncommitted {
		readUncommitted = 1
	}

	return b.exec(ctx, "PRAGMA read_uncommitted = "+strconv.Itoa(readUncommitted))
}

// endSession releases everything the session holds and rolls back an open
// transaction.
func (b *Backend) endSession(ctx context.Context) error {
	var errs []error
	for id, s := range b.stmts {
		errs = append(errs, s.stmt.Close())
		delete(b.stmts, id)
	}
	clear(b.cursors)
	clear(b.lobs)
	if b.inTx {
		errs = append(errs, b.exec(ctx, "ROLLBACK"))
		b.inTx = false
	}
	b.session = ""

	return xerrors.Join(errs...)
}

// Close releases the pinned connection and the database.
func (b *Backend) Close() error {
	return xsync.WithLock(&b.mu, func() error {
		return xerrors.WithStackTrace(xerrors.Join(
			b.endSession(context.Background()),
			b.conn.Close(),
			b.db.Close(),
		))
	})
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
