// Package conn implements the connection and statement execution engine: one
// logical session over a transport with at most one exchange in flight.
package conn

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/stack"
	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/trace"
	"github.com/sqlkit/sqlcore/transport"
)

type Conn struct {
	id        string
	session   string
	config    *config.Config // ro access
	transport transport.Transport
	guard     *lifetime.Guard
	gate      *semaphore.Weighted
	tx        *tx.Controller
	lastUsage xsync.LastUsage
	warnings  sqlerr.Chain

	autoCommit atomic.Bool
	closed     atomic.Bool

	mu       xsync.Mutex
	inflight *exchange
}

// exchange is the round trip currently in flight.
type exchange struct {
	cancel context.CancelCauseFunc
	stmt   *Stmt
}

// Open starts a session over t. The connection owns t from now on, also
// when Open fails.
func Open(ctx context.Context, t transport.Transport, props map[string]string, opts ...config.Option,
) (_ *Conn, finalErr error) {
	cfg := config.New(opts...)
	c := &Conn{
		id:        uuid.NewString(),
		config:    cfg,
		transport: t,
		guard:     lifetime.New("connection"),
		gate:      semaphore.NewWeighted(1),
		lastUsage: xsync.NewLastUsage(xsync.WithClock(cfg.Clock())),
	}
	c.autoCommit.Store(cfg.AutoCommit())
	c.tx = tx.New(executor{c}, cfg.Isolation(), tx.WithTrace(cfg.Trace(), c.id))

	onDone := trace.SQLOnConnOpen(cfg.Trace(), &ctx, stack.FunctionID(""), c.id)
	defer func() {
		onDone(c.session, finalErr)
	}()

	if err := cfg.Isolation().Validate(); err != nil {
		_ = t.Close()

		return nil, xerrors.WithStackTrace(err)
	}
	resp, err := c.roundTrip(ctx, &wire.Request{Op: wire.OpOpen, Properties: props}, nil)
	if err != nil {
		if c.closed.CompareAndSwap(false, true) {
			c.guard.Close()
			_ = t.Close()
		}

		return nil, xerrors.WithStackTrace(err)
	}
	c.session = resp.Session

	return c, nil
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Config() *config.Config {
	return c.config
}

func (c *Conn) State() State {
	if c.closed.Load() {
		return Closed
	}
	busy := xsync.WithLock(&c.mu, func() bool {
		return c.inflight != nil
	})
	if busy {
		return Busy
	}

	return Idle
}

// LastUsage returns the end of the last exchange, or now while one is in
// flight.
func (c *Conn) LastUsage() time.Time {
	return c.lastUsage.Get()
}

// Warnings drains the server warnings reported outside statements.
func (c *Conn) Warnings() []sqlerr.Warning {
	return c.warnings.Drain()
}

func (c *Conn) checkOpen() error {
	if c.closed.Load() {
		return xerrors.WithStackTrace(sqlerr.New(sqlerr.KindConnectionAlreadyClosed,
			"connection is closed",
		), xerrors.WithSkipDepth(1))
	}

	return nil
}

func (c *Conn) Ping(ctx context.Context) (finalErr error) {
	onDone := trace.SQLOnConnPing(c.config.Trace(), &ctx, stack.FunctionID(""), c.id)
	defer func() {
		onDone(finalErr)
	}()

	if _, err := c.roundTrip(ctx, &wire.Request{Op: wire.OpPing}, nil); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}

// Cancel interrupts the exchange in flight, if any, and marks the statement
// it runs for as aborted. The interrupted call fails with Cancelled.
func (c *Conn) Cancel() {
	trace.SQLOnConnCancel(c.config.Trace(), c.id, c.interrupt())
}

func (c *Conn) interrupt() bool {
	ex := xsync.WithLock(&c.mu, func() *exchange {
		return c.inflight
	})
	if ex == nil {
		return false
	}
	if ex.stmt != nil {
		ex.stmt.state.Store(uint32(Aborted))
	}
	ex.cancel(errCancelled)

	return true
}

// Close ends the session. Statements, cursors and handles of the connection
// become closed. Repeated calls return nil.
func (c *Conn) Close() (finalErr error) {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	onDone := trace.SQLOnConnClose(c.config.Trace(), stack.FunctionID(""), c.id)
	defer func() {
		onDone(finalErr)
	}()

	c.interrupt()
	// a transaction operation holds the controller while it waits for the
	// gate, so the controller is reset before queueing on the gate
	c.tx.Reset()
	ctx := context.Background()
	_ = c.gate.Acquire(ctx, 1)
	defer c.gate.Release(1)

	c.guard.Close()

	var closeErr error
	if b, err := c.transport.RoundTrip(ctx, wire.MarshalRequest(&wire.Request{
		Op:      wire.OpClose,
		Session: c.session,
	})); err != nil {
		closeErr = err
	} else if resp, err := wire.UnmarshalResponse(b); err != nil {
		closeErr = err
	} else if resp.Error != nil {
		closeErr = serverError(resp.Error)
	}

	return xerrors.WithStackTrace(xerrors.Join(closeErr, c.transport.Close()))
}

// lose closes the connection after a transport failure.
func (c *Conn) lose(err error) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	trace.SQLOnConnLost(c.config.Trace(), c.id, err)
	c.tx.Reset()
	c.guard.Close()
	_ = c.transport.Close()
}

// roundTrip performs one exchange on behalf of s. Server warnings go to s,
// or to the connection when s is nil.
func (c *Conn) roundTrip(ctx context.Context, req *wire.Request, s *Stmt) (*wire.Response, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.gate.Release(1)
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	c.mu.WithLock(func() {
		c.inflight = &exchange{cancel: cancel, stmt: s}
	})
	defer func() {
		c.mu.WithLock(func() {
			c.inflight = nil
		})
		cancel(nil)
	}()
	stop := c.lastUsage.Start()
	defer stop()

	req.Session = c.session
	b, err := c.transport.RoundTrip(ctx, wire.MarshalRequest(req))
	if err != nil {
		err, lost := exchangeError(ctx, req.Op, err)
		if lost {
			c.lose(err)
		}

		return nil, xerrors.WithStackTrace(err)
	}
	resp, err := wire.UnmarshalResponse(b)
	if err != nil {
		err := sqlerr.Newf(sqlerr.KindConnectionLost, "%s: malformed response", req.Op).WithCause(err)
		c.lose(err)

		return nil, xerrors.WithStackTrace(err)
	}

	chain := &c.warnings
	if s != nil {
		chain = &s.warnings
	}
	for _, w := range resp.Warnings {
		chain.Add(serverWarning(w))
		trace.SQLOnWarning(c.config.Trace(), c.id, w.State, w.Message)
	}
	if resp.Error != nil {
		return nil, xerrors.WithStackTrace(serverError(resp.Error))
	}

	return resp, nil
}

func (c *Conn) acquire(ctx context.Context) error {
	if c.config.BusyMode() == config.Strict {
		if !c.gate.TryAcquire(1) {
			return xerrors.WithStackTrace(sqlerr.New(sqlerr.KindConnectionBusy,
				"another operation is in progress",
			), xerrors.WithSkipDepth(1))
		}

		return nil
	}
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return xerrors.WithStackTrace(sqlerr.New(sqlerr.KindCancelled,
			"waiting for the connection",
		).WithCause(err), xerrors.WithSkipDepth(1))
	}

	return nil
}
