// Package tx implements the transaction controller of a connection: the
// transaction state machine, the savepoint stack and isolation changes.
package tx

import (
	"context"
	"sync/atomic"

	"github.com/sqlkit/sqlcore/internal/stack"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/trace"
)

type State uint32

const (
	NoTransaction = State(iota)
	Active
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case NoTransaction:
		return "no_transaction"
	case Active:
		return "active"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Executor performs the server side of each transition.
type Executor interface {
	Begin(ctx context.Context, isolation Isolation) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
	SetIsolation(ctx context.Context, level Isolation) error
}

// Controller serializes every transaction transition, including its server
// round trip, under a single mutex.
type Controller struct {
	mu    xsync.Mutex
	reset atomic.Bool

	exec      Executor
	state     State
	isolation Isolation
	id        ID

	savepoints  []*Savepoint
	savepointID int64

	trace  *trace.SQL
	connID string
}

type Option func(c *Controller)

func WithTrace(t *trace.SQL, connID string) Option {
	return func(c *Controller) {
		c.trace = t
		c.connID = connID
	}
}

func New(exec Executor, isolation Isolation, opts ...Option) *Controller {
	c := &Controller{
		exec:      exec,
		isolation: isolation,
		trace:     &trace.SQL{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func (c *Controller) State() State {
	c.lock()
	defer c.unlock()

	return c.state
}

func (c *Controller) Isolation() Isolation {
	c.lock()
	defer c.unlock()

	return c.isolation
}

// ID returns the identifier of the active transaction or nil.
func (c *Controller) ID() Identifier {
	c.lock()
	defer c.unlock()

	if c.state != Active {
		return nil
	}

	return c.id
}

// Savepoints returns the depth of the savepoint stack.
func (c *Controller) Savepoints() int {
	c.lock()
	defer c.unlock()

	return len(c.savepoints)
}

func (c *Controller) Begin(ctx context.Context) error {
	c.lock()
	defer c.unlock()

	if c.state == Active {
		return xerrors.Kind(sqlerr.KindTransactionAlreadyActive, "transaction %s is active", c.id)
	}

	return c.begin(ctx, false)
}

// EnsureActive begins a transaction unless one is active. It reports whether
// a transaction was begun.
func (c *Controller) EnsureActive(ctx context.Context) (bool, error) {
	c.lock()
	defer c.unlock()

	if c.state == Active {
		return false, nil
	}
	if err := c.begin(ctx, true); err != nil {
		return false, err
	}

	return true, nil
}

func (c *Controller) begin(ctx context.Context, implicit bool) (finalErr error) {
	id := newID()
	onDone := trace.SQLOnTxBegin(c.trace, &ctx, stack.FunctionID(""), c.connID, implicit, int32(c.isolation))
	defer func() {
		onDone(string(id), finalErr)
	}()

	if err := c.exec.Begin(ctx, c.isolation); err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.state = Active
	c.id = id
	c.savepoints = nil

	return nil
}

func (c *Controller) Commit(ctx context.Context) (finalErr error) {
	c.lock()
	defer c.unlock()

	if c.state != Active {
		return xerrors.Kind(sqlerr.KindNoActiveTransaction, "commit without transaction")
	}
	onDone := trace.SQLOnTxCommit(c.trace, &ctx, stack.FunctionID(""), string(c.id))
	defer func() {
		onDone(finalErr)
	}()

	if err := c.exec.Commit(ctx); err != nil {
		// the transaction stays active: the caller decides between retry and rollback
		return xerrors.WithStackTrace(err)
	}
	c.end(Committed)

	return nil
}

func (c *Controller) Rollback(ctx context.Context) (finalErr error) {
	c.lock()
	defer c.unlock()

	if c.state != Active {
		return xerrors.Kind(sqlerr.KindNoActiveTransaction, "rollback without transaction")
	}
	onDone := trace.SQLOnTxRollback(c.trace, &ctx, stack.FunctionID(""), string(c.id))
	defer func() {
		onDone(finalErr)
	}()

	err := c.exec.Rollback(ctx)
	// the server discards a transaction whose rollback failed
	c.end(RolledBack)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}

func (c *Controller) end(to State) {
	c.state = to
	c.savepoints = nil
}

// Savepoint pushes a new savepoint. An empty name makes an unnamed savepoint
// identified by its numeric id.
func (c *Controller) Savepoint(ctx context.Context, name string) (_ *Savepoint, finalErr error) {
	c.lock()
	defer c.unlock()

	if c.state != Active {
		return nil, xerrors.Kind(sqlerr.KindNoActiveTransaction, "savepoint without transaction")
	}
	for _, sp := range c.savepoints {
		if name != "" && sp.name == name {
			return nil, xerrors.Kind(sqlerr.KindInvalidArgument, "savepoint %q already exists", name)
		}
	}
	c.savepointID++
	sp := &Savepoint{
		id:   c.savepointID,
		name: name,
		tx:   c.id,
	}
	onDone := trace.SQLOnTxSavepoint(c.trace, &ctx, stack.FunctionID(""), string(c.id), "savepoint", sp.ServerName())
	defer func() {
		onDone(finalErr)
	}()

	if err := c.exec.Savepoint(ctx, sp.ServerName()); err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	c.savepoints = append(c.savepoints, sp)

	return sp, nil
}

// RollbackTo rolls back to sp and pops sp with every savepoint set after it.
func (c *Controller) RollbackTo(ctx context.Context, sp *Savepoint) (finalErr error) {
	c.lock()
	defer c.unlock()

	i, err := c.lookup(sp)
	if err != nil {
		return err
	}
	onDone := trace.SQLOnTxSavepoint(c.trace, &ctx, stack.FunctionID(""), string(c.id), "rollback_to", sp.ServerName())
	defer func() {
		onDone(finalErr)
	}()

	if err := c.exec.RollbackTo(ctx, sp.ServerName()); err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.savepoints = c.savepoints[:i]

	return nil
}

// Release removes sp and every savepoint set after it without rolling back.
func (c *Controller) Release(ctx context.Context, sp *Savepoint) (finalErr error) {
	c.lock()
	defer c.unlock()

	i, err := c.lookup(sp)
	if err != nil {
		return err
	}
	onDone := trace.SQLOnTxSavepoint(c.trace, &ctx, stack.FunctionID(""), string(c.id), "release", sp.ServerName())
	defer func() {
		onDone(finalErr)
	}()

	if err := c.exec.Release(ctx, sp.ServerName()); err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.savepoints = c.savepoints[:i]

	return nil
}

func (c *Controller) lookup(sp *Savepoint) (int, error) {
	if c.state != Active {
		return -1, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindNoActiveTransaction, "no transaction for savepoint"),
			xerrors.WithSkipDepth(1),
		)
	}
	if sp == nil || sp.tx != c.id {
		return -1, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindUnknownSavepoint,
			"savepoint %v does not belong to transaction %s", sp, c.id,
		), xerrors.WithSkipDepth(1))
	}
	for i, s := range c.savepoints {
		if s == sp {
			return i, nil
		}
	}

	return -1, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindUnknownSavepoint,
		"savepoint %s was released or rolled back", sp,
	), xerrors.WithSkipDepth(1))
}

// SetIsolation changes the level used by following transactions. It fails
// while a transaction is active.
func (c *Controller) SetIsolation(ctx context.Context, level Isolation) error {
	if err := level.Validate(); err != nil {
		return err
	}

	c.lock()
	defer c.unlock()

	if c.state == Active {
		return xerrors.Kind(sqlerr.KindTransactionAlreadyActive,
			"isolation cannot change inside transaction %s", c.id,
		)
	}
	if level == c.isolation {
		return nil
	}
	if err := c.exec.SetIsolation(ctx, level); err != nil {
		return xerrors.WithStackTrace(err)
	}
	c.isolation = level

	return nil
}

// Reset forgets the transaction without any server round trip. It is used
// when the connection is gone.
func (c *Controller) Reset() {
	c.reset.Store(true)
	c.settle()
}

func (c *Controller) lock() {
	c.mu.Lock()
}

// unlock releases the controller and applies a Reset that arrived while it
// was held.
func (c *Controller) unlock() {
	c.mu.Unlock()
	if c.reset.Load() {
		c.settle()
	}
}

// settle rolls the active transaction back unless another holder of the
// controller is left to do it on unlock. It never waits for the mutex since
// Reset runs from inside transaction round trips.
func (c *Controller) settle() {
	if !c.mu.TryLock() {
		return
	}
	defer c.mu.Unlock()

	if c.state == Active {
		c.end(RolledBack)
	}
}
