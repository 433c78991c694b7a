package conn

import (
	"context"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/wire"
	"github.com/sqlkit/sqlcore/internal/xerrors"
)

// executor sends transaction control frames for the controller.
type executor struct {
	c *Conn
}

var _ tx.Executor = executor{}

func (e executor) send(ctx context.Context, req *wire.Request) error {
	if _, err := e.c.roundTrip(ctx, req, nil); err != nil {
		return xerrors.WithStackTrace(err, xerrors.WithSkipDepth(1))
	}

	return nil
}

func (e executor) Begin(ctx context.Context, isolation tx.Isolation) error {
	return e.send(ctx, &wire.Request{Op: wire.OpBegin, Isolation: int32(isolation)})
}

func (e executor) Commit(ctx context.Context) error {
	return e.send(ctx, &wire.Request{Op: wire.OpCommit})
}

func (e executor) Rollback(ctx context.Context) error {
	return e.send(ctx, &wire.Request{Op: wire.OpRollback})
}

func (e executor) Savepoint(ctx context.Context, name string) error {
	return e.send(ctx, &wire.Request{Op: wire.OpSavepoint, Savepoint: name})
}

func (e executor) RollbackTo(ctx context.Context, name string) error {
	return e.send(ctx, &wire.Request{Op: wire.OpRollbackTo, Savepoint: name})
}

func (e executor) Release(ctx context.Context, name string) error {
	return e.send(ctx, &wire.Request{Op: wire.OpRelease, Savepoint: name})
}

func (e executor) SetIsolation(ctx context.Context, level tx.Isolation) error {
	return e.send(ctx, &wire.Request{Op: wire.OpSetIsolation, Isolation: int32(level)})
}

func (c *Conn) Begin(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.Begin(ctx)
}

func (c *Conn) Commit(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.Commit(ctx)
}

func (c *Conn) Rollback(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.Rollback(ctx)
}

// Savepoint marks a savepoint in the active transaction. An empty name makes
// an unnamed savepoint.
func (c *Conn) Savepoint(ctx context.Context, name string) (*tx.Savepoint, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	return c.tx.Savepoint(ctx, name)
}

func (c *Conn) RollbackTo(ctx context.Context, sp *tx.Savepoint) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.RollbackTo(ctx, sp)
}

func (c *Conn) Release(ctx context.Context, sp *tx.Savepoint) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.Release(ctx, sp)
}

func (c *Conn) SetIsolation(ctx context.Context, level tx.Isolation) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	return c.tx.SetIsolation(ctx, level)
}

func (c *Conn) Isolation() tx.Isolation {
	return c.tx.Isolation()
}

func (c *Conn) TxState() tx.State {
	return c.tx.State()
}

// TxID returns the identifier of the active transaction, nil outside one.
func (c *Conn) TxID() tx.Identifier {
	return c.tx.ID()
}

func (c *Conn) AutoCommit() bool {
	return c.autoCommit.Load()
}

// SetAutoCommit switches the auto-commit mode. Enabling it while a
// transaction is active commits that transaction.
func (c *Conn) SetAutoCommit(ctx context.Context, on bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if on && !c.autoCommit.Load() && c.tx.State() == tx.Active {
		if err := c.tx.Commit(ctx); err != nil {
			return xerrors.WithStackTrace(err)
		}
	}
	c.autoCommit.Store(on)

	return nil
}

// prepareExecution begins the implicit transaction when auto-commit is off.
// It reports whether the server should commit the execution itself.
func (c *Conn) prepareExecution(ctx context.Context) (autoCommit bool, _ error) {
	if c.autoCommit.Load() {
		return c.tx.State() != tx.Active, nil
	}
	if _, err := c.tx.EnsureActive(ctx); err != nil {
		return false, xerrors.WithStackTrace(err)
	}

	return false, nil
}
