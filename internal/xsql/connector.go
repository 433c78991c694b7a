// Package xsql adapts the connection core to database/sql.
package xsql

import (
	"context"
	"database/sql/driver"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sqlkit/sqlcore/config"
	core "github.com/sqlkit/sqlcore/internal/conn"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsync"
	"github.com/sqlkit/sqlcore/sqltypes"
	"github.com/sqlkit/sqlcore/transport"
)

var (
	_ io.Closer        = (*Connector)(nil)
	_ driver.Connector = (*Connector)(nil)
	_ driver.Driver    = (*Connector)(nil)
)

type Connector struct {
	newTransport transport.Factory
	props        map[string]string
	options      []config.Option
	onClose      []func(*Connector)

	clock         clockwork.Clock
	typeMap       sqltypes.TypeMap
	idleThreshold time.Duration
	conns         xsync.Map[string, *Conn]
	done          chan struct{}
}

func Open(newTransport transport.Factory, opts ...Option) (*Connector, error) {
	c := &Connector{
		newTransport: newTransport,
		props:        map[string]string{},
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			if err := opt.Apply(c); err != nil {
				return nil, xerrors.WithStackTrace(err)
			}
		}
	}
	cfg := config.New(c.options...)
	c.clock = cfg.Clock()
	c.typeMap = cfg.TypeMap()
	c.idleThreshold = cfg.IdleThreshold()

	if c.idleThreshold > 0 {
		go c.closeIdle()
	}

	return c, nil
}

func (c *Connector) closeIdle() {
	for {
		idleThresholdTimer := c.clock.NewTimer(c.idleThreshold)
		select {
		case <-c.done:
			idleThresholdTimer.Stop()

			return
		case <-idleThresholdTimer.Chan():
			c.conns.Range(func(_ string, cc *Conn) bool {
				if c.clock.Since(cc.LastUsage()) > c.idleThreshold {
					_ = cc.Close()
				}

				return true
			})
		}
	}
}

func (c *Connector) Open(name string) (driver.Conn, error) {
	return nil, xerrors.WithStackTrace(driver.ErrSkip)
}

func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	select {
	case <-c.done:
		return nil, xerrors.WithStackTrace(errAlreadyClosed)
	default:
	}
	t, err := c.newTransport(ctx)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	cc, err := core.Open(ctx, t, c.props, c.options...)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}
	conn := &Conn{
		connector: c,
		cc:        cc,
	}
	c.conns.Set(cc.ID(), conn)

	return conn, nil
}

func (c *Connector) Driver() driver.Driver {
	return c
}

// Conns returns the number of open connections.
func (c *Connector) Conns() int {
	return c.conns.Len()
}

// Close stops the idle check and closes every connection still open.
func (c *Connector) Close() error {
	select {
	case <-c.done:
		return xerrors.WithStackTrace(errAlreadyClosed)
	default:
		close(c.done)
	}

	var errs []error
	c.conns.Range(func(_ string, cc *Conn) bool {
		if err := cc.Close(); err != nil {
			errs = append(errs, err)
		}

		return true
	})
	for _, onClose := range c.onClose {
		onClose(c)
	}
	if len(errs) > 0 {
		return xerrors.WithStackTrace(xerrors.Join(errs...))
	}

	return nil
}
