package sqlcore

import (
	"context"
	"database/sql"

	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/internal/xsql"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/transport"
)

// Connector returns a database/sql connector opening one transport per
// connection:
//
//	c, err := sqlcore.Connector(newTransport, props)
//	db := sql.OpenDB(c)
func Connector(newTransport transport.Factory, props map[string]string, opts ...config.Option,
) (*xsql.Connector, error) {
	c, err := xsql.Open(newTransport,
		xsql.WithProperties(props),
		xsql.WithConfig(opts...),
	)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	return c, nil
}

// Raw calls f with the core connection behind a pooled database/sql
// connection. c must not be used after f returns.
func Raw(ctx context.Context, db *sql.DB, f func(c *Conn) error) error {
	cc, err := db.Conn(ctx)
	if err != nil {
		return xerrors.WithStackTrace(err)
	}
	defer func() {
		_ = cc.Close()
	}()

	return cc.Raw(func(driverConn any) error {
		c, ok := driverConn.(*xsql.Conn)
		if !ok {
			return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidArgument,
				"%T is not a sqlcore connection", driverConn,
			))
		}

		return f(c.Core())
	})
}
