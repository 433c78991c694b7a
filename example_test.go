package sqlcore_test

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlkit/sqlcore"
	"github.com/sqlkit/sqlcore/config"
	"github.com/sqlkit/sqlcore/sqlitebackend"
	"github.com/sqlkit/sqlcore/sqltypes"
)

func Example_statement() {
	ctx := context.TODO()
	backend, err := sqlitebackend.New(ctx, "file:example.db")
	if err != nil {
		panic(err)
	}
	c, err := sqlcore.Open(ctx, backend, nil, config.WithFetchSize(50))
	if err != nil {
		panic(err)
	}
	defer c.Close()

	s, err := c.Prepare(ctx, "SELECT id, name FROM users WHERE age > ?")
	if err != nil {
		panic(err)
	}
	defer s.Close()
	if err = s.Bind(1, 21, sqltypes.TypeInteger); err != nil {
		panic(err)
	}
	cur, err := s.Query(ctx)
	if err != nil {
		panic(err)
	}
	defer cur.Close()
	for {
		ok, err := cur.Next(ctx)
		if err != nil {
			panic(err)
		}
		if !ok {
			break
		}
		name, _ := cur.Column(2)
		fmt.Println(name)
	}
}

func Example_databaseSQL() {
	connector, err := sqlcore.Connector(sqlitebackend.Factory("file:example.db"), nil)
	if err != nil {
		panic(err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	var count int
	if err = db.QueryRowContext(context.TODO(), "SELECT count(*) FROM users").Scan(&count); err != nil {
		panic(err)
	}
	fmt.Println(count)
}
