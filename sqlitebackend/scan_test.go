package sqlitebackend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountParameters(t *testing.T) {
	for _, tt := range []struct {
		query string
		count int
	}{
		{query: "SELECT 1", count: 0},
		{query: "SELECT * FROM t WHERE a = ? AND b = ?", count: 2},
		{query: "SELECT '?', \"?\", `?`, [?] FROM t WHERE a = ?", count: 1},
		{query: "SELECT 'it''s ?' WHERE a = ?", count: 1},
		{query: "SELECT ? -- ?\n, ? /* ? */", count: 2},
		{query: "SELECT ?3, ?", count: 4},
		{query: "SELECT :a, @b, $c, :a", count: 3},
	} {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.count, countParameters(tt.query))
		})
	}
}

func TestProducesRows(t *testing.T) {
	for _, tt := range []struct {
		query string
		rows  bool
	}{
		{query: "SELECT 1", rows: true},
		{query: "  (select 1)", rows: true},
		{query: "-- leading\nWITH x AS (SELECT 1) SELECT * FROM x", rows: true},
		{query: "VALUES (1), (2)", rows: true},
		{query: "PRAGMA table_info(t)", rows: true},
		{query: "INSERT INTO t VALUES (1)", rows: false},
		{query: "INSERT INTO t VALUES (1) RETURNING id", rows: true},
		{query: "UPDATE t SET name = 'RETURNING'", rows: false},
		{query: "CREATE TABLE selects (id INTEGER)", rows: false},
	} {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.rows, producesRows(tt.query))
		})
	}
}

func TestLobRead(t *testing.T) {
	text := &lob{data: []byte("привет, world"), character: true}
	require.EqualValues(t, 13, text.length())
	require.Equal(t, "вет", string(text.read(3, 3)))
	require.Empty(t, text.read(20, 3))

	bin := &lob{data: []byte{1, 2, 3, 4}}
	require.EqualValues(t, 4, bin.length())
	require.Equal(t, []byte{3, 4}, bin.read(2, 10))
	require.Empty(t, bin.read(4, 1))
}
