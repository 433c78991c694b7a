package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/log"
	"github.com/sqlkit/sqlcore/trace"
)

func TestDefaults(t *testing.T) {
	c := New()
	require.Equal(t, Block, c.BusyMode())
	require.Equal(t, DefaultFetchSize, c.FetchSize())
	require.Zero(t, c.MaxFieldSize())
	require.Zero(t, c.MaxRows())
	require.False(t, c.Scrollable())
	require.True(t, c.AutoCommit())
	require.Equal(t, tx.ReadCommitted, c.Isolation())
	require.NotNil(t, c.Trace())
	require.NotNil(t, c.Clock())
	require.Nil(t, c.TypeMap())
	require.Zero(t, c.IdleThreshold())
}

func TestOptions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	for _, tt := range []struct {
		name  string
		opts  []Option
		check func(t *testing.T, c *Config)
	}{
		{
			name: "BusyMode",
			opts: []Option{WithBusyMode(Strict)},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, Strict, c.BusyMode())
				require.Equal(t, "strict", c.BusyMode().String())
			},
		},
		{
			name: "FetchSize",
			opts: []Option{WithFetchSize(10)},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, 10, c.FetchSize())
			},
		},
		{
			name: "NonPositiveFetchSize",
			opts: []Option{WithFetchSize(10), WithFetchSize(-1)},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, DefaultFetchSize, c.FetchSize())
			},
		},
		{
			name: "MaxFieldSize",
			opts: []Option{WithMaxFieldSize(16), WithMaxRows(3)},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, 16, c.MaxFieldSize())
				require.EqualValues(t, 3, c.MaxRows())
			},
		},
		{
			name: "Transactions",
			opts: []Option{WithAutoCommit(false), WithIsolation(tx.Serializable)},
			check: func(t *testing.T, c *Config) {
				require.False(t, c.AutoCommit())
				require.Equal(t, tx.Serializable, c.Isolation())
			},
		},
		{
			name: "IdleThreshold",
			opts: []Option{WithIdleThreshold(time.Minute), WithIdleThreshold(-time.Second)},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, time.Minute, c.IdleThreshold())
			},
		},
		{
			name: "Clock",
			opts: []Option{WithClock(clock), WithClock(nil), nil},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, clock, c.Clock())
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, New(tt.opts...))
		})
	}
}

func TestTraceComposition(t *testing.T) {
	var (
		events []string
		buf    bytes.Buffer
	)
	c := New(
		WithTrace(&trace.SQL{
			OnWarning: func(info trace.SQLWarningInfo) {
				events = append(events, "first:"+info.SQLState)
			},
		}),
		WithTrace(&trace.SQL{
			OnWarning: func(info trace.SQLWarningInfo) {
				events = append(events, "second:"+info.SQLState)
			},
		}),
		WithLogger(log.Default(&buf, log.WithMinLevel(log.TRACE)), trace.SQLWarningEvents),
	)
	trace.SQLOnWarning(c.Trace(), "c1", "01004", "truncated")
	require.Equal(t, []string{"first:01004", "second:01004"}, events)
	require.Contains(t, buf.String(), "truncated")
}
