package log

import (
	"context"

	"github.com/sqlkit/sqlcore/trace"
)

// SQL makes trace.SQL with logging events from details
func SQL(l Logger, d trace.Detailer, opts ...Option) (t trace.SQL) {
	return internalSQL(newBridge(l, opts...), d)
}

//nolint:funlen
func internalSQL(l *bridge, d trace.Detailer) (t trace.SQL) {
	t.OnConnOpen = func(info trace.SQLConnOpenStartInfo) func(trace.SQLConnOpenDoneInfo) {
		if d.Details()&trace.SQLConnEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "conn", "open")
		connID := info.ConnID
		l.Log(ctx, "start", String("conn_id", connID))
		start := l.clock.Now()

		return func(info trace.SQLConnOpenDoneInfo) {
			if info.Error == nil {
				l.Log(WithLevel(ctx, DEBUG), "opened",
					String("conn_id", connID),
					String("session", info.Session),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					String("conn_id", connID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnConnClose = func(info trace.SQLConnCloseStartInfo) func(trace.SQLConnCloseDoneInfo) {
		if d.Details()&trace.SQLConnEvents == 0 {
			return nil
		}
		ctx := with(context.Background(), TRACE, "sqlcore", "conn", "close")
		connID := info.ConnID
		l.Log(ctx, "start", String("conn_id", connID))
		start := l.clock.Now()

		return func(info trace.SQLConnCloseDoneInfo) {
			if info.Error == nil {
				l.Log(WithLevel(ctx, DEBUG), "closed",
					String("conn_id", connID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, WARN), "failed",
					String("conn_id", connID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnConnPing = func(info trace.SQLConnPingStartInfo) func(trace.SQLConnPingDoneInfo) {
		if d.Details()&trace.SQLConnEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "conn", "ping")
		connID := info.ConnID
		l.Log(ctx, "start", String("conn_id", connID))
		start := l.clock.Now()

		return func(info trace.SQLConnPingDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					String("conn_id", connID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, WARN), "failed",
					String("conn_id", connID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnConnCancel = func(info trace.SQLConnCancelInfo) {
		if d.Details()&trace.SQLConnEvents == 0 {
			return
		}
		ctx := with(context.Background(), DEBUG, "sqlcore", "conn", "cancel")
		l.Log(ctx, "cancel requested",
			String("conn_id", info.ConnID),
			Bool("busy", info.Busy),
		)
	}
	t.OnConnLost = func(info trace.SQLConnLostInfo) {
		if d.Details()&trace.SQLConnEvents == 0 {
			return
		}
		ctx := with(context.Background(), ERROR, "sqlcore", "conn", "lost")
		l.Log(ctx, "connection lost",
			String("conn_id", info.ConnID),
			Error(info.Error),
		)
	}
	t.OnStmtPrepare = func(info trace.SQLStmtPrepareStartInfo) func(trace.SQLStmtPrepareDoneInfo) {
		if d.Details()&trace.SQLStmtEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "stmt", "prepare")
		connID := info.ConnID
		query := info.Query
		l.Log(ctx, "start",
			appendFieldByCondition(l.logQuery,
				String("query", query),
				String("conn_id", connID),
			)...,
		)
		start := l.clock.Now()

		return func(info trace.SQLStmtPrepareDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					String("conn_id", connID),
					Int("params", info.Params),
					Int("columns", info.Columns),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					appendFieldByCondition(l.logQuery,
						String("query", query),
						String("conn_id", connID),
						Error(info.Error),
						latencyField(l.clock, start),
					)...,
				)
			}
		}
	}
	t.OnStmtExecute = func(info trace.SQLStmtExecuteStartInfo) func(trace.SQLStmtExecuteDoneInfo) {
		if d.Details()&trace.SQLStmtEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "stmt", "execute")
		connID := info.ConnID
		query := info.Query
		l.Log(ctx, "start",
			appendFieldByCondition(l.logQuery,
				String("query", query),
				String("conn_id", connID),
				Bool("cursor", info.Cursor),
			)...,
		)
		start := l.clock.Now()

		return func(info trace.SQLStmtExecuteDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					String("conn_id", connID),
					Int64("update_count", info.UpdateCount),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					appendFieldByCondition(l.logQuery,
						String("query", query),
						String("conn_id", connID),
						Error(info.Error),
						latencyField(l.clock, start),
					)...,
				)
			}
		}
	}
	t.OnStmtClose = func(info trace.SQLStmtCloseStartInfo) func(trace.SQLStmtCloseDoneInfo) {
		if d.Details()&trace.SQLStmtEvents == 0 {
			return nil
		}
		ctx := with(context.Background(), TRACE, "sqlcore", "stmt", "close")
		connID := info.ConnID
		l.Log(ctx, "start", String("conn_id", connID))
		start := l.clock.Now()

		return func(info trace.SQLStmtCloseDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					String("conn_id", connID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, WARN), "failed",
					String("conn_id", connID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnCursorFetch = func(info trace.SQLCursorFetchStartInfo) func(trace.SQLCursorFetchDoneInfo) {
		if d.Details()&trace.SQLCursorEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "cursor", "fetch")
		from := info.From
		l.Log(ctx, "start",
			Int64("from", from),
			Int("count", info.Count),
		)
		start := l.clock.Now()

		return func(info trace.SQLCursorFetchDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					Int64("from", from),
					Int("rows", info.Rows),
					Bool("done", info.Done),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					Int64("from", from),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnCursorClose = func(info trace.SQLCursorCloseStartInfo) func(trace.SQLCursorCloseDoneInfo) {
		if d.Details()&trace.SQLCursorEvents == 0 {
			return nil
		}
		ctx := with(context.Background(), TRACE, "sqlcore", "cursor", "close")
		l.Log(ctx, "start")
		start := l.clock.Now()

		return func(info trace.SQLCursorCloseDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, WARN), "failed",
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnTxBegin = func(info trace.SQLTxBeginStartInfo) func(trace.SQLTxBeginDoneInfo) {
		if d.Details()&trace.SQLTxEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "tx", "begin")
		connID := info.ConnID
		l.Log(ctx, "start",
			String("conn_id", connID),
			Bool("implicit", info.Implicit),
			Int("isolation", int(info.Isolation)),
		)
		start := l.clock.Now()

		return func(info trace.SQLTxBeginDoneInfo) {
			if info.Error == nil {
				l.Log(WithLevel(ctx, DEBUG), "begin",
					String("conn_id", connID),
					String("tx_id", info.TxID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					String("conn_id", connID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnTxCommit = func(info trace.SQLTxCommitStartInfo) func(trace.SQLTxCommitDoneInfo) {
		if d.Details()&trace.SQLTxEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "tx", "commit")
		txID := info.TxID
		l.Log(ctx, "start", String("tx_id", txID))
		start := l.clock.Now()

		return func(info trace.SQLTxCommitDoneInfo) {
			if info.Error == nil {
				l.Log(WithLevel(ctx, DEBUG), "committed",
					String("tx_id", txID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					String("tx_id", txID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnTxRollback = func(info trace.SQLTxRollbackStartInfo) func(trace.SQLTxRollbackDoneInfo) {
		if d.Details()&trace.SQLTxEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "tx", "rollback")
		txID := info.TxID
		l.Log(ctx, "start", String("tx_id", txID))
		start := l.clock.Now()

		return func(info trace.SQLTxRollbackDoneInfo) {
			if info.Error == nil {
				l.Log(WithLevel(ctx, DEBUG), "rolled back",
					String("tx_id", txID),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					String("tx_id", txID),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnTxSavepoint = func(info trace.SQLTxSavepointStartInfo) func(trace.SQLTxSavepointDoneInfo) {
		if d.Details()&trace.SQLTxEvents == 0 {
			return nil
		}
		ctx := with(*info.Context, TRACE, "sqlcore", "tx", info.Action)
		txID := info.TxID
		savepoint := info.Savepoint
		l.Log(ctx, "start",
			String("tx_id", txID),
			String("savepoint", savepoint),
		)
		start := l.clock.Now()

		return func(info trace.SQLTxSavepointDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "done",
					String("tx_id", txID),
					String("savepoint", savepoint),
					latencyField(l.clock, start),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "failed",
					String("tx_id", txID),
					String("savepoint", savepoint),
					Error(info.Error),
					latencyField(l.clock, start),
				)
			}
		}
	}
	t.OnWarning = func(info trace.SQLWarningInfo) {
		if d.Details()&trace.SQLWarningEvents == 0 {
			return
		}
		ctx := with(context.Background(), WARN, "sqlcore", "warning")
		l.Log(ctx, info.Reason,
			String("conn_id", info.ConnID),
			String("sql_state", info.SQLState),
		)
	}

	return t
}
