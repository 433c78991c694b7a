package trace

import (
	"context"
)

// sqlComposeOptions is a holder of options
type sqlComposeOptions struct {
	panicCallback func(e interface{})
}

// SQLComposeOption specified SQL compose option
type SQLComposeOption func(o *sqlComposeOptions)

// WithSQLPanicCallback specified behavior on panic
func WithSQLPanicCallback(cb func(e interface{})) SQLComposeOption {
	return func(o *sqlComposeOptions) {
		o.panicCallback = cb
	}
}

func composeHook[S, D any](o *sqlComposeOptions, h1, h2 func(S) func(D)) func(S) func(D) {
	if h1 == nil && h2 == nil {
		return nil
	}

	return func(s S) func(D) {
		if o.panicCallback != nil {
			defer func() {
				if e := recover(); e != nil {
					o.panicCallback(e)
				}
			}()
		}
		var r, r1 func(D)
		if h1 != nil {
			r = h1(s)
		}
		if h2 != nil {
			r1 = h2(s)
		}

		return func(d D) {
			if o.panicCallback != nil {
				defer func() {
					if e := recover(); e != nil {
						o.panicCallback(e)
					}
				}()
			}
			if r != nil {
				r(d)
			}
			if r1 != nil {
				r1(d)
			}
		}
	}
}

func composeEvent[I any](o *sqlComposeOptions, h1, h2 func(I)) func(I) {
	if h1 == nil && h2 == nil {
		return nil
	}

	return func(i I) {
		if o.panicCallback != nil {
			defer func() {
				if e := recover(); e != nil {
					o.panicCallback(e)
				}
			}()
		}
		if h1 != nil {
			h1(i)
		}
		if h2 != nil {
			h2(i)
		}
	}
}

// Compose returns a new SQL which has functional fields composed both from t and x.
func (t *SQL) Compose(x *SQL, opts ...SQLComposeOption) *SQL {
	var ret SQL
	options := &sqlComposeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	ret.OnConnOpen = composeHook(options, t.OnConnOpen, x.OnConnOpen)
	ret.OnConnClose = composeHook(options, t.OnConnClose, x.OnConnClose)
	ret.OnConnPing = composeHook(options, t.OnConnPing, x.OnConnPing)
	ret.OnConnCancel = composeEvent(options, t.OnConnCancel, x.OnConnCancel)
	ret.OnConnLost = composeEvent(options, t.OnConnLost, x.OnConnLost)
	ret.OnStmtPrepare = composeHook(options, t.OnStmtPrepare, x.OnStmtPrepare)
	ret.OnStmtExecute = composeHook(options, t.OnStmtExecute, x.OnStmtExecute)
	ret.OnStmtClose = composeHook(options, t.OnStmtClose, x.OnStmtClose)
	ret.OnCursorFetch = composeHook(options, t.OnCursorFetch, x.OnCursorFetch)
	ret.OnCursorClose = composeHook(options, t.OnCursorClose, x.OnCursorClose)
	ret.OnTxBegin = composeHook(options, t.OnTxBegin, x.OnTxBegin)
	ret.OnTxCommit = composeHook(options, t.OnTxCommit, x.OnTxCommit)
	ret.OnTxRollback = composeHook(options, t.OnTxRollback, x.OnTxRollback)
	ret.OnTxSavepoint = composeHook(options, t.OnTxSavepoint, x.OnTxSavepoint)
	ret.OnWarning = composeEvent(options, t.OnWarning, x.OnWarning)

	return &ret
}

func start[S, D any](fn func(S) func(D), s S) func(D) {
	if fn == nil {
		return func(D) {}
	}
	res := fn(s)
	if res == nil {
		return func(D) {}
	}

	return res
}

func SQLOnConnOpen(t *SQL, c *context.Context, call call, connID string) func(session string, _ error) {
	var p SQLConnOpenStartInfo
	p.Context = c
	p.Call = call
	p.ConnID = connID
	res := start(t.OnConnOpen, p)

	return func(session string, e error) {
		var p SQLConnOpenDoneInfo
		p.Session = session
		p.Error = e
		res(p)
	}
}

func SQLOnConnClose(t *SQL, call call, connID string) func(error) {
	var p SQLConnCloseStartInfo
	p.Call = call
	p.ConnID = connID
	res := start(t.OnConnClose, p)

	return func(e error) {
		var p SQLConnCloseDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnConnPing(t *SQL, c *context.Context, call call, connID string) func(error) {
	var p SQLConnPingStartInfo
	p.Context = c
	p.Call = call
	p.ConnID = connID
	res := start(t.OnConnPing, p)

	return func(e error) {
		var p SQLConnPingDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnConnCancel(t *SQL, connID string, busy bool) {
	if t.OnConnCancel == nil {
		return
	}
	t.OnConnCancel(SQLConnCancelInfo{ConnID: connID, Busy: busy})
}

func SQLOnConnLost(t *SQL, connID string, err error) {
	if t.OnConnLost == nil {
		return
	}
	t.OnConnLost(SQLConnLostInfo{ConnID: connID, Error: err})
}

func SQLOnStmtPrepare(t *SQL, c *context.Context, call call, connID, query string,
) func(params, columns int, _ error) {
	var p SQLStmtPrepareStartInfo
	p.Context = c
	p.Call = call
	p.ConnID = connID
	p.Query = query
	res := start(t.OnStmtPrepare, p)

	return func(params, columns int, e error) {
		var p SQLStmtPrepareDoneInfo
		p.Params = params
		p.Columns = columns
		p.Error = e
		res(p)
	}
}

func SQLOnStmtExecute(t *SQL, c *context.Context, call call, connID, query string, cursor bool,
) func(updateCount int64, _ error) {
	var p SQLStmtExecuteStartInfo
	p.Context = c
	p.Call = call
	p.ConnID = connID
	p.Query = query
	p.Cursor = cursor
	res := start(t.OnStmtExecute, p)

	return func(updateCount int64, e error) {
		var p SQLStmtExecuteDoneInfo
		p.UpdateCount = updateCount
		p.Error = e
		res(p)
	}
}

func SQLOnStmtClose(t *SQL, call call, connID, query string) func(error) {
	var p SQLStmtCloseStartInfo
	p.Call = call
	p.ConnID = connID
	p.Query = query
	res := start(t.OnStmtClose, p)

	return func(e error) {
		var p SQLStmtCloseDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnCursorFetch(t *SQL, c *context.Context, call call, from int64, count int,
) func(rows int, done bool, _ error) {
	var p SQLCursorFetchStartInfo
	p.Context = c
	p.Call = call
	p.From = from
	p.Count = count
	res := start(t.OnCursorFetch, p)

	return func(rows int, done bool, e error) {
		var p SQLCursorFetchDoneInfo
		p.Rows = rows
		p.Done = done
		p.Error = e
		res(p)
	}
}

func SQLOnCursorClose(t *SQL, call call) func(error) {
	var p SQLCursorCloseStartInfo
	p.Call = call
	res := start(t.OnCursorClose, p)

	return func(e error) {
		var p SQLCursorCloseDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnTxBegin(t *SQL, c *context.Context, call call, connID string, implicit bool, isolation int32,
) func(txID string, _ error) {
	var p SQLTxBeginStartInfo
	p.Context = c
	p.Call = call
	p.ConnID = connID
	p.Implicit = implicit
	p.Isolation = isolation
	res := start(t.OnTxBegin, p)

	return func(txID string, e error) {
		var p SQLTxBeginDoneInfo
		p.TxID = txID
		p.Error = e
		res(p)
	}
}

func SQLOnTxCommit(t *SQL, c *context.Context, call call, txID string) func(error) {
	var p SQLTxCommitStartInfo
	p.Context = c
	p.Call = call
	p.TxID = txID
	res := start(t.OnTxCommit, p)

	return func(e error) {
		var p SQLTxCommitDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnTxRollback(t *SQL, c *context.Context, call call, txID string) func(error) {
	var p SQLTxRollbackStartInfo
	p.Context = c
	p.Call = call
	p.TxID = txID
	res := start(t.OnTxRollback, p)

	return func(e error) {
		var p SQLTxRollbackDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnTxSavepoint(t *SQL, c *context.Context, call call, txID, action, savepoint string) func(error) {
	var p SQLTxSavepointStartInfo
	p.Context = c
	p.Call = call
	p.TxID = txID
	p.Action = action
	p.Savepoint = savepoint
	res := start(t.OnTxSavepoint, p)

	return func(e error) {
		var p SQLTxSavepointDoneInfo
		p.Error = e
		res(p)
	}
}

func SQLOnWarning(t *SQL, connID, state, reason string) {
	if t.OnWarning == nil {
		return
	}
	t.OnWarning(SQLWarningInfo{ConnID: connID, SQLState: state, Reason: reason})
}
