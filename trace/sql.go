package trace

import (
	"context"
)

type (
	// SQL specified trace of driver core activity: connections, statements,
	// cursors and transactions.
	// gtrace:gen
	SQL struct {
		OnConnOpen   func(SQLConnOpenStartInfo) func(SQLConnOpenDoneInfo)
		OnConnClose  func(SQLConnCloseStartInfo) func(SQLConnCloseDoneInfo)
		OnConnPing   func(SQLConnPingStartInfo) func(SQLConnPingDoneInfo)
		OnConnCancel func(SQLConnCancelInfo)
		OnConnLost   func(SQLConnLostInfo)

		OnStmtPrepare func(SQLStmtPrepareStartInfo) func(SQLStmtPrepareDoneInfo)
		OnStmtExecute func(SQLStmtExecuteStartInfo) func(SQLStmtExecuteDoneInfo)
		OnStmtClose   func(SQLStmtCloseStartInfo) func(SQLStmtCloseDoneInfo)

		OnCursorFetch func(SQLCursorFetchStartInfo) func(SQLCursorFetchDoneInfo)
		OnCursorClose func(SQLCursorCloseStartInfo) func(SQLCursorCloseDoneInfo)

		OnTxBegin     func(SQLTxBeginStartInfo) func(SQLTxBeginDoneInfo)
		OnTxCommit    func(SQLTxCommitStartInfo) func(SQLTxCommitDoneInfo)
		OnTxRollback  func(SQLTxRollbackStartInfo) func(SQLTxRollbackDoneInfo)
		OnTxSavepoint func(SQLTxSavepointStartInfo) func(SQLTxSavepointDoneInfo)

		OnWarning func(SQLWarningInfo)
	}

	SQLConnOpenStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		ConnID  string
	}
	SQLConnOpenDoneInfo struct {
		Session string
		Error   error
	}
	SQLConnCloseStartInfo struct {
		Call   call
		ConnID string
	}
	SQLConnCloseDoneInfo struct {
		Error error
	}
	SQLConnPingStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		ConnID  string
	}
	SQLConnPingDoneInfo struct {
		Error error
	}
	SQLConnCancelInfo struct {
		ConnID string
		// Busy reports whether an exchange was in flight.
		Busy bool
	}
	SQLConnLostInfo struct {
		ConnID string
		Error  error
	}
	SQLStmtPrepareStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		ConnID  string
		Query   string
	}
	SQLStmtPrepareDoneInfo struct {
		Params  int
		Columns int
		Error   error
	}
	SQLStmtExecuteStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		ConnID  string
		Query   string
		// Cursor is true when the execution is expected to return a cursor.
		Cursor bool
	}
	SQLStmtExecuteDoneInfo struct {
		// UpdateCount is -1 when a cursor was returned.
		UpdateCount int64
		Error       error
	}
	SQLStmtCloseStartInfo struct {
		Call   call
		ConnID string
		Query  string
	}
	SQLStmtCloseDoneInfo struct {
		Error error
	}
	SQLCursorFetchStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		From    int64
		Count   int
	}
	SQLCursorFetchDoneInfo struct {
		Rows  int
		Done  bool
		Error error
	}
	SQLCursorCloseStartInfo struct {
		Call call
	}
	SQLCursorCloseDoneInfo struct {
		Error error
	}
	SQLTxBeginStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context   *context.Context
		Call      call
		ConnID    string
		Implicit  bool
		Isolation int32
	}
	SQLTxBeginDoneInfo struct {
		TxID  string
		Error error
	}
	SQLTxCommitStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		TxID    string
	}
	SQLTxCommitDoneInfo struct {
		Error error
	}
	SQLTxRollbackStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		TxID    string
	}
	SQLTxRollbackDoneInfo struct {
		Error error
	}
	SQLTxSavepointStartInfo struct {
		// Context make available context in trace callback function.
		// Pointer to context provide replacement of context in trace callback function.
		// Warning: concurrent access to pointer on client side must be excluded.
		// Safe replacement of context are provided only inside callback function
		Context *context.Context
		Call    call
		TxID    string
		// Action is one of "savepoint", "rollback_to" or "release".
		Action    string
		Savepoint string
	}
	SQLTxSavepointDoneInfo struct {
		Error error
	}
	SQLWarningInfo struct {
		ConnID   string
		SQLState string
		Reason   string
	}
)
