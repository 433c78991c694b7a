package isolation

import (
	"database/sql"
	"database/sql/driver"

	"github.com/sqlkit/sqlcore/internal/tx"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

// ToCore maps driver transaction options to an isolation level of the core.
// ok is false for sql.LevelDefault: the connection keeps its level.
// Read-only transactions are not supported.
func ToCore(opts driver.TxOptions) (_ tx.Isolation, ok bool, _ error) {
	level := sql.IsolationLevel(opts.Isolation)
	if opts.ReadOnly {
		return tx.None, false, xerrors.WithStackTrace(sqlerr.New(sqlerr.KindUnsupported,
			"read-only transactions are not supported",
		))
	}
	switch level {
	case sql.LevelDefault:
		return tx.None, false, nil
	case sql.LevelReadUncommitted:
		return tx.ReadUncommitted, true, nil
	case sql.LevelReadCommitted:
		return tx.ReadCommitted, true, nil
	case sql.LevelRepeatableRead:
		return tx.RepeatableRead, true, nil
	case sql.LevelSerializable:
		return tx.Serializable, true, nil
	default:
		return tx.None, false, xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindUnsupported,
			"unsupported isolation level %s", nameIsolationLevel(level),
		))
	}
}

// FromCore maps a level of the core back to database/sql.
func FromCore(level tx.Isolation) sql.IsolationLevel {
	switch level {
	case tx.ReadUncommitted:
		return sql.LevelReadUncommitted
	case tx.ReadCommitted:
		return sql.LevelReadCommitted
	case tx.RepeatableRead:
		return sql.LevelRepeatableRead
	case tx.Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

func nameIsolationLevel(x sql.IsolationLevel) string {
	if int(x) < len(isolationLevelName) {
		return isolationLevelName[x]
	}

	return "unknown_isolation"
}

var isolationLevelName = [...]string{
	sql.LevelDefault:         "default",
	sql.LevelReadUncommitted: "read_uncommitted",
	sql.LevelReadCommitted:   "read_committed",
	sql.LevelWriteCommitted:  "write_committed",
	sql.LevelRepeatableRead:  "repeatable_read",
	sql.LevelSnapshot:        "snapshot",
	sql.LevelSerializable:    "serializable",
	sql.LevelLinearizable:    "linearizable",
}
