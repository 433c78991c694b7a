package tx

import (
	"strconv"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
)

// Isolation is a transaction isolation level. Values match the published
// JDBC constants.
type Isolation int32

const (
	None            = Isolation(0)
	ReadUncommitted = Isolation(1)
	ReadCommitted   = Isolation(2)
	RepeatableRead  = Isolation(4)
	Serializable    = Isolation(8)
)

func (i Isolation) String() string {
	switch i {
	case None:
		return "none"
	case ReadUncommitted:
		return "read_uncommitted"
	case ReadCommitted:
		return "read_committed"
	case RepeatableRead:
		return "repeatable_read"
	case Serializable:
		return "serializable"
	default:
		return "isolation_" + strconv.Itoa(int(i))
	}
}

func (i Isolation) Validate() error {
	switch i {
	case None, ReadUncommitted, ReadCommitted, RepeatableRead, Serializable:
		return nil
	default:
		return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidArgument,
			"unknown isolation level %d", int32(i),
		), xerrors.WithSkipDepth(1))
	}
}
