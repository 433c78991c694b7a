package wire

import (
	"fmt"
	"sort"

	"github.com/sqlkit/sqlcore/sqltypes"
)

type Op uint8

const (
	OpUnknown = Op(iota)
	OpOpen
	OpClose
	OpPing
	OpPrepare
	OpExecute
	OpFetch
	OpCloseCursor
	OpCloseStmt
	OpBegin
	OpCommit
	OpRollback
	OpSavepoint
	OpRollbackTo
	OpRelease
	OpSetIsolation
	OpReadLob
)

var opNames = [...]string{
	OpUnknown:      "unknown",
	OpOpen:         "open",
	OpClose:        "close",
	OpPing:         "ping",
	OpPrepare:      "prepare",
	OpExecute:      "execute",
	OpFetch:        "fetch",
	OpCloseCursor:  "close_cursor",
	OpCloseStmt:    "close_stmt",
	OpBegin:        "begin",
	OpCommit:       "commit",
	OpRollback:     "rollback",
	OpSavepoint:    "savepoint",
	OpRollbackTo:   "rollback_to",
	OpRelease:      "release",
	OpSetIsolation: "set_isolation",
	OpReadLob:      "read_lob",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}

	return fmt.Sprintf("op_%d", op)
}

// Request is a single client request. Only the fields relevant to Op are set.
type Request struct {
	Op         Op
	Session    string
	Properties map[string]string

	// SQL is set by Prepare and by direct Execute.
	SQL string
	// Stmt is the server handle of a prepared statement.
	Stmt   uint64
	Params []sqltypes.Raw

	Cursor     uint64
	From       int64
	Count      int32
	Scrollable bool
	AutoCommit bool
	MaxRows    int64

	Isolation int32
	Savepoint string

	Lob    uint64
	Offset int64
	Length int32
}

func MarshalRequest(r *Request) []byte {
	var e encoder
	e.varint(1, uint64(r.Op))
	e.string(2, r.Session)
	names := make([]string, 0, len(r.Properties))
	for name := range r.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := r.Properties[name]
		e.message(3, func(e *encoder) {
			e.string(1, name)
			e.string(2, value)
		})
	}
	e.string(4, r.SQL)
	e.varint(5, r.Stmt)
	appendValues(&e, 6, r.Params)
	e.varint(7, r.Cursor)
	e.int(8, r.From)
	e.int(9, int64(r.Count))
	e.bool(10, r.Scrollable)
	e.bool(11, r.AutoCommit)
	e.int(12, r.MaxRows)
	e.int(13, int64(r.Isolation))
	e.string(14, r.Savepoint)
	e.varint(15, r.Lob)
	e.int(16, r.Offset)
	e.int(17, int64(r.Length))

	return e.b
}

func UnmarshalRequest(b []byte) (*Request, error) {
	r := &Request{}
	err := decode(b, func(f field) error {
		switch f.num {
		case 1:
			r.Op = Op(f.value)
		case 2:
			r.Session = string(f.bytes)
		case 3:
			var name, value string
			if err := decode(f.bytes, func(f field) error {
				switch f.num {
				case 1:
					name = string(f.bytes)
				case 2:
					value = string(f.bytes)
				}

				return nil
			}); err != nil {
				return err
			}
			if r.Properties == nil {
				r.Properties = make(map[string]string)
			}
			r.Properties[name] = value
		case 4:
			r.SQL = string(f.bytes)
		case 5:
			r.Stmt = f.value
		case 6:
			v, err := decodeValue(f.bytes)
			if err != nil {
				return err
			}
			r.Params = append(r.Params, v)
		case 7:
			r.Cursor = f.value
		case 8:
			r.From = f.int()
		case 9:
			r.Count = int32(f.int())
		case 10:
			r.Scrollable = f.bool()
		case 11:
			r.AutoCommit = f.bool()
		case 12:
			r.MaxRows = f.int()
		case 13:
			r.Isolation = int32(f.int())
		case 14:
			r.Savepoint = string(f.bytes)
		case 15:
			r.Lob = f.value
		case 16:
			r.Offset = f.int()
		case 17:
			r.Length = int32(f.int())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if r.Op == OpUnknown {
		return nil, fmt.Errorf("%w: request without op", errMalformed)
	}

	return r, nil
}
