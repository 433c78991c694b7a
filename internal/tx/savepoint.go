package tx

import (
	"strconv"
)

// Savepoint is an immutable marker inside one transaction.
type Savepoint struct {
	id   int64
	name string
	tx   ID
}

// ID is the numeric identifier assigned by the controller. It is unique
// within the lifetime of the controller.
func (sp *Savepoint) ID() int64 {
	return sp.id
}

// Name is empty for unnamed savepoints.
func (sp *Savepoint) Name() string {
	return sp.name
}

func (sp *Savepoint) Named() bool {
	return sp.name != ""
}

// Tx identifies the transaction the savepoint belongs to.
func (sp *Savepoint) Tx() Identifier {
	return sp.tx
}

// ServerName is the identifier sent to the server.
func (sp *Savepoint) ServerName() string {
	if sp.name != "" {
		return sp.name
	}

	return "SP_" + strconv.FormatInt(sp.id, 10)
}

func (sp *Savepoint) String() string {
	return sp.ServerName()
}
