package tx

import (
	"github.com/google/uuid"
)

var _ Identifier = ID("")

type (
	// Identifier names the transaction a savepoint was created in.
	Identifier interface {
		ID() string
	}
	ID string
)

func (id ID) ID() string {
	return string(id)
}

func newID() ID {
	return ID(uuid.NewString())
}
