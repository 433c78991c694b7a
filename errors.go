package sqlcore

import (
	"github.com/sqlkit/sqlcore/sqlerr"
)

type Kind = sqlerr.Kind

// IsKind reports whether err carries a *sqlerr.Error of kind.
func IsKind(err error, kind Kind) bool {
	return sqlerr.Is(err, kind)
}

// IsTransient reports whether retrying the failed operation may succeed.
func IsTransient(err error) bool {
	return sqlerr.IsTransient(err)
}
