package sqlerr

import "strings"

// Category groups errors the way the JDBC exception hierarchy does, without
// the hierarchy: one value per SQLException subclass.
type Category uint8

const (
	CategoryNonTransient = Category(iota)
	CategoryNonTransientConnection
	CategoryTransient
	CategoryTransientConnection
	CategoryRecoverable
	CategoryTimeout
	CategoryRollback
	CategoryIntegrityConstraint
	CategoryInvalidAuthorization
	CategorySyntaxError
	CategoryDataError
	CategoryFeatureNotSupported
	CategoryWarning
)

var categoryNames = [...]string{
	CategoryNonTransient:           "non-transient",
	CategoryNonTransientConnection: "non-transient connection",
	CategoryTransient:              "transient",
	CategoryTransientConnection:    "transient connection",
	CategoryRecoverable:            "recoverable",
	CategoryTimeout:                "timeout",
	CategoryRollback:               "transaction rollback",
	CategoryIntegrityConstraint:    "integrity constraint violation",
	CategoryInvalidAuthorization:   "invalid authorization",
	CategorySyntaxError:            "syntax error",
	CategoryDataError:              "data exception",
	CategoryFeatureNotSupported:    "feature not supported",
	CategoryWarning:                "warning",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}

	return "unknown category"
}

// IsTransient reports whether a retry of the same operation may succeed
// without any change on the caller side.
func (c Category) IsTransient() bool {
	switch c {
	case CategoryTransient, CategoryTransientConnection, CategoryTimeout, CategoryRollback:
		return true
	default:
		return false
	}
}

// CategoryOf classifies a SQL state by its class (the first two characters).
func CategoryOf(state string) Category {
	if strings.HasPrefix(state, "HYT") {
		return CategoryTimeout
	}
	if len(state) < 2 {
		return CategoryNonTransient
	}
	switch state[:2] {
	case "01":
		return CategoryWarning
	case "08":
		if state == "08001" {
			return CategoryTransientConnection
		}

		return CategoryNonTransientConnection
	case "0A":
		return CategoryFeatureNotSupported
	case "22":
		return CategoryDataError
	case "23":
		return CategoryIntegrityConstraint
	case "28":
		return CategoryInvalidAuthorization
	case "40":
		return CategoryRollback
	case "42":
		return CategorySyntaxError
	default:
		return CategoryNonTransient
	}
}
