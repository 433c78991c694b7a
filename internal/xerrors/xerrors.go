// Package xerrors annotates errors with the place they were detected at and
// proxies the errors package with multi-target Is and As.
package xerrors

import (
	"context"
	"errors"

	"github.com/sqlkit/sqlcore/sqlerr"
)

// Kind makes a sqlerr.Error of kind attributed to the caller.
func Kind(kind sqlerr.Kind, format string, args ...any) error {
	return WithStackTrace(sqlerr.Newf(kind, format, args...), WithSkipDepth(1))
}

// IsContextError reports whether err comes from a cancelled or expired
// context.
func IsContextError(err error) bool {
	return Is(err, context.Canceled, context.DeadlineExceeded)
}

// Is reports whether err matches any of targets.
func Is(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// As fills every target err can be assigned to and reports whether any was.
func As(err error, targets ...any) bool {
	if err == nil {
		return false
	}
	matched := false
	for _, target := range targets {
		if errors.As(err, target) {
			matched = true
		}
	}

	return matched
}
