package xerrors

import (
	"slices"
	"strconv"
	"strings"
)

// Join collects non-nil errors. It returns nil when none is left and the
// error itself when exactly one is.
func Join(errs ...error) error {
	joined := slices.DeleteFunc(slices.Clone(errs), func(err error) bool {
		return err == nil
	})
	switch len(joined) {
	case 0:
		return nil
	case 1:
		return joined[0]
	default:
		return multiError{errs: joined}
	}
}

// multiError is matched by errors.Is and errors.As through Unwrap.
type multiError struct {
	errs []error
}

func (m multiError) Error() string {
	quoted := make([]string, len(m.errs))
	for i, err := range m.errs {
		quoted[i] = strconv.Quote(err.Error())
	}

	return "[" + strings.Join(quoted, ",") + "]"
}

func (m multiError) Unwrap() []error {
	return m.errs
}
