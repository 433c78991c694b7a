package xerrors

import (
	"github.com/sqlkit/sqlcore/internal/stack"
)

type stackTraceConfig struct {
	skip int
}

type StackTraceOption func(c *stackTraceConfig)

// WithSkipDepth attributes the error to a caller depth frames above the one
// calling WithStackTrace.
func WithSkipDepth(depth int) StackTraceOption {
	return func(c *stackTraceConfig) {
		c.skip = depth
	}
}

// WithStackTrace annotates err with the function, file and line it was
// detected at. A nil err stays nil.
func WithStackTrace(err error, opts ...StackTraceOption) error {
	if err == nil {
		return nil
	}
	var c stackTraceConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return &tracedError{
		err:    err,
		record: stack.Record(c.skip + 1),
	}
}

type tracedError struct {
	err    error
	record string
}

func (e *tracedError) Error() string {
	return e.err.Error() + " at `" + e.record + "`"
}

func (e *tracedError) Unwrap() error {
	return e.err
}
