package trace

import "github.com/sqlkit/sqlcore/internal/stack"

type call interface {
	String() string
}

var _ call = stack.FunctionID("")

// FunctionID returns the caller of the function that invoked FunctionID,
// skipping depth extra frames.
func FunctionID(depth int) string {
	return stack.Record(depth+1, stack.FileName(false))
}
