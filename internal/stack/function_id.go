package stack

// Caller identifies the function an event originates from.
type Caller interface {
	String() string
}

var (
	_ Caller = functionID("")
	_ Caller = call{}
)

type functionID string

func (id functionID) String() string {
	return string(id)
}

// FunctionID returns id or, when id is empty, the caller of FunctionID.
func FunctionID(id string) Caller {
	if id != "" {
		return functionID(id)
	}

	return Call(1)
}
