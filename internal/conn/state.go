package conn

type State int8

const (
	Idle = State(iota)
	Busy
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) IsOpen() bool {
	return s == Idle || s == Busy
}

type StmtState uint32

const (
	Ready = StmtState(iota)
	Executing
	// Aborted is entered when Conn.Cancel interrupted the execution. The next
	// execution starts from it as from Ready.
	Aborted
)

func (s StmtState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Executing:
		return "executing"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
