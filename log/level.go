package log

import "strings"

// Level orders log records by severity. QUIET drops everything.
type Level int

const (
	TRACE = Level(iota)
	DEBUG
	INFO
	WARN
	ERROR
	FATAL

	QUIET
)

const colorReset = "\033[0m"

var levels = [...]struct {
	name  string
	color string
}{
	TRACE: {name: "TRACE", color: "\033[38m"},
	DEBUG: {name: "DEBUG", color: "\033[37m"},
	INFO:  {name: "INFO", color: "\033[36m"},
	WARN:  {name: "WARN", color: "\033[33m"},
	ERROR: {name: "ERROR", color: "\033[31m"},
	FATAL: {name: "FATAL", color: "\033[41m"},
	QUIET: {name: "QUIET", color: colorReset},
}

func (l Level) valid() bool {
	return l >= TRACE && l <= QUIET
}

func (l Level) String() string {
	if !l.valid() {
		return levels[QUIET].name
	}

	return levels[l].name
}

// Color is the ANSI escape sequence the writer logger prints the level
// with.
func (l Level) Color() string {
	if !l.valid() {
		return colorReset
	}

	return levels[l].color
}

// FromString parses a level name case-insensitively. Unknown names are
// QUIET.
func FromString(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	for l := range levels {
		if levels[l].name == s {
			return Level(l)
		}
	}

	return QUIET
}
