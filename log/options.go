package log

import (
	"github.com/jonboulle/clockwork"
)

// Option configures the trace-to-log bridge.
type Option interface {
	applyHolderOption(l *bridge)
}

var (
	_ Option             = logQueryOption{}
	_ Option             = clockOption{}
	_ simpleLoggerOption = logQueryOption{}
	_ simpleLoggerOption = clockOption{}
	_ simpleLoggerOption = minLevelOption(0)
	_ simpleLoggerOption = coloringOption{}
)

type minLevelOption Level

func (o minLevelOption) applySimpleOption(l *defaultLogger) {
	l.minLevel = Level(o)
}

func WithMinLevel(level Level) minLevelOption {
	return minLevelOption(level)
}

type coloringOption struct{}

func (coloringOption) applySimpleOption(l *defaultLogger) {
	l.coloring = true
}

func WithColoring() coloringOption {
	return coloringOption{}
}

type logQueryOption struct{}

func (logQueryOption) applySimpleOption(*defaultLogger) {}

func (logQueryOption) applyHolderOption(l *bridge) {
	l.logQuery = true
}

// WithLogQuery enables logging of SQL text.
func WithLogQuery() logQueryOption {
	return logQueryOption{}
}

type clockOption struct {
	clock clockwork.Clock
}

func (o clockOption) applySimpleOption(l *defaultLogger) {
	l.clock = o.clock
}

func (o clockOption) applyHolderOption(l *bridge) {
	l.clock = o.clock
}

// WithClock sets the clock used for timestamps and latencies.
func WithClock(clock clockwork.Clock) clockOption {
	return clockOption{clock: clock}
}
