package log

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
)

const dateLayout = "2006-01-02 15:04:05.000"

type Logger interface {
	// Log writes msg with fields at the level and under the names carried by
	// ctx. Implementations must not retain fields after Log returns.
	Log(ctx context.Context, msg string, fields ...Field)
}

var _ Logger = (*defaultLogger)(nil)

type simpleLoggerOption interface {
	applySimpleOption(l *defaultLogger)
}

// Default returns a Logger writing one line per message into w.
func Default(w io.Writer, opts ...simpleLoggerOption) *defaultLogger {
	l := &defaultLogger{
		minLevel: INFO,
		clock:    clockwork.NewRealClock(),
		w:        w,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applySimpleOption(l)
		}
	}

	return l
}

type defaultLogger struct {
	coloring bool
	minLevel Level
	clock    clockwork.Clock
	w        io.Writer
}

func (l *defaultLogger) Log(ctx context.Context, msg string, fields ...Field) {
	lvl := LevelFromContext(ctx)
	if lvl < l.minLevel {
		return
	}
	_, _ = io.WriteString(l.w, l.line(lvl, NamesFromContext(ctx), msg, fields))
}

// line renders `<time> <LEVEL> '<names>' => <msg> {"key":"value",...}`.
func (l *defaultLogger) line(lvl Level, names []string, msg string, fields []Field) string {
	var b strings.Builder
	if l.coloring {
		b.WriteString(lvl.Color())
	}
	b.WriteString(l.clock.Now().Format(dateLayout))
	b.WriteByte(' ')
	b.WriteString(lvl.String())
	b.WriteString(" '")
	b.WriteString(strings.Join(names, "."))
	b.WriteString("' => ")
	b.WriteString(msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f.Key()))
			b.WriteByte(':')
			b.WriteString(strconv.Quote(f.String()))
		}
		b.WriteByte('}')
	}
	if l.coloring {
		b.WriteString(colorReset)
	}
	b.WriteByte('\n')

	return b.String()
}

// bridge carries the settings of the trace-to-log adapters.
type bridge struct {
	logQuery bool
	clock    clockwork.Clock
	logger   Logger
}

func newBridge(l Logger, opts ...Option) *bridge {
	b := &bridge{
		clock:  clockwork.NewRealClock(),
		logger: l,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applyHolderOption(b)
		}
	}

	return b
}

func (b *bridge) Log(ctx context.Context, msg string, fields ...Field) {
	b.logger.Log(ctx, msg, fields...)
}
