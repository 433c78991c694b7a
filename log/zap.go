package log

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = zapLogger{}

type zapLogger struct {
	l *zap.Logger
}

// Zap adapts a *zap.Logger. Names from the context become the zap logger
// name joined with dots.
func Zap(l *zap.Logger) Logger {
	return zapLogger{l: l}
}

func (z zapLogger) Log(ctx context.Context, msg string, fields ...Field) {
	lvl := zapLevel(LevelFromContext(ctx))
	if lvl == zapcore.InvalidLevel {
		return
	}
	l := z.l
	if names := NamesFromContext(ctx); len(names) > 0 {
		l = l.Named(strings.Join(names, "."))
	}
	if ce := l.Check(lvl, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func zapLevel(lvl Level) zapcore.Level {
	switch lvl {
	case TRACE, DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR, FATAL:
		// the core must not exit the process on driver events
		return zapcore.ErrorLevel
	default:
		return zapcore.InvalidLevel
	}
}

func zapFields(fields []Field) []zap.Field {
	zfs := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Type() {
		case IntType:
			zfs = append(zfs, zap.Int(f.Key(), f.IntValue()))
		case Int64Type:
			zfs = append(zfs, zap.Int64(f.Key(), f.Int64Value()))
		case StringType:
			zfs = append(zfs, zap.String(f.Key(), f.StringValue()))
		case BoolType:
			zfs = append(zfs, zap.Bool(f.Key(), f.BoolValue()))
		case DurationType:
			zfs = append(zfs, zap.Duration(f.Key(), f.DurationValue()))
		case StringsType:
			zfs = append(zfs, zap.Strings(f.Key(), f.StringsValue()))
		case ErrorType:
			zfs = append(zfs, zap.NamedError(f.Key(), f.ErrorValue()))
		case StringerType:
			zfs = append(zfs, zap.Stringer(f.Key(), f.Stringer()))
		default:
			zfs = append(zfs, zap.Any(f.Key(), f.AnyValue()))
		}
	}

	return zfs
}
