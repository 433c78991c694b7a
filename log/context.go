package log

import (
	"context"
	"slices"
)

type (
	levelKey struct{}
	namesKey struct{}
)

// WithLevel sets the level of records logged with ctx.
func WithLevel(ctx context.Context, lvl Level) context.Context {
	return context.WithValue(ctx, levelKey{}, lvl)
}

// LevelFromContext returns the level set by WithLevel, TRACE when unset.
func LevelFromContext(ctx context.Context) Level {
	lvl, _ := ctx.Value(levelKey{}).(Level)

	return lvl
}

// WithNames appends names to the namespace of records logged with ctx.
func WithNames(ctx context.Context, names ...string) context.Context {
	return context.WithValue(ctx, namesKey{}, slices.Concat(NamesFromContext(ctx), names))
}

// NamesFromContext returns a copy of the namespace carried by ctx.
func NamesFromContext(ctx context.Context) []string {
	names, _ := ctx.Value(namesKey{}).([]string)

	return slices.Clone(names)
}

func with(ctx context.Context, lvl Level, names ...string) context.Context {
	return WithLevel(WithNames(ctx, names...), lvl)
}
