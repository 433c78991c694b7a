package trace

import "context"

type sqlTraceContextKey struct{}

// WithSQL returns context which has associated SQL trace with it.
func WithSQL(ctx context.Context, t SQL) context.Context {
	return context.WithValue(ctx,
		sqlTraceContextKey{},
		*ContextSQL(ctx).Compose(&t),
	)
}

// ContextSQL returns SQL trace associated with ctx.
// If there is no SQL trace associated with ctx then zero value
// of SQL is returned.
func ContextSQL(ctx context.Context) *SQL {
	t, _ := ctx.Value(sqlTraceContextKey{}).(SQL)

	return &t
}
