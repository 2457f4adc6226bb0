package session

import "context"

type contextKey string

const flagsKey contextKey = "session_flags"

// WithFlags stores the caller's resolved flags in ctx.
func WithFlags(ctx context.Context, flags Flags) context.Context {
	return context.WithValue(ctx, flagsKey, flags)
}

// FromContext returns the flags stored by WithFlags.
func FromContext(ctx context.Context) (Flags, bool) {
	f, ok := ctx.Value(flagsKey).(Flags)
	return f, ok
}
