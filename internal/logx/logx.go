package logx

import (
	"context"

	"pkt.systems/pslog"

	"pkt.systems/remsh/schema"
)

type contextKey int

const connKey contextKey = iota

// WithConn annotates the context logger with the connection id if
// present. A context already marked with the same id is not annotated
// twice.
func WithConn(ctx context.Context, id schema.SessionID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if id == "" {
		return log
	}
	if current, ok := ctx.Value(connKey).(schema.SessionID); ok && current == id {
		return log
	}
	return log.With("conn", id)
}

// ContextWithConn stores the connection marker on the context for log
// de-duplication.
func ContextWithConn(ctx context.Context, id schema.SessionID) context.Context {
	if ctx == nil || id == "" {
		return ctx
	}
	return context.WithValue(ctx, connKey, id)
}

// ContextWithConnLogger attaches the logger and connection marker to the
// context.
func ContextWithConnLogger(ctx context.Context, log pslog.Logger, id schema.SessionID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithConn(ctx, id)
}
