// Package logging provides component loggers and context-scoped log fields.
package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	opIDKey      contextKey = "op_id"
	storePathKey contextKey = "store_path"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// WithOpID adds a per-invocation operation ID to the context.
func WithOpID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, opIDKey, id)
}

// WithStorePath records the active store path on the context.
func WithStorePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, storePathKey, path)
}

// OpID retrieves the operation ID from the context.
// Returns empty string if not present.
func OpID(ctx context.Context) string {
	if id, ok := ctx.Value(opIDKey).(string); ok {
		return id
	}
	return ""
}

// StorePath retrieves the active store path from the context.
// Returns empty string if not present.
func StorePath(ctx context.Context) string {
	if p, ok := ctx.Value(storePathKey).(string); ok {
		return p
	}
	return ""
}

// ContextHook copies op_id and store_path from context onto log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := OpID(ctx); id != "" {
		e.Str("op_id", id)
	}

	if p := StorePath(ctx); p != "" {
		e.Str("store_path", p)
	}
}
