// Package logging is how Notish components report what happened. Callers
// depend on Logger; the binary plugs in a log/slog text handler.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Error(ctx, "save note failed", "note_id", id, "err", err)
//
// The context travels with each record so handlers can pick values off it.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a Logger that adds args to every record, e.g.
	// log.With("component", "notes").
	With(args ...any) Logger
}
