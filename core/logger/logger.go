package logger

import (
	"context"
	"io"
	"log/slog"
)

// Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Enabled reports whether l would emit records at level.
// A nil logger is never enabled.
func Enabled(ctx context.Context, l *slog.Logger, level slog.Level) bool {
	return l != nil && l.Enabled(ctx, level)
}
