package logger

import (
	"io"
	"log/slog"
)

// Logger represents application logger.
type Logger struct {
	*slog.Logger
}

// New creates new Logger instance with the specified level writing to w.
// Commands pass stderr so stdout stays free for their output.
func New(w io.Writer, level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
