package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Options selects how the service logs
type Options struct {
	Level  string    // debug, info, warn or error; anything else is info
	Format string    // "text", otherwise JSON
	Output io.Writer // os.Stderr when nil
}

// Logger is the service's slog logger
type Logger struct {
	*slog.Logger
}

// global backs FromGin outside of a request
var global *Logger

// New builds a logger from opts
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.Format == "text" {
		return &Logger{slog.New(slog.NewTextHandler(out, handlerOpts))}
	}
	return &Logger{slog.New(slog.NewJSONHandler(out, handlerOpts))}
}

// SetGlobal installs l as the fallback logger
func SetGlobal(l *Logger) {
	global = l
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LogError logs msg at error level with err attached
func (l *Logger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append(args, "error", err)...)
}

// WithRequestID tags every record with the request id
func (l *Logger) WithRequestID(id string) *Logger {
	if id == "" {
		return l
	}
	return &Logger{l.With("request_id", id)}
}

// WithContext tags records with the request id carried by ctx, if any
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.WithRequestID(RequestIDFromContext(ctx))
}

type requestIDKey struct{}

// ContextWithRequestID returns ctx carrying id
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or ""
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
