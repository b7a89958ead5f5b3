package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

var loggerKey = contextKey{}

// Options controls how Initialize builds the process logger.
type Options struct {
	Debug   bool
	Verbose bool
	Plain   bool
	Output  io.Writer
}

// Initialize installs the default logger and returns it. Debug wins over
// Verbose; without either only warnings and errors are printed.
func Initialize(opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	} else if opts.Verbose {
		level = slog.LevelInfo
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   opts.Debug,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if opts.Plain {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = NewPrettyHandler(out, handlerOpts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func With(ctx context.Context, args ...any) context.Context {
	l := FromContext(ctx).With(args...)
	return WithLogger(ctx, l)
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	FromContext(ctx).Error(msg, args...)
}

// secret attribute keys never reach the output
var secretKeys = map[string]bool{
	"authorization": true,
	"password":      true,
	"token":         true,
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[a.Key] {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}
