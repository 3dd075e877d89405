// nolint: sloglint
package logger

import (
	"context"
	"log/slog"
	"os"
)

const (
	// DefaultLevel is the minimum reporting level used until SetLevel is called.
	DefaultLevel = slog.LevelInfo
)

var (
	lvl = new(slog.LevelVar)

	base = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: levelAttrReplacer,
	}))
)

func init() {
	lvl.Set(DefaultLevel)
	slog.SetDefault(base)
}

// SetLevel sets the minimum reporting level for the package logger, returning the previous level.
func SetLevel(level slog.Level) (old slog.Level) {
	old = lvl.Level()
	lvl.Set(level)
	return old
}

// With returns a logger that includes the given attributes in every record.
func With(args ...any) *slog.Logger {
	return base.With(args...)
}

func Debug(msg string, args ...any) { log(context.Background(), base, slog.LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { log(context.Background(), base, slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { log(context.Background(), base, slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { log(context.Background(), base, slog.LevelError, msg, args...) }

// Panic logs at a level above Error and then panics.
func Panic(msg string, args ...any) {
	log(context.Background(), base, LevelPanic, msg, args...)
	panic(msg)
}

func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, args...)
}
