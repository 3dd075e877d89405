package logger

import (
	"fmt"
	"log/slog"
)

const (
	LevelPanic = slog.Level(12)
	LevelFatal = slog.Level(16)
)

// levelAttrReplacer renders the custom Panic/Fatal levels as text instead of
// the numeric offsets slog would otherwise print.
func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != slog.LevelKey {
		return attr
	}
	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}
	switch {
	case level < LevelPanic:
		return attr
	case level < LevelFatal:
		return slog.Attr{Key: attr.Key, Value: slog.StringValue(levelString("PANIC", level-LevelPanic))}
	default:
		return slog.Attr{Key: attr.Key, Value: slog.StringValue(levelString("FATAL", level-LevelFatal))}
	}
}

func levelString(base string, offset slog.Level) string {
	if offset == 0 {
		return base
	}
	return fmt.Sprintf("%s%+d", base, offset)
}
