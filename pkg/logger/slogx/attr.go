// Package slogx provides typed slog.Attr constructors used across the
// indexer core so call sites read the same way regardless of which
// component is logging.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

const ErrorKey = "error"

// Error returns an slog.Attr for an error value under a consistent key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

// Stringer returns an slog.Attr for any fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr { return slog.String(key, value.String()) }

func Int(key string, value int) slog.Attr       { return slog.Int64(key, int64(value)) }
func Int64(key string, value int64) slog.Attr   { return slog.Int64(key, value) }
func Uint64(key string, value uint64) slog.Attr { return slog.Uint64(key, value) }
func Uint16(key string, value uint16) slog.Attr { return slog.Int(key, int(value)) }
func Bool(key string, value bool) slog.Attr     { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}
func Any(key string, value any) slog.Attr { return slog.Any(key, value) }
