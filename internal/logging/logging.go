// Package logging is the process-wide log sink the mux orchestrator
// and source parser call for every recoverable warning. Verbosity is a
// single package-level atomic integer observed with relaxed ordering
// (the concurrency model is single-threaded synchronous execution, so
// there is never more than one writer; readers just need the latest
// value).
//
// Grounded on farcloser-haustorium's direct log/slog usage
// (cmd/haustorium/main.go, internal/integration/ffprobe/probe.go) —
// package-level slog.Debug/Error calls with key-value attrs, no
// wrapper type. This package adds only the verbosity gate a
// single-threaded synchronous pipeline needs on top of that exact
// shape.
package logging

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Level mirrors slog's ordering (lower is more verbose) with a
// dedicated Silent level above LevelError for --log-level none use,
// since the CLI must be able to disable logging entirely.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// ParseLevel maps the CLI's --log-level strings to a Level. Unknown
// strings fall back to LevelWarn.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "none":
		return LevelSilent
	default:
		return LevelWarn
	}
}

var level atomic.Int32

func init() {
	level.Store(int32(LevelWarn))
}

// SetLevel sets the process-wide verbosity gate.
func SetLevel(l Level) {
	level.Store(int32(l))
}

func enabled(l Level) bool {
	return l >= Level(level.Load())
}

// Debugf logs at debug verbosity with printf-style formatting, per the
// teacher/pack idiom of calling slog's package-level functions
// directly rather than holding a *slog.Logger.
func Debugf(format string, args ...any) {
	if enabled(LevelDebug) {
		slog.Debug(formatMessage(format, args...))
	}
}

// Infof logs at info verbosity.
func Infof(format string, args ...any) {
	if enabled(LevelInfo) {
		slog.Info(formatMessage(format, args...))
	}
}

// Warnf logs at warn verbosity. This is the sink for recoverable
// warnings (non-zero first chapter start, image dimension mismatch,
// missing metadata) that do not affect Status.
func Warnf(format string, args ...any) {
	if enabled(LevelWarn) {
		slog.Warn(formatMessage(format, args...))
	}
}

// Errorf logs at error verbosity.
func Errorf(format string, args ...any) {
	if enabled(LevelError) {
		slog.Error(formatMessage(format, args...))
	}
}

func formatMessage(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
