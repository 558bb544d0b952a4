// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package emuconfig

import (
	"fmt"
	"log/slog"
)

// LogLevel is the verbosity selected on the command line.
type LogLevel int

const (
	LogNone LogLevel = iota
	LogError
	LogWarning
	LogInfo
	LogDebug
)

// ParseLogLevel maps a numeric flag value to a level. Values above
// LogDebug clamp to LogDebug.
func ParseLogLevel(value int) (LogLevel, error) {
	if value < 0 {
		return LogNone, fmt.Errorf("log level %d is negative", value)
	}
	return min(LogLevel(value), LogDebug), nil
}

func (l LogLevel) String() string {
	switch l {
	case LogNone:
		return "none"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// SlogLevel returns the slog threshold for l. LogNone has no threshold;
// use [LogLevel.Handler], which discards everything for it.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogError:
		return slog.LevelError
	case LogWarning:
		return slog.LevelWarn
	case LogInfo:
		return slog.LevelInfo
	case LogDebug:
		return slog.LevelDebug
	default:
		return slog.LevelError + 4
	}
}

// Handler wraps handler so it filters at l, or returns a discarding
// handler for LogNone.
func (l LogLevel) Handler(newHandler func(*slog.HandlerOptions) slog.Handler) slog.Handler {
	if l == LogNone {
		return slog.DiscardHandler
	}
	return newHandler(&slog.HandlerOptions{Level: l.SlogLevel()})
}
