package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a log level. Levels are ordered; a logger emits entries at or above its level.
type Level int

const (
	// DEBUG is the most verbose level.
	DEBUG Level = iota
	// INFO is the default level.
	INFO
	// WARN is used for recoverable problems, e.g. a segmentation fallback.
	WARN
	// ERROR is used for failures that abort an operation.
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	}
	return "Unknown"
}

// AsZap converts the level to its zapcore equivalent.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// LevelFromString parses a case-insensitive level name. "warning" is accepted as WARN.
func LevelFromString(inp string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(inp)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return DEBUG, errors.Errorf("unknown log level: %q", inp)
}
